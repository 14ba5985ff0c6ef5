package job

import (
	"log/slog"

	"github.com/hibiken/asynq"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/queue"
)

type ScheduleJob struct {
	cfg    config.Config
	client *asynq.Client
}

func NewScheduleJob(cfg config.Config, client *asynq.Client) *ScheduleJob {
	return &ScheduleJob{cfg: cfg, client: client}
}

func (j *ScheduleJob) RunDispatch() {
	err := queue.EnqueueDispatchRun(j.client, queue.DispatchRunPayload{TriggeredBy: "cron"})
	if err != nil {
		slog.Info("Unable to enqueue dispatch run: " + err.Error())
	}
}

func (j *ScheduleJob) RefreshCountries() {
	for _, code := range j.cfg.EmberCountries {
		err := queue.EnqueueEmberRefresh(j.client, queue.EmberRefreshPayload{CountryCode: code})
		if err != nil {
			slog.Info("Unable to enqueue refresh for " + code + ": " + err.Error())
		}
	}
}
