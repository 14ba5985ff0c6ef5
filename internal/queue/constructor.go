package queue

import (
	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/service"
)

type Queue struct {
	cfg      config.Config
	dispatch service.DispatchService
	ember    service.EmberService
	report   service.ReportService
}

func NewQueue(
	cfg config.Config,
	dispatch service.DispatchService,
	ember service.EmberService,
	report service.ReportService) *Queue {
	return &Queue{
		cfg:      cfg,
		dispatch: dispatch,
		ember:    ember,
		report:   report,
	}
}

const (
	TaskTypeDispatchRun  = "dispatch:run"
	TaskTypeEmberRefresh = "ember:refresh"
)

type DispatchRunPayload struct {
	TriggeredBy string `json:"triggered_by"`
}

type EmberRefreshPayload struct {
	CountryCode string `json:"country_code"`
}
