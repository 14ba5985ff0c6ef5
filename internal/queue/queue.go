package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// Neither task type is retried. A failed dispatch run leaves rows "Ready" for
// the next scheduled run, and a partially-applied refresh would re-append
// calendar rows on a second attempt, duplicating public posts.
var enqueueOpts = []asynq.Option{asynq.MaxRetry(0)}

// EnqueueDispatchRun schedules a single dispatcher run.
func EnqueueDispatchRun(asynqClient *asynq.Client, payload DispatchRunPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeDispatchRun, taskPayload)

	_, err = asynqClient.Enqueue(task, enqueueOpts...)
	if err != nil {
		return err
	}

	log.Printf("Dispatch run scheduled: %+v", payload)
	return nil
}

func EnqueueEmberRefresh(asynqClient *asynq.Client, payload EmberRefreshPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeEmberRefresh, taskPayload)

	_, err = asynqClient.Enqueue(task, enqueueOpts...)
	if err != nil {
		return err
	}

	log.Printf("Ember refresh scheduled: %+v", payload)
	return nil
}
