package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/emberfeed/emberfeed/internal/service"
)

func (q *Queue) HandleDispatchRunTask(ctx context.Context, task *asynq.Task) error {
	var payload DispatchRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	today := service.Today(time.Now())
	results, err := q.dispatch.Run(ctx, today)
	if err != nil {
		log.Printf("Dispatch run (%s) failed: %v", payload.TriggeredBy, err)
		return err
	}

	posted := 0
	for _, r := range results {
		if r.Posted {
			posted++
		}
	}
	log.Printf("Dispatch run (%s) complete: %d rows considered, %d posted", payload.TriggeredBy, len(results), posted)
	return nil
}

func (q *Queue) HandleEmberRefreshTask(ctx context.Context, task *asynq.Task) error {
	var payload EmberRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	snapshot, err := q.ember.FetchMonthlyGeneration(ctx, payload.CountryCode)
	if err != nil {
		return err
	}

	if q.cfg.R2.BucketName != "" {
		if err := q.ember.ArchiveSnapshot(ctx, snapshot); err != nil {
			// Archive failures don't block content generation; the snapshot
			// is a convenience copy.
			log.Printf("Error archiving snapshot for %s: %v", snapshot.CountryCode, err)
		}
	}

	stats := service.NewElectricityStats(snapshot.Records)
	milestones := q.report.ComposeMilestones(snapshot.CountryCode, stats)
	if len(milestones) == 0 {
		log.Printf("No new records for %s in %s", snapshot.CountryCode, stats.LatestDate().Format("2006-01"))
		return nil
	}

	today := service.Today(time.Now())
	if err := q.report.AppendToCalendar(ctx, today, milestones); err != nil {
		return err
	}

	log.Printf("Queued %d milestone posts for %s", len(milestones), snapshot.CountryCode)
	return nil
}
