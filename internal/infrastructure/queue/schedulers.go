package queue

import (
	"github.com/hibiken/asynq"

	"marketplace-backend/internal/shared"
	"marketplace-backend/pkg/logger"
)

// RegisterSchedules wires the periodic sweep tasks. The sweeps are a
// backstop: request paths and the one-shot finalize tasks already keep
// statuses fresh, the crons just catch anything those missed.
func RegisterSchedules(scheduler *asynq.Scheduler) error {
	schedules := []struct {
		spec     string
		taskType string
		queue    string
	}{
		{"*/5 * * * *", shared.TypeCloseEndedAuctions, shared.QueueLow},
		{"*/5 * * * *", shared.TypeOpenScheduledAuctions, shared.QueueLow},
	}

	for _, s := range schedules {
		task := asynq.NewTask(s.taskType, nil)
		entryID, err := scheduler.Register(s.spec, task, asynq.Queue(s.queue))
		if err != nil {
			return err
		}
		logger.Info("schedule registered", map[string]interface{}{
			"entry_id": entryID,
			"task":     s.taskType,
			"spec":     s.spec,
		})
	}

	return nil
}
