// Package jobs runs background work over Asynq: the periodic sweep
// that fires due recurring invoice templates.
package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRecurringFireDue fires every recurring template whose next
	// invoice date has passed.
	TaskRecurringFireDue = "recurring:fire_due"
)

// RecurringFirer is satisfied by the recurring service.
type RecurringFirer interface {
	FireDue(ctx context.Context) (int, error)
}

// NewRecurringFireDueTask constructs the sweep task. It carries no
// payload; the due set is read from the database at execution time.
func NewRecurringFireDueTask() *asynq.Task {
	return asynq.NewTask(TaskRecurringFireDue, nil)
}

// HandleRecurringFireDue returns the handler for TaskRecurringFireDue.
func HandleRecurringFireDue(firer RecurringFirer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		fired, err := firer.FireDue(ctx)
		if err != nil {
			return err
		}
		if fired > 0 {
			logger.Info("recurring sweep completed", "fired", fired)
		}
		return nil
	}
}
