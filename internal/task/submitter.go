package task

import (
	"context"
	"log/slog"
)

// GoSubmitter runs every submitted task on its own goroutine. The task's
// context keeps the submitter's values but not its cancellation, so work
// started on behalf of a short-lived request outlives that request.
type GoSubmitter struct {
	logger *slog.Logger
}

// Ensure GoSubmitter implements Submitter
var _ Submitter = (*GoSubmitter)(nil)

// NewGoSubmitter creates a GoSubmitter. If logger is nil the default logger is used.
func NewGoSubmitter(logger *slog.Logger) *GoSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoSubmitter{logger: logger.With(slog.String("component", "go_submitter"))}
}

// Submit implements Submitter. It never fails.
func (s *GoSubmitter) Submit(ctx context.Context, task Task) error {
	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)

	go func() {
		if err := task.Execute(detached); err != nil {
			s.logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		}
	}()
	return nil
}
