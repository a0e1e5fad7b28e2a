package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ppl-hub/practicum/internal/jobs"
)

// TaskReceiptsCleanup prunes old delivery receipts from idempotency_keys.
const TaskReceiptsCleanup = "receipts:cleanup"

// NewReceiptsCleanupTask constructs the periodic cleanup task.
func NewReceiptsCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskReceiptsCleanup, nil, asynq.MaxRetry(1))
}

// Receipts removes idempotency keys older than a retention window.
type Receipts interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ReceiptsCleanupJob keeps the receipt table bounded. Retention must exceed the
// longest retry window of TaskReviewNotify.
type ReceiptsCleanupJob struct {
	Receipts  Receipts
	Retention time.Duration
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// Handle processes TaskReceiptsCleanup tasks.
func (j *ReceiptsCleanupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.Metrics.Track(TaskReceiptsCleanup)
	if j.Receipts == nil {
		return tracker.End(errors.New("receipts cleanup: store not configured"))
	}
	retention := j.Retention
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	n, err := j.Receipts.Cleanup(ctx, retention)
	if err != nil {
		return tracker.End(err)
	}
	j.Metrics.AddItems(TaskReceiptsCleanup, n)
	if j.Logger != nil && n > 0 {
		j.Logger.Info("receipts pruned", slog.String("job", TaskReceiptsCleanup), slog.Int64("count", n))
	}
	return tracker.End(nil)
}
