package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ppl-hub/practicum/internal/jobs"
)

// Expirer unpublishes announcements whose expiry has passed.
type Expirer interface {
	ExpireDue(ctx context.Context) (int64, error)
}

// AnnouncementsExpireJob runs the periodic announcement expiry.
type AnnouncementsExpireJob struct {
	Announcements Expirer
	Logger        *slog.Logger
	Metrics       *jobmetrics.Metrics
}

// Handle processes TaskAnnouncementsExpire tasks.
func (j *AnnouncementsExpireJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.Metrics.Track(TaskAnnouncementsExpire)
	if j.Announcements == nil {
		return tracker.End(errors.New("announcements expire: service not configured"))
	}
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := j.Announcements.ExpireDue(runCtx)
	if err != nil {
		return tracker.End(err)
	}
	j.Metrics.AddItems(TaskAnnouncementsExpire, n)
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("announcements expiry run", slog.String("job", TaskAnnouncementsExpire), slog.Int64("unpublished", n))
	return tracker.End(nil)
}
