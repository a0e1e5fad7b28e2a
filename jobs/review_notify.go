package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ppl-hub/practicum/internal/jobs"
	"github.com/ppl-hub/practicum/internal/messages"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Inbox stores a message from sender to a recipient at most once per key.
type Inbox interface {
	DeliverOnce(ctx context.Context, key string, senderID int64, in messages.Input) (int64, bool, error)
}

// ReviewNotifyJob turns review decisions into inbox messages for the author.
type ReviewNotifyJob struct {
	Inbox   Inbox
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes TaskReviewNotify tasks.
func (j *ReviewNotifyJob) Handle(ctx context.Context, task *asynq.Task) error {
	tracker := j.Metrics.Track(TaskReviewNotify)
	var payload ReviewNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("review notify: decode payload: %v: %w", err, asynq.SkipRetry))
	}
	if err := payload.validate(); err != nil {
		return tracker.End(fmt.Errorf("%v: %w", err, asynq.SkipRetry))
	}
	if j.Inbox == nil {
		return tracker.End(errors.New("review notify: inbox not configured"))
	}
	id, delivered, err := j.Inbox.DeliverOnce(ctx, payload.Key(), payload.ReviewerID, reviewMessage(payload))
	if err != nil {
		// A deleted student or reviewer will never become deliverable.
		if errors.Is(err, shared.ErrValidation) {
			return tracker.End(fmt.Errorf("review notify: %v: %w", err, asynq.SkipRetry))
		}
		return tracker.End(err)
	}
	if !delivered {
		j.logger().Debug("review notification already delivered", slog.String("key", payload.Key()))
		return tracker.End(nil)
	}
	j.Metrics.AddItems(TaskReviewNotify, 1)
	j.logger().Info("review notification delivered",
		slog.String("module", payload.Module),
		slog.Int64("record_id", payload.RecordID),
		slog.Int64("message_id", id))
	return tracker.End(nil)
}

func (j *ReviewNotifyJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReviewNotify))
	}
	return slog.Default().With(slog.String("job", TaskReviewNotify))
}

func reviewMessage(p ReviewNotifyPayload) messages.Input {
	noun := strings.ReplaceAll(p.Module, "_", " ")
	if noun != "" {
		noun = strings.ToUpper(noun[:1]) + noun[1:]
	}
	status := strings.ReplaceAll(p.Status, "_", " ")
	subject := fmt.Sprintf("%s #%d: %s", noun, p.RecordID, status)
	body := fmt.Sprintf("Your %s #%d is now %s.", strings.ToLower(noun), p.RecordID, status)
	if p.Feedback != "" {
		body += "\n\nFeedback:\n" + p.Feedback
	}
	return messages.Input{RecipientID: p.StudentID, Subject: subject, Body: body}
}
