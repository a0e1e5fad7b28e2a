package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ppl-hub/practicum/internal/workflow"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReviewNotify delivers an inbox message after a review decision.
	TaskReviewNotify = "review:notify"
	// TaskAnnouncementsExpire unpublishes announcements past their expiry.
	TaskAnnouncementsExpire = "announcements:expire"
)

// ReviewNotifyPayload describes a review decision to announce to the author.
type ReviewNotifyPayload struct {
	Module     string    `json:"module"`
	RecordID   int64     `json:"record_id"`
	StudentID  int64     `json:"student_id"`
	ReviewerID int64     `json:"reviewer_id"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	Feedback   string    `json:"feedback,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}

// NewReviewNotifyPayload builds the payload from a workflow step.
func NewReviewNotifyPayload(module string, doc workflow.Document, step workflow.Step) ReviewNotifyPayload {
	return ReviewNotifyPayload{
		Module:     module,
		RecordID:   doc.ID,
		StudentID:  doc.OwnerID,
		ReviewerID: step.ActorID,
		Action:     string(step.Action),
		Status:     string(step.To),
		Feedback:   step.Note,
		DecidedAt:  step.At,
	}
}

// Key identifies the decision so redelivered tasks produce one message.
func (p ReviewNotifyPayload) Key() string {
	return fmt.Sprintf("review:%s:%d:%s:%d", p.Module, p.RecordID, p.Action, p.DecidedAt.UnixNano())
}

func (p ReviewNotifyPayload) validate() error {
	if p.Module == "" || p.RecordID <= 0 || p.StudentID <= 0 || p.ReviewerID <= 0 {
		return fmt.Errorf("review notify: incomplete payload %+v", p)
	}
	return nil
}

// NewReviewNotifyTask constructs an Asynq task.
func NewReviewNotifyTask(payload ReviewNotifyPayload) (*asynq.Task, error) {
	if err := payload.validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReviewNotify, data, asynq.MaxRetry(5)), nil
}

// NewAnnouncementsExpireTask constructs the periodic expiry task.
func NewAnnouncementsExpireTask() *asynq.Task {
	return asynq.NewTask(TaskAnnouncementsExpire, nil, asynq.MaxRetry(1))
}
