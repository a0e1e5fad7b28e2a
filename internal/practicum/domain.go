// Package practicum manages daily field-practicum activity records.
package practicum

import (
	"time"

	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/workflow"
)

const module = "practicum_record"

// Record is one logged practicum activity.
type Record struct {
	ID             int64           `json:"id"`
	StudentID      int64           `json:"student_id"`
	ActivityDate   string          `json:"activity_date"`
	Hours          float64         `json:"hours"`
	Activity       string          `json:"activity"`
	Description    string          `json:"description"`
	AttachmentPath string          `json:"attachment_path"`
	Status         workflow.Status `json:"status"`
	ReviewerID     *int64          `json:"reviewer_id"`
	Feedback       string          `json:"feedback"`
	SubmittedAt    *time.Time      `json:"submitted_at"`
	ReviewedAt     *time.Time      `json:"reviewed_at"`
	RevisionOf     *int64          `json:"revision_of"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (r Record) document() workflow.Document {
	return workflow.Document{ID: r.ID, OwnerID: r.StudentID, Status: r.Status}
}

// Input is the author-editable content of a record.
type Input struct {
	ActivityDate   string  `json:"activity_date" validate:"required,datetime=2006-01-02"`
	Hours          float64 `json:"hours" validate:"gt=0,lte=24"`
	Activity       string  `json:"activity" validate:"required,max=200"`
	Description    string  `json:"description" validate:"max=5000"`
	AttachmentPath string  `json:"attachment_path" validate:"max=500"`
}

func (in Input) normalize() Input {
	in.ActivityDate = shared.CleanString(in.ActivityDate)
	in.Activity = shared.CleanString(in.Activity)
	return in
}

// ListFilter narrows list results.
type ListFilter struct {
	StudentID int64
	Status    workflow.Status
	Page      shared.PageRequest
}
