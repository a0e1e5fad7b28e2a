// Package lessonplans manages lesson plans students prepare for review.
package lessonplans

import (
	"time"

	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/workflow"
)

const module = "lesson_plan"

// LessonPlan is a teaching plan authored by a student.
type LessonPlan struct {
	ID             int64           `json:"id"`
	StudentID      int64           `json:"student_id"`
	Title          string          `json:"title"`
	Subject        string          `json:"subject"`
	GradeLevel     string          `json:"grade_level"`
	Topic          string          `json:"topic"`
	Objectives     string          `json:"objectives"`
	Content        string          `json:"content"`
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

func (p LessonPlan) document() workflow.Document {
	return workflow.Document{ID: p.ID, OwnerID: p.StudentID, Status: p.Status}
}

// Input is the author-editable content of a plan.
type Input struct {
	Title          string `json:"title" validate:"required,max=200"`
	Subject        string `json:"subject" validate:"required,max=100"`
	GradeLevel     string `json:"grade_level" validate:"max=50"`
	Topic          string `json:"topic" validate:"max=200"`
	Objectives     string `json:"objectives" validate:"max=5000"`
	Content        string `json:"content" validate:"max=20000"`
	AttachmentPath string `json:"attachment_path" validate:"max=500"`
}

func (in Input) normalize() Input {
	in.Title = shared.CleanString(in.Title)
	in.Subject = shared.CleanString(in.Subject)
	in.GradeLevel = shared.CleanString(in.GradeLevel)
	in.Topic = shared.CleanString(in.Topic)
	return in
}

// ListFilter narrows list results.
type ListFilter struct {
	StudentID int64
	Status    workflow.Status
	Subject   string
	Page      shared.PageRequest
}
