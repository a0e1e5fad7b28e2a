// Package evaluations records rubric-based assessments of students.
package evaluations

import (
	"time"

	"github.com/ppl-hub/practicum/internal/grading"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Period is the assessment window.
type Period string

const (
	PeriodMidterm Period = "midterm"
	PeriodFinal   Period = "final"
)

// Evaluation is one evaluator's assessment of a student for a period.
type Evaluation struct {
	ID          int64          `json:"id"`
	StudentID   int64          `json:"student_id"`
	EvaluatorID int64          `json:"evaluator_id"`
	Period      Period         `json:"period"`
	Scores      grading.Scores `json:"scores"`
	Total       float64        `json:"total"`
	Grade       string         `json:"grade"`
	Notes       string         `json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateInput starts an evaluation. Total and grade are always computed.
type CreateInput struct {
	StudentID int64              `json:"student_id" validate:"required,gt=0"`
	Period    string             `json:"period" validate:"required,oneof=midterm final"`
	Scores    grading.ScoreInput `json:"scores"`
	Notes     string             `json:"notes" validate:"max=5000"`
}

// UpdateInput replaces the whole score set and notes.
type UpdateInput struct {
	Scores grading.ScoreInput `json:"scores"`
	Notes  string             `json:"notes" validate:"max=5000"`
}

// ListFilter narrows list results.
type ListFilter struct {
	StudentID   int64
	EvaluatorID int64
	Period      Period
	Page        shared.PageRequest
}
