// Package students manages student profiles and their placement.
package students

import (
	"time"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Student is the profile of a practicum student. UserID doubles as the student id.
type Student struct {
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	IsActive      bool      `json:"is_active"`
	StudentNumber string    `json:"student_number"`
	FullName      string    `json:"full_name"`
	Program       string    `json:"program"`
	SchoolID      *int64    `json:"school_id"`
	MentorID      *int64    `json:"mentor_id"`
	SupervisorID  *int64    `json:"supervisor_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProfileInput is the part of a profile the student may edit.
type ProfileInput struct {
	StudentNumber string `json:"student_number" validate:"required,max=30"`
	FullName      string `json:"full_name" validate:"required,max=200"`
	Program       string `json:"program" validate:"max=200"`
}

func (in ProfileInput) normalize() ProfileInput {
	in.StudentNumber = shared.CleanString(in.StudentNumber)
	in.FullName = shared.NormalizeName(in.FullName)
	in.Program = shared.CleanString(in.Program)
	return in
}

// Assignment places a student at a school with a mentor and a supervisor.
type Assignment struct {
	SchoolID     *int64 `json:"school_id" validate:"omitempty,gt=0"`
	MentorID     *int64 `json:"mentor_id" validate:"omitempty,gt=0"`
	SupervisorID *int64 `json:"supervisor_id" validate:"omitempty,gt=0"`
}

// ListFilter narrows list results.
type ListFilter struct {
	Search       string
	SchoolID     int64
	MentorID     int64
	SupervisorID int64
	Page         shared.PageRequest
}
