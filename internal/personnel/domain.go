// Package personnel manages mentor and supervisor profiles.
package personnel

import (
	"time"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Mentor is a teacher at a partner school guiding students on site.
type Mentor struct {
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	IsActive       bool      `json:"is_active"`
	FullName       string    `json:"full_name"`
	EmployeeNumber string    `json:"employee_number"`
	SchoolID       *int64    `json:"school_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Supervisor is a faculty member supervising students from campus.
type Supervisor struct {
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	IsActive       bool      `json:"is_active"`
	FullName       string    `json:"full_name"`
	EmployeeNumber string    `json:"employee_number"`
	Department     string    `json:"department"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MentorInput is the writable part of a mentor profile.
type MentorInput struct {
	FullName       string `json:"full_name" validate:"required,max=200"`
	EmployeeNumber string `json:"employee_number" validate:"max=50"`
	SchoolID       *int64 `json:"school_id" validate:"omitempty,gt=0"`
}

func (in MentorInput) normalize() MentorInput {
	in.FullName = shared.NormalizeName(in.FullName)
	in.EmployeeNumber = shared.CleanString(in.EmployeeNumber)
	return in
}

// SupervisorInput is the writable part of a supervisor profile.
type SupervisorInput struct {
	FullName       string `json:"full_name" validate:"required,max=200"`
	EmployeeNumber string `json:"employee_number" validate:"max=50"`
	Department     string `json:"department" validate:"max=200"`
}

func (in SupervisorInput) normalize() SupervisorInput {
	in.FullName = shared.NormalizeName(in.FullName)
	in.EmployeeNumber = shared.CleanString(in.EmployeeNumber)
	in.Department = shared.CleanString(in.Department)
	return in
}

// ListFilter narrows list results.
type ListFilter struct {
	Search   string
	SchoolID int64
	Page     shared.PageRequest
}
