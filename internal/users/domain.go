package users

import (
	"time"

	"github.com/ppl-hub/practicum/internal/shared"
)

// User represents a user account for management.
type User struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      shared.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateInput creates an account and, for non-admin roles, its profile.
type CreateInput struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin student mentor supervisor"`

	FullName       string `json:"full_name" validate:"required_unless=Role admin,max=200"`
	StudentNumber  string `json:"student_number" validate:"required_if=Role student,max=30"`
	Program        string `json:"program" validate:"max=200"`
	EmployeeNumber string `json:"employee_number" validate:"max=50"`
	Department     string `json:"department" validate:"max=200"`
	SchoolID       *int64 `json:"school_id" validate:"omitempty,gt=0"`
}

func (in CreateInput) normalize() CreateInput {
	in.Username = shared.NormalizeUsername(in.Username)
	in.Email = shared.NormalizeUsername(in.Email)
	in.Role = shared.NormalizeUsername(in.Role)
	in.FullName = shared.NormalizeName(in.FullName)
	in.StudentNumber = shared.CleanString(in.StudentNumber)
	in.Program = shared.CleanString(in.Program)
	in.EmployeeNumber = shared.CleanString(in.EmployeeNumber)
	in.Department = shared.CleanString(in.Department)
	return in
}

// ListFilter narrows list results.
type ListFilter struct {
	Search string
	Role   shared.Role
	Active *bool
	Page   shared.PageRequest
}
