package students

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppl-hub/practicum/internal/platform/db"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const studentSelect = `SELECT s.user_id, u.username, u.email, u.is_active, s.student_number, s.full_name, s.program,
s.school_id, s.mentor_id, s.supervisor_id, s.created_at, s.updated_at
FROM students s JOIN users u ON u.id = s.user_id`

const studentWhere = ` WHERE (s.full_name ILIKE $1 OR s.student_number ILIKE $1)
AND ($2::bigint = 0 OR s.school_id = $2)
AND ($3::bigint = 0 OR s.mentor_id = $3)
AND ($4::bigint = 0 OR s.supervisor_id = $4)`

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (Student, error) {
	var s Student
	err := row.Scan(&s.UserID, &s.Username, &s.Email, &s.IsActive, &s.StudentNumber, &s.FullName, &s.Program,
		&s.SchoolID, &s.MentorID, &s.SupervisorID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// List returns a page of students.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Student, int, error) {
	args := []any{"%" + filter.Search + "%", filter.SchoolID, filter.MentorID, filter.SupervisorID}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students s`+studentWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("students: count: %w", err)
	}
	rows, err := r.pool.Query(ctx, studentSelect+studentWhere+` ORDER BY s.full_name, s.user_id LIMIT $5 OFFSET $6`,
		append(args, filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("students: list: %w", err)
	}
	defer rows.Close()
	out := make([]Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Get fetches one student profile.
func (r *Repository) Get(ctx context.Context, userID int64) (Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx, studentSelect+` WHERE s.user_id=$1`, userID))
	if err != nil {
		if db.IsNoRows(err) {
			return Student{}, fmt.Errorf("student %d: %w", userID, shared.ErrNotFound)
		}
		return Student{}, err
	}
	return s, nil
}

// UpdateProfile replaces the editable profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE students SET student_number=$2, full_name=$3, program=$4, updated_at=NOW() WHERE user_id=$1`,
		userID, in.StudentNumber, in.FullName, in.Program)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("student %d: %w", userID, shared.ErrNotFound)
	}
	return nil
}

// Assign sets school, mentor and supervisor of a student.
func (r *Repository) Assign(ctx context.Context, userID int64, a Assignment) error {
	tag, err := r.pool.Exec(ctx, `UPDATE students SET school_id=$2, mentor_id=$3, supervisor_id=$4, updated_at=NOW() WHERE user_id=$1`,
		userID, a.SchoolID, a.MentorID, a.SupervisorID)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("student %d: %w", userID, shared.ErrNotFound)
	}
	return nil
}

// InsertStudent creates a student profile through q, usually the transaction creating the account.
func InsertStudent(ctx context.Context, q db.DBTX, userID int64, in ProfileInput) error {
	in = in.normalize()
	_, err := q.Exec(ctx, `INSERT INTO students (user_id, student_number, full_name, program) VALUES ($1, $2, $3, $4)`,
		userID, in.StudentNumber, in.FullName, in.Program)
	return mapWriteError(err)
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := db.UniqueViolation(err); ok {
		return shared.FieldError("student_number", "is already registered")
	}
	if db.IsForeignKeyViolation(err) {
		return shared.FieldError("assignment", "references an unknown school, mentor or supervisor")
	}
	return err
}
