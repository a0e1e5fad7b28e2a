package personnel

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

type scanner interface {
	Scan(dest ...any) error
}

const mentorSelect = `SELECT m.user_id, u.username, u.email, u.is_active, m.full_name, m.employee_number, m.school_id, m.created_at, m.updated_at
FROM mentors m JOIN users u ON u.id = m.user_id`

func scanMentor(row scanner) (Mentor, error) {
	var m Mentor
	err := row.Scan(&m.UserID, &m.Username, &m.Email, &m.IsActive, &m.FullName, &m.EmployeeNumber, &m.SchoolID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const supervisorSelect = `SELECT s.user_id, u.username, u.email, u.is_active, s.full_name, s.employee_number, s.department, s.created_at, s.updated_at
FROM supervisors s JOIN users u ON u.id = s.user_id`

func scanSupervisor(row scanner) (Supervisor, error) {
	var s Supervisor
	err := row.Scan(&s.UserID, &s.Username, &s.Email, &s.IsActive, &s.FullName, &s.EmployeeNumber, &s.Department, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListMentors returns a page of mentors.
func (r *Repository) ListMentors(ctx context.Context, filter ListFilter) ([]Mentor, int, error) {
	const where = ` WHERE m.full_name ILIKE $1 AND ($2::bigint = 0 OR m.school_id = $2)`
	search := "%" + filter.Search + "%"
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mentors m`+where, search, filter.SchoolID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("personnel: count mentors: %w", err)
	}
	rows, err := r.pool.Query(ctx, mentorSelect+where+` ORDER BY m.full_name, m.user_id LIMIT $3 OFFSET $4`,
		search, filter.SchoolID, filter.Page.Limit, filter.Page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("personnel: list mentors: %w", err)
	}
	defer rows.Close()
	out := make([]Mentor, 0)
	for rows.Next() {
		m, err := scanMentor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// GetMentor fetches one mentor profile.
func (r *Repository) GetMentor(ctx context.Context, userID int64) (Mentor, error) {
	m, err := scanMentor(r.pool.QueryRow(ctx, mentorSelect+` WHERE m.user_id=$1`, userID))
	if err != nil {
		if db.IsNoRows(err) {
			return Mentor{}, fmt.Errorf("mentor %d: %w", userID, shared.ErrNotFound)
		}
		return Mentor{}, err
	}
	return m, nil
}

// UpdateMentor replaces the writable fields of a mentor profile.
func (r *Repository) UpdateMentor(ctx context.Context, userID int64, in MentorInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE mentors SET full_name=$2, employee_number=$3, school_id=$4, updated_at=NOW() WHERE user_id=$1`,
		userID, in.FullName, in.EmployeeNumber, in.SchoolID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return shared.FieldError("school_id", "does not exist")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mentor %d: %w", userID, shared.ErrNotFound)
	}
	return nil
}

// ListSupervisors returns a page of supervisors.
func (r *Repository) ListSupervisors(ctx context.Context, filter ListFilter) ([]Supervisor, int, error) {
	const where = ` WHERE s.full_name ILIKE $1`
	search := "%" + filter.Search + "%"
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM supervisors s`+where, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("personnel: count supervisors: %w", err)
	}
	rows, err := r.pool.Query(ctx, supervisorSelect+where+` ORDER BY s.full_name, s.user_id LIMIT $2 OFFSET $3`,
		search, filter.Page.Limit, filter.Page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("personnel: list supervisors: %w", err)
	}
	defer rows.Close()
	out := make([]Supervisor, 0)
	for rows.Next() {
		s, err := scanSupervisor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// GetSupervisor fetches one supervisor profile.
func (r *Repository) GetSupervisor(ctx context.Context, userID int64) (Supervisor, error) {
	s, err := scanSupervisor(r.pool.QueryRow(ctx, supervisorSelect+` WHERE s.user_id=$1`, userID))
	if err != nil {
		if db.IsNoRows(err) {
			return Supervisor{}, fmt.Errorf("supervisor %d: %w", userID, shared.ErrNotFound)
		}
		return Supervisor{}, err
	}
	return s, nil
}

// UpdateSupervisor replaces the writable fields of a supervisor profile.
func (r *Repository) UpdateSupervisor(ctx context.Context, userID int64, in SupervisorInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE supervisors SET full_name=$2, employee_number=$3, department=$4, updated_at=NOW() WHERE user_id=$1`,
		userID, in.FullName, in.EmployeeNumber, in.Department)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supervisor %d: %w", userID, shared.ErrNotFound)
	}
	return nil
}

// InsertMentor creates a mentor profile through q, usually the transaction creating the account.
func InsertMentor(ctx context.Context, q db.DBTX, userID int64, in MentorInput) error {
	in = in.normalize()
	_, err := q.Exec(ctx, `INSERT INTO mentors (user_id, full_name, employee_number, school_id) VALUES ($1, $2, $3, $4)`,
		userID, in.FullName, in.EmployeeNumber, in.SchoolID)
	if db.IsForeignKeyViolation(err) {
		return shared.FieldError("school_id", "does not exist")
	}
	return err
}

// InsertSupervisor creates a supervisor profile through q.
func InsertSupervisor(ctx context.Context, q db.DBTX, userID int64, in SupervisorInput) error {
	in = in.normalize()
	_, err := q.Exec(ctx, `INSERT INTO supervisors (user_id, full_name, employee_number, department) VALUES ($1, $2, $3, $4)`,
		userID, in.FullName, in.EmployeeNumber, in.Department)
	return err
}
