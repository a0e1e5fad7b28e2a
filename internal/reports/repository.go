package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Repository runs aggregate queries on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) countBy(ctx context.Context, sql string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

// UsersByRole counts active users per role.
func (r *Repository) UsersByRole(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, `SELECT role, COUNT(*) FROM users WHERE is_active GROUP BY role`)
}

// RecordsByStatus counts practicum records per status.
func (r *Repository) RecordsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, `SELECT status, COUNT(*) FROM practicum_records GROUP BY status`)
}

// PlansByStatus counts lesson plans per status.
func (r *Repository) PlansByStatus(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, `SELECT status, COUNT(*) FROM lesson_plans GROUP BY status`)
}

// ApprovedHours sums the hours of approved practicum records.
func (r *Repository) ApprovedHours(ctx context.Context) (float64, error) {
	var hours float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(hours), 0)::float8 FROM practicum_records WHERE status='approved'`).Scan(&hours)
	return hours, err
}

// Evaluations aggregates evaluation totals and grades.
func (r *Repository) Evaluations(ctx context.Context) (EvaluationStats, error) {
	var stats EvaluationStats
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(ROUND(AVG(total), 2), 0)::float8 FROM evaluations`).Scan(&stats.Count, &stats.Average); err != nil {
		return EvaluationStats{}, err
	}
	grades, err := r.countBy(ctx, `SELECT grade, COUNT(*) FROM evaluations GROUP BY grade`)
	if err != nil {
		return EvaluationStats{}, err
	}
	stats.Grades = grades
	return stats, nil
}

// StudentHours builds the hour ledger of one student.
func (r *Repository) StudentHours(ctx context.Context, studentID int64) (StudentHours, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM students WHERE user_id=$1)`, studentID).Scan(&exists); err != nil {
		return StudentHours{}, err
	}
	if !exists {
		return StudentHours{}, fmt.Errorf("student %d: %w", studentID, shared.ErrNotFound)
	}
	out := StudentHours{StudentID: studentID, Monthly: make([]MonthHours, 0)}
	err := r.pool.QueryRow(ctx, `SELECT
COALESCE(SUM(hours) FILTER (WHERE status='approved'), 0)::float8,
COALESCE(SUM(hours) FILTER (WHERE status='submitted'), 0)::float8,
COALESCE(SUM(hours) FILTER (WHERE status='draft'), 0)::float8,
COALESCE(SUM(hours) FILTER (WHERE status='rejected'), 0)::float8,
COUNT(*)
FROM practicum_records WHERE student_id=$1`, studentID).Scan(&out.Approved, &out.Pending, &out.Draft, &out.Rejected, &out.Records)
	if err != nil {
		return StudentHours{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT to_char(date_trunc('month', activity_date), 'YYYY-MM'), SUM(hours)::float8
FROM practicum_records WHERE student_id=$1 AND status='approved' GROUP BY 1 ORDER BY 1`, studentID)
	if err != nil {
		return StudentHours{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var m MonthHours
		if err := rows.Scan(&m.Month, &m.Hours); err != nil {
			return StudentHours{}, err
		}
		out.Monthly = append(out.Monthly, m)
	}
	return out, rows.Err()
}
