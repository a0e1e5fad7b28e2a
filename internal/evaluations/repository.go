package evaluations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppl-hub/practicum/internal/grading"
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

const evaluationSelect = `SELECT id, student_id, evaluator_id, period, planning::float8, execution::float8,
classroom_management::float8, professionalism::float8, reflection::float8, total::float8, grade, notes, created_at, updated_at
FROM evaluations`

const evaluationWhere = ` WHERE ($1::bigint = 0 OR student_id = $1) AND ($2::bigint = 0 OR evaluator_id = $2) AND ($3 = '' OR period = $3)`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (Evaluation, error) {
	var (
		e      Evaluation
		period string
	)
	err := row.Scan(&e.ID, &e.StudentID, &e.EvaluatorID, &period, &e.Scores.Planning, &e.Scores.Execution,
		&e.Scores.ClassroomManagement, &e.Scores.Professionalism, &e.Scores.Reflection, &e.Total, &e.Grade, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt)
	e.Period = Period(period)
	return e, err
}

// List returns a page of evaluations.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Evaluation, int, error) {
	args := []any{filter.StudentID, filter.EvaluatorID, string(filter.Period)}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM evaluations`+evaluationWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("evaluations: count: %w", err)
	}
	rows, err := r.pool.Query(ctx, evaluationSelect+evaluationWhere+` ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5`,
		append(args, filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("evaluations: list: %w", err)
	}
	defer rows.Close()
	out := make([]Evaluation, 0)
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Get fetches one evaluation.
func (r *Repository) Get(ctx context.Context, id int64) (Evaluation, error) {
	e, err := scanEvaluation(r.pool.QueryRow(ctx, evaluationSelect+` WHERE id=$1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Evaluation{}, fmt.Errorf("evaluation %d: %w", id, shared.ErrNotFound)
		}
		return Evaluation{}, err
	}
	return e, nil
}

// Create inserts an evaluation with its computed result.
func (r *Repository) Create(ctx context.Context, evaluatorID int64, in CreateInput, res grading.Result) (int64, error) {
	s := res.Scores
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO evaluations (student_id, evaluator_id, period, planning, execution, classroom_management,
professionalism, reflection, total, grade, notes) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		in.StudentID, evaluatorID, in.Period, s.Planning, s.Execution, s.ClassroomManagement, s.Professionalism, s.Reflection,
		res.Total, res.Grade, in.Notes).Scan(&id)
	return id, mapWriteError(err)
}

// Update replaces scores, result and notes.
func (r *Repository) Update(ctx context.Context, id int64, in UpdateInput, res grading.Result) error {
	s := res.Scores
	tag, err := r.pool.Exec(ctx, `UPDATE evaluations SET planning=$2, execution=$3, classroom_management=$4, professionalism=$5,
reflection=$6, total=$7, grade=$8, notes=$9, updated_at=NOW() WHERE id=$1`,
		id, s.Planning, s.Execution, s.ClassroomManagement, s.Professionalism, s.Reflection, res.Total, res.Grade, in.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("evaluation %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Delete removes an evaluation.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM evaluations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("evaluation %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := db.UniqueViolation(err); ok {
		return fmt.Errorf("%w: student already evaluated by you for this period", shared.ErrConflict)
	}
	if db.IsForeignKeyViolation(err) {
		return shared.FieldError("student_id", "has no student profile")
	}
	return err
}
