package lessonplans

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppl-hub/practicum/internal/platform/db"
	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/workflow"
)

// Repository provides PostgreSQL backed persistence and the workflow store.
type Repository struct {
	*workflow.PGStore
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{PGStore: workflow.NewPGStore(pool, "lesson_plans", module), pool: pool}
}

const planSelect = `SELECT id, student_id, title, subject, grade_level, topic, objectives, content, attachment_path,
status, reviewer_id, feedback, submitted_at, reviewed_at, revision_of, created_at, updated_at
FROM lesson_plans`

const planWhere = ` WHERE ($1::bigint = 0 OR student_id = $1) AND ($2 = '' OR status = $2) AND ($3 = '' OR subject ILIKE $3)`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (LessonPlan, error) {
	var (
		p      LessonPlan
		status string
	)
	err := row.Scan(&p.ID, &p.StudentID, &p.Title, &p.Subject, &p.GradeLevel, &p.Topic, &p.Objectives, &p.Content,
		&p.AttachmentPath, &status, &p.ReviewerID, &p.Feedback, &p.SubmittedAt, &p.ReviewedAt, &p.RevisionOf,
		&p.CreatedAt, &p.UpdatedAt)
	p.Status = workflow.Status(status)
	return p, err
}

// List returns a page of plans, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]LessonPlan, int, error) {
	args := []any{filter.StudentID, string(filter.Status), filter.Subject}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lesson_plans`+planWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("lessonplans: count: %w", err)
	}
	rows, err := r.pool.Query(ctx, planSelect+planWhere+` ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5`,
		append(args, filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("lessonplans: list: %w", err)
	}
	defer rows.Close()
	out := make([]LessonPlan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Get fetches one plan.
func (r *Repository) Get(ctx context.Context, id int64) (LessonPlan, error) {
	p, err := scanPlan(r.pool.QueryRow(ctx, planSelect+` WHERE id=$1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return LessonPlan{}, fmt.Errorf("lesson plan %d: %w", id, shared.ErrNotFound)
		}
		return LessonPlan{}, err
	}
	return p, nil
}

// Create inserts a draft for studentID.
func (r *Repository) Create(ctx context.Context, studentID int64, in Input) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO lesson_plans (student_id, title, subject, grade_level, topic, objectives, content, attachment_path)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		studentID, in.Title, in.Subject, in.GradeLevel, in.Topic, in.Objectives, in.Content, in.AttachmentPath).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return 0, shared.FieldError("student_id", "has no student profile")
	}
	return id, err
}

// Update replaces the content while the status is still expected.
func (r *Repository) Update(ctx context.Context, id int64, expected workflow.Status, in Input) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE lesson_plans SET title=$3, subject=$4, grade_level=$5, topic=$6, objectives=$7,
content=$8, attachment_path=$9, updated_at=NOW() WHERE id=$1 AND status=$2`,
		id, string(expected), in.Title, in.Subject, in.GradeLevel, in.Topic, in.Objectives, in.Content, in.AttachmentPath)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a plan.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lesson_plans WHERE id=$1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: lesson plan has a revision", shared.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lesson plan %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Revise copies a rejected plan into a new draft and logs REVISE on the original.
func (r *Repository) Revise(ctx context.Context, id, actorID int64) (int64, error) {
	var newID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO lesson_plans (student_id, title, subject, grade_level, topic, objectives, content, attachment_path, revision_of)
SELECT student_id, title, subject, grade_level, topic, objectives, content, attachment_path, id
FROM lesson_plans WHERE id=$1 AND status=$2 RETURNING id`, id, string(workflow.StatusRejected)).Scan(&newID)
		if err != nil {
			if _, ok := db.UniqueViolation(err); ok {
				return fmt.Errorf("%w: lesson plan was already revised", shared.ErrConflict)
			}
			if db.IsNoRows(err) {
				return shared.ErrConflict
			}
			return err
		}
		return shared.AppendReview(ctx, tx, shared.ReviewEntry{
			Module:  module,
			RefID:   id,
			ActorID: actorID,
			Action:  shared.ReviewRevise,
			Note:    "revision " + strconv.FormatInt(newID, 10),
		})
	})
	return newID, err
}
