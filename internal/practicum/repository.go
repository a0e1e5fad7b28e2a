package practicum

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

// Repository provides PostgreSQL backed persistence. It is also the workflow store.
type Repository struct {
	*workflow.PGStore
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{PGStore: workflow.NewPGStore(pool, "practicum_records", module), pool: pool}
}

const recordSelect = `SELECT id, student_id, to_char(activity_date, 'YYYY-MM-DD'), hours::float8, activity, description,
attachment_path, status, reviewer_id, feedback, submitted_at, reviewed_at, revision_of, created_at, updated_at
FROM practicum_records`

const recordWhere = ` WHERE ($1::bigint = 0 OR student_id = $1) AND ($2 = '' OR status = $2)`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec    Record
		status string
	)
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.ActivityDate, &rec.Hours, &rec.Activity, &rec.Description,
		&rec.AttachmentPath, &status, &rec.ReviewerID, &rec.Feedback, &rec.SubmittedAt, &rec.ReviewedAt, &rec.RevisionOf,
		&rec.CreatedAt, &rec.UpdatedAt)
	rec.Status = workflow.Status(status)
	return rec, err
}

// List returns a page of records, newest activity first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	args := []any{filter.StudentID, string(filter.Status)}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM practicum_records`+recordWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("practicum: count: %w", err)
	}
	rows, err := r.pool.Query(ctx, recordSelect+recordWhere+` ORDER BY activity_date DESC, id DESC LIMIT $3 OFFSET $4`,
		append(args, filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("practicum: list: %w", err)
	}
	defer rows.Close()
	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

// Get fetches one record.
func (r *Repository) Get(ctx context.Context, id int64) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, recordSelect+` WHERE id=$1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Record{}, fmt.Errorf("practicum record %d: %w", id, shared.ErrNotFound)
		}
		return Record{}, err
	}
	return rec, nil
}

// Create inserts a draft for studentID.
func (r *Repository) Create(ctx context.Context, studentID int64, in Input) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO practicum_records (student_id, activity_date, hours, activity, description, attachment_path)
VALUES ($1, $2::date, $3, $4, $5, $6) RETURNING id`,
		studentID, in.ActivityDate, in.Hours, in.Activity, in.Description, in.AttachmentPath).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return 0, shared.FieldError("student_id", "has no student profile")
	}
	return id, err
}

// Update replaces the content while the status is still expected. It reports false when
// the status moved on.
func (r *Repository) Update(ctx context.Context, id int64, expected workflow.Status, in Input) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE practicum_records SET activity_date=$3::date, hours=$4, activity=$5, description=$6,
attachment_path=$7, updated_at=NOW() WHERE id=$1 AND status=$2`,
		id, string(expected), in.ActivityDate, in.Hours, in.Activity, in.Description, in.AttachmentPath)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a record.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM practicum_records WHERE id=$1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: record has a revision", shared.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("practicum record %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Revise copies a rejected record into a new draft and logs REVISE on the original.
func (r *Repository) Revise(ctx context.Context, id, actorID int64) (int64, error) {
	var newID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO practicum_records (student_id, activity_date, hours, activity, description, attachment_path, revision_of)
SELECT student_id, activity_date, hours, activity, description, attachment_path, id
FROM practicum_records WHERE id=$1 AND status=$2 RETURNING id`, id, string(workflow.StatusRejected)).Scan(&newID)
		if err != nil {
			if _, ok := db.UniqueViolation(err); ok {
				return fmt.Errorf("%w: record was already revised", shared.ErrConflict)
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
