package workflow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppl-hub/practicum/internal/platform/db"
	"github.com/ppl-hub/practicum/internal/shared"
)

// PGStore is the PostgreSQL Store for a table with the common review columns:
// id, student_id, status, reviewer_id, feedback, submitted_at, reviewed_at, updated_at.
type PGStore struct {
	pool   *pgxpool.Pool
	table  string
	module string
}

// NewPGStore binds a store to table. table is a compile-time constant of the caller.
func NewPGStore(pool *pgxpool.Pool, table, module string) *PGStore {
	return &PGStore{pool: pool, table: table, module: module}
}

// LoadDocument reads the workflow view of a row.
func (s *PGStore) LoadDocument(ctx context.Context, id int64) (Document, error) {
	var (
		doc    Document
		status string
	)
	err := s.pool.QueryRow(ctx, `SELECT id, student_id, status FROM `+s.table+` WHERE id=$1`, id).Scan(&doc.ID, &doc.OwnerID, &status)
	if err != nil {
		if db.IsNoRows(err) {
			return Document{}, fmt.Errorf("%s %d: %w", s.module, id, shared.ErrNotFound)
		}
		return Document{}, err
	}
	doc.Status = Status(status)
	return doc, nil
}

// ApplyStep performs the compare-and-set update and logs the review entry in one transaction.
func (s *PGStore) ApplyStep(ctx context.Context, step Step) (bool, error) {
	applied := false
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		review := step.Action.IsReview()
		tag, err := tx.Exec(ctx, `UPDATE `+s.table+` SET status=$3, updated_at=$4::timestamptz,
submitted_at = CASE WHEN $5::boolean THEN $4::timestamptz ELSE submitted_at END,
reviewer_id = CASE WHEN $6::boolean THEN $7::bigint ELSE reviewer_id END,
feedback = CASE WHEN $6::boolean THEN $8::text ELSE feedback END,
reviewed_at = CASE WHEN $6::boolean THEN $4::timestamptz ELSE reviewed_at END
WHERE id=$1 AND status=$2`,
			step.ID, string(step.From), string(step.To), step.At, step.Action == ActionSubmit, review, step.ActorID, step.Note)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		applied = true
		return shared.AppendReview(ctx, tx, shared.ReviewEntry{
			Module:  s.module,
			RefID:   step.ID,
			ActorID: step.ActorID,
			Action:  step.Action.ReviewAction(),
			Note:    step.Note,
			At:      step.At,
		})
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// AppendReview writes a standalone review entry.
func (s *PGStore) AppendReview(ctx context.Context, entry shared.ReviewEntry) error {
	entry.Module = s.module
	return shared.AppendReview(ctx, s.pool, entry)
}

// ListReviews returns the review history of id.
func (s *PGStore) ListReviews(ctx context.Context, id int64) ([]shared.ReviewEntry, error) {
	return shared.ListReviews(ctx, s.pool, s.module, id)
}
