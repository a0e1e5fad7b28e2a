package shared

import (
	"context"
	"errors"
	"time"

	"github.com/ppl-hub/practicum/internal/platform/db"
)

// ReviewAction enumerates review log actions.
type ReviewAction string

const (
	ReviewSubmit          ReviewAction = "SUBMIT"
	ReviewApprove         ReviewAction = "APPROVE"
	ReviewReject          ReviewAction = "REJECT"
	ReviewRequestRevision ReviewAction = "REQUEST_REVISION"
	// ReviewFeedback is the only entry allowed once a record is final.
	ReviewFeedback ReviewAction = "FEEDBACK"
	ReviewRevise   ReviewAction = "REVISE"
)

// ReviewEntry is a single row of the append-only review history.
type ReviewEntry struct {
	ID      int64        `json:"id"`
	Module  string       `json:"module"`
	RefID   int64        `json:"ref_id"`
	ActorID int64        `json:"actor_id"`
	Action  ReviewAction `json:"action"`
	Note    string       `json:"note"`
	At      time.Time    `json:"at"`
}

// Validate checks the mandatory fields of an entry.
func (e ReviewEntry) Validate() error {
	switch {
	case e.Module == "":
		return errors.New("review module required")
	case e.RefID == 0:
		return errors.New("review ref id required")
	case e.ActorID == 0:
		return errors.New("review actor required")
	case e.Action == "":
		return errors.New("review action required")
	}
	return nil
}

// AppendReview inserts a review entry. Rows in review_logs are never updated or deleted.
func AppendReview(ctx context.Context, q db.DBTX, entry ReviewEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	var at any
	if !entry.At.IsZero() {
		at = entry.At
	}
	_, err := q.Exec(ctx, `INSERT INTO review_logs (module, ref_id, actor_id, action, note, at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, entry.Module, entry.RefID, entry.ActorID, string(entry.Action), entry.Note, at)
	return err
}

// ListReviews returns the review history for module/ref, oldest first.
func ListReviews(ctx context.Context, q db.DBTX, module string, refID int64) ([]ReviewEntry, error) {
	rows, err := q.Query(ctx, `SELECT id, module, ref_id, actor_id, action, note, at
FROM review_logs WHERE module=$1 AND ref_id=$2 ORDER BY at ASC, id ASC`, module, refID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]ReviewEntry, 0)
	for rows.Next() {
		var e ReviewEntry
		var action string
		if err := rows.Scan(&e.ID, &e.Module, &e.RefID, &e.ActorID, &action, &e.Note, &e.At); err != nil {
			return nil, err
		}
		e.Action = ReviewAction(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
