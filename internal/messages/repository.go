package messages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppl-hub/practicum/internal/platform/db"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
	q    db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: pool}
}

const messageSelect = `SELECT id, sender_id, recipient_id, subject, body, read_at, created_at FROM messages`

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Subject, &m.Body, &m.ReadAt, &m.CreatedAt)
	return m, err
}

// List returns one mailbox page, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Message, int, error) {
	column := "recipient_id"
	if filter.Box == Sent {
		column = "sender_id"
	}
	where := ` WHERE ` + column + ` = $1 AND (NOT $2::boolean OR read_at IS NULL)`
	args := []any{filter.UserID, filter.UnreadOnly}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM messages`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("messages: count: %w", err)
	}
	rows, err := r.q.Query(ctx, messageSelect+where+` ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		append(args, filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("messages: list: %w", err)
	}
	defer rows.Close()
	out := make([]Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// Get fetches one message.
func (r *Repository) Get(ctx context.Context, id int64) (Message, error) {
	m, err := scanMessage(r.q.QueryRow(ctx, messageSelect+` WHERE id=$1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Message{}, fmt.Errorf("message %d: %w", id, shared.ErrNotFound)
		}
		return Message{}, err
	}
	return m, nil
}

// Create stores a message.
func (r *Repository) Create(ctx context.Context, senderID int64, in Input) (int64, error) {
	return InsertMessage(ctx, r.q, senderID, in)
}

// DeliverOnce stores a message unless key was delivered before. It reports
// false for a duplicate key.
func (r *Repository) DeliverOnce(ctx context.Context, key string, senderID int64, in Input) (int64, bool, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := shared.NewIdempotencyStore(tx).Claim(ctx, key, "messages"); err != nil {
			return err
		}
		var err error
		id, err = InsertMessage(ctx, tx, senderID, in)
		return err
	})
	if errors.Is(err, shared.ErrIdempotencyConflict) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// MarkRead sets read_at once. Later calls keep the first timestamp.
func (r *Repository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE messages SET read_at=COALESCE(read_at, $2) WHERE id=$1`, id, at)
	return err
}

// InsertMessage writes a message through q. Background jobs use it for system notices.
func InsertMessage(ctx context.Context, q db.DBTX, senderID int64, in Input) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `INSERT INTO messages (sender_id, recipient_id, subject, body) VALUES ($1, $2, $3, $4) RETURNING id`,
		senderID, in.RecipientID, in.Subject, in.Body).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return 0, shared.FieldError("recipient_id", "does not exist")
	}
	return id, err
}
