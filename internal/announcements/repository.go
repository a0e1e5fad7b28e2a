package announcements

import (
	"context"
	"fmt"
	"time"

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

const announcementSelect = `SELECT id, author_id, title, body, audience, attachment_path, published_at, expires_at, created_at, updated_at
FROM announcements`

// The author always sees their own notices, published or not.
const announcementWhere = ` WHERE $1::boolean
OR (published_at IS NOT NULL AND published_at <= $4 AND (expires_at IS NULL OR expires_at > $4) AND audience = ANY($2::text[]))
OR ($3::bigint <> 0 AND author_id = $3)`

type scanner interface {
	Scan(dest ...any) error
}

func scanAnnouncement(row scanner) (Announcement, error) {
	var (
		a        Announcement
		audience string
	)
	err := row.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Body, &audience, &a.AttachmentPath, &a.PublishedAt, &a.ExpiresAt, &a.CreatedAt, &a.UpdatedAt)
	a.Audience = Audience(audience)
	return a, err
}

func audienceStrings(in []Audience) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = string(a)
	}
	return out
}

// List returns a page of visible announcements, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Announcement, int, error) {
	args := []any{filter.All, audienceStrings(filter.Audiences), filter.AuthorID, filter.Now}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM announcements`+announcementWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("announcements: count: %w", err)
	}
	rows, err := r.pool.Query(ctx, announcementSelect+announcementWhere+` ORDER BY published_at DESC NULLS LAST, id DESC LIMIT $5 OFFSET $6`,
		append(args, filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("announcements: list: %w", err)
	}
	defer rows.Close()
	out := make([]Announcement, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Get fetches one announcement regardless of visibility.
func (r *Repository) Get(ctx context.Context, id int64) (Announcement, error) {
	a, err := scanAnnouncement(r.pool.QueryRow(ctx, announcementSelect+` WHERE id=$1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Announcement{}, fmt.Errorf("announcement %d: %w", id, shared.ErrNotFound)
		}
		return Announcement{}, err
	}
	return a, nil
}

// Create inserts an announcement.
func (r *Repository) Create(ctx context.Context, authorID int64, in Input) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO announcements (author_id, title, body, audience, attachment_path, published_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		authorID, in.Title, in.Body, in.Audience, in.AttachmentPath, in.PublishedAt, in.ExpiresAt).Scan(&id)
	return id, err
}

// Update replaces an announcement's content and window.
func (r *Repository) Update(ctx context.Context, id int64, in Input) error {
	tag, err := r.pool.Exec(ctx, `UPDATE announcements SET title=$2, body=$3, audience=$4, attachment_path=$5, published_at=$6,
expires_at=$7, updated_at=NOW() WHERE id=$1`,
		id, in.Title, in.Body, in.Audience, in.AttachmentPath, in.PublishedAt, in.ExpiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("announcement %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Delete removes an announcement.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("announcement %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Unpublish clears published_at on every announcement that expired before now.
func (r *Repository) Unpublish(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE announcements SET published_at=NULL, updated_at=NOW()
WHERE published_at IS NOT NULL AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("announcements: unpublish: %w", err)
	}
	return tag.RowsAffected(), nil
}
