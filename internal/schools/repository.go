package schools

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

const schoolColumns = `id, name, npsn, address, phone, headmaster, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSchool(row scanner) (School, error) {
	var s School
	err := row.Scan(&s.ID, &s.Name, &s.NPSN, &s.Address, &s.Phone, &s.Headmaster, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// List returns a page of schools ordered by name.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]School, int, error) {
	search := "%" + filter.Search + "%"
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM schools WHERE name ILIKE $1 OR npsn ILIKE $1`, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("schools: count: %w", err)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+schoolColumns+` FROM schools
WHERE name ILIKE $1 OR npsn ILIKE $1
ORDER BY name ASC, id ASC LIMIT $2 OFFSET $3`, search, filter.Page.Limit, filter.Page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("schools: list: %w", err)
	}
	defer rows.Close()
	out := make([]School, 0)
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Get fetches a school by id.
func (r *Repository) Get(ctx context.Context, id int64) (School, error) {
	s, err := scanSchool(r.pool.QueryRow(ctx, `SELECT `+schoolColumns+` FROM schools WHERE id=$1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return School{}, fmt.Errorf("school %d: %w", id, shared.ErrNotFound)
		}
		return School{}, err
	}
	return s, nil
}

// Create inserts a school.
func (r *Repository) Create(ctx context.Context, in Input) (School, error) {
	s, err := scanSchool(r.pool.QueryRow(ctx, `INSERT INTO schools (name, npsn, address, phone, headmaster)
VALUES ($1, $2, $3, $4, $5) RETURNING `+schoolColumns, in.Name, in.NPSN, in.Address, in.Phone, in.Headmaster))
	if err != nil {
		return School{}, mapWriteError(err)
	}
	return s, nil
}

// Update replaces the writable fields of a school.
func (r *Repository) Update(ctx context.Context, id int64, in Input) (School, error) {
	s, err := scanSchool(r.pool.QueryRow(ctx, `UPDATE schools SET name=$2, npsn=$3, address=$4, phone=$5, headmaster=$6, updated_at=NOW()
WHERE id=$1 RETURNING `+schoolColumns, id, in.Name, in.NPSN, in.Address, in.Phone, in.Headmaster))
	if err != nil {
		if db.IsNoRows(err) {
			return School{}, fmt.Errorf("school %d: %w", id, shared.ErrNotFound)
		}
		return School{}, mapWriteError(err)
	}
	return s, nil
}

// Delete removes a school.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schools WHERE id=$1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("school %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func mapWriteError(err error) error {
	if _, ok := db.UniqueViolation(err); ok {
		return shared.FieldError("npsn", "is already registered")
	}
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: school is still referenced", shared.ErrConflict)
	}
	return err
}
