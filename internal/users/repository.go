package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppl-hub/practicum/internal/personnel"
	"github.com/ppl-hub/practicum/internal/platform/db"
	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/students"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	InsertUser(ctx context.Context, in CreateInput, passwordHash string) (int64, error)
	InsertStudent(ctx context.Context, userID int64, in students.ProfileInput) error
	InsertMentor(ctx context.Context, userID int64, in personnel.MentorInput) error
	InsertSupervisor(ctx context.Context, userID int64, in personnel.SupervisorInput) error
	Audit(ctx context.Context, log shared.AuditLog) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (t *txRepo) InsertUser(ctx context.Context, in CreateInput, passwordHash string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id`,
		in.Username, in.Email, passwordHash, in.Role).Scan(&id)
	if constraint, ok := db.UniqueViolation(err); ok {
		if strings.Contains(constraint, "email") {
			return 0, shared.FieldError("email", "is already registered")
		}
		return 0, shared.FieldError("username", "is already taken")
	}
	return id, err
}

func (t *txRepo) InsertStudent(ctx context.Context, userID int64, in students.ProfileInput) error {
	return students.InsertStudent(ctx, t.tx, userID, in)
}

func (t *txRepo) InsertMentor(ctx context.Context, userID int64, in personnel.MentorInput) error {
	return personnel.InsertMentor(ctx, t.tx, userID, in)
}

func (t *txRepo) InsertSupervisor(ctx context.Context, userID int64, in personnel.SupervisorInput) error {
	return personnel.InsertSupervisor(ctx, t.tx, userID, in)
}

func (t *txRepo) Audit(ctx context.Context, log shared.AuditLog) error {
	return shared.InsertAudit(ctx, t.tx, log)
}

const userColumns = `id, username, email, role, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (User, error) {
	var (
		u    User
		role string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.Role = shared.Role(role)
	return u, err
}

// ListUsers returns a page of users.
func (r *Repository) ListUsers(ctx context.Context, filter ListFilter) ([]User, int, error) {
	const where = ` WHERE (username ILIKE $1 OR email ILIKE $1) AND ($2 = '' OR role = $2) AND ($3::boolean IS NULL OR is_active = $3)`
	args := []any{"%" + filter.Search + "%", string(filter.Role), filter.Active}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users`+where+` ORDER BY id LIMIT $4 OFFSET $5`,
		append(args, filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()
	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// GetUser fetches a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
		}
		return User{}, err
	}
	return u, nil
}

// SetActive flips the is_active flag. Users are never hard-deleted.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	return nil
}
