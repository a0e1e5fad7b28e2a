package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppl-hub/practicum/internal/observability"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokens   *TokenManager
	throttle Throttle
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewService constructs a new Service. A nil throttle disables login throttling.
func NewService(repo Repository, tokens *TokenManager, throttle Throttle, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if throttle == nil {
		throttle = noopThrottle{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, throttle: throttle, metrics: metrics, logger: logger}
}

// IssueToken verifies credentials and mints a bearer token.
func (s *Service) IssueToken(ctx context.Context, login, password string) (Token, error) {
	login = shared.NormalizeUsername(login)
	if login == "" || password == "" {
		return Token{}, shared.NewValidationError(map[string]string{
			"username": "username and password are required",
		})
	}
	if err := s.throttle.Check(ctx, login); err != nil {
		s.metrics.ObserveLogin("throttled")
		return Token{}, err
	}

	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.rejectLogin(ctx, login)
			return Token{}, shared.ErrInvalidCredentials
		}
		return Token{}, fmt.Errorf("auth: find user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		s.rejectLogin(ctx, login)
		return Token{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.metrics.ObserveLogin("inactive")
		return Token{}, shared.ErrAccountInactive
	}

	s.throttle.Reset(ctx, login)
	access, expiresAt, err := s.tokens.Mint(user.ID)
	if err != nil {
		return Token{}, err
	}
	s.metrics.ObserveLogin("ok")
	s.logger.Info("login", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	return Token{AccessToken: access, TokenType: "Bearer", ExpiresAt: expiresAt, User: *user}, nil
}

func (s *Service) rejectLogin(ctx context.Context, login string) {
	s.throttle.Fail(ctx, login)
	s.metrics.ObserveLogin("failed")
}

// ValidateToken verifies raw and resolves the caller's current role from the store.
func (s *Service) ValidateToken(ctx context.Context, raw string) (shared.Identity, error) {
	claims, err := s.tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		return shared.Identity{}, err
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.Identity{}, shared.ErrUserNotFound
		}
		return shared.Identity{}, fmt.Errorf("auth: load user: %w", err)
	}
	if !user.IsActive {
		return shared.Identity{}, shared.ErrUserNotFound
	}
	return user.Identity(), nil
}

// OptionalValidate returns the identity behind raw, or false for an empty or bad token.
func (s *Service) OptionalValidate(ctx context.Context, raw string) (shared.Identity, bool) {
	if strings.TrimSpace(raw) == "" {
		return shared.Identity{}, false
	}
	id, err := s.ValidateToken(ctx, raw)
	if err != nil {
		if !errors.Is(err, shared.ErrUnauthenticated) {
			s.logger.Warn("optional token validation", slog.Any("error", err))
		}
		return shared.Identity{}, false
	}
	return id, true
}

// Me returns the account of the caller.
func (s *Service) Me(ctx context.Context, id shared.Identity) (*User, error) {
	user, err := s.repo.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, id shared.Identity, current, next string) error {
	fields := map[string]string{}
	if current == "" {
		fields["current_password"] = "is required"
	}
	if len(next) < MinPasswordLength {
		fields["new_password"] = fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	} else if next == current {
		fields["new_password"] = "must differ from the current password"
	}
	if len(fields) > 0 {
		return shared.NewValidationError(fields)
	}

	user, err := s.Me(ctx, id)
	if err != nil {
		return err
	}
	if !CheckPassword(user.PasswordHash, current) {
		return shared.FieldError("current_password", "is incorrect")
	}
	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", slog.Int64("user_id", user.ID))
	return nil
}
