package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ppl-hub/practicum/internal/auth"
	"github.com/ppl-hub/practicum/internal/personnel"
	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/students"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListUsers(ctx context.Context, filter ListFilter) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (User, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// AuditPort records administrative mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user business logic.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// ListUsers returns a page of users.
func (s *Service) ListUsers(ctx context.Context, actor shared.Identity, filter ListFilter) ([]User, shared.Pagination, error) {
	if err := rbac.Authorize(actor, rbac.UsersManage); err != nil {
		return nil, shared.Pagination{}, err
	}
	filter.Search = shared.CleanString(filter.Search)
	filter.Page = shared.NewPageRequest(filter.Page.Page, filter.Page.Limit)
	items, total, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, total), nil
}

// GetUser returns one account.
func (s *Service) GetUser(ctx context.Context, actor shared.Identity, id int64) (User, error) {
	if err := rbac.Authorize(actor, rbac.UsersManage); err != nil {
		return User{}, err
	}
	return s.repo.GetUser(ctx, id)
}

// CreateUser creates the account and its role profile in one transaction.
func (s *Service) CreateUser(ctx context.Context, actor shared.Identity, in CreateInput) (User, error) {
	if err := rbac.Authorize(actor, rbac.UsersManage); err != nil {
		return User{}, err
	}
	in = in.normalize()
	if err := httpx.Validate(in); err != nil {
		return User{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		id, err = tx.InsertUser(ctx, in, hash)
		if err != nil {
			return err
		}
		switch shared.Role(in.Role) {
		case shared.RoleStudent:
			err = tx.InsertStudent(ctx, id, students.ProfileInput{StudentNumber: in.StudentNumber, FullName: in.FullName, Program: in.Program})
		case shared.RoleMentor:
			err = tx.InsertMentor(ctx, id, personnel.MentorInput{FullName: in.FullName, EmployeeNumber: in.EmployeeNumber, SchoolID: in.SchoolID})
		case shared.RoleSupervisor:
			err = tx.InsertSupervisor(ctx, id, personnel.SupervisorInput{FullName: in.FullName, EmployeeNumber: in.EmployeeNumber, Department: in.Department})
		}
		if err != nil {
			return err
		}
		return tx.Audit(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "USER_CREATE",
			Entity:   "user",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"username": in.Username, "role": in.Role},
		})
	})
	if err != nil {
		return User{}, err
	}
	s.logger.Info("user created", slog.Int64("user_id", id), slog.String("role", in.Role), slog.Int64("actor_id", actor.UserID))
	return s.repo.GetUser(ctx, id)
}

// Deactivate disables login for an account. Admins cannot deactivate themselves.
func (s *Service) Deactivate(ctx context.Context, actor shared.Identity, id int64) (User, error) {
	if err := rbac.Authorize(actor, rbac.UsersManage); err != nil {
		return User{}, err
	}
	if id == actor.UserID {
		return User{}, fmt.Errorf("%w: cannot deactivate your own account", shared.ErrForbidden)
	}
	return s.setActive(ctx, actor, id, false)
}

// Activate re-enables an account.
func (s *Service) Activate(ctx context.Context, actor shared.Identity, id int64) (User, error) {
	if err := rbac.Authorize(actor, rbac.UsersManage); err != nil {
		return User{}, err
	}
	return s.setActive(ctx, actor, id, true)
}

func (s *Service) setActive(ctx context.Context, actor shared.Identity, id int64, active bool) (User, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return User{}, err
	}
	action := "USER_DEACTIVATE"
	if active {
		action = "USER_ACTIVATE"
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{ActorID: actor.UserID, Action: action, Entity: "user", EntityID: strconv.FormatInt(id, 10)}); err != nil {
			s.logger.Warn("audit user", slog.String("action", action), slog.Any("error", err))
		}
	}
	return s.repo.GetUser(ctx, id)
}
