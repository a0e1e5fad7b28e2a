package students

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]Student, int, error)
	Get(ctx context.Context, userID int64) (Student, error)
	UpdateProfile(ctx context.Context, userID int64, in ProfileInput) error
	Assign(ctx context.Context, userID int64, a Assignment) error
}

// AuditPort records administrative mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages student profiles.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService constructs the students service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns a page of students for staff.
func (s *Service) List(ctx context.Context, actor shared.Identity, filter ListFilter) ([]Student, shared.Pagination, error) {
	if err := rbac.Authorize(actor, rbac.StudentsList); err != nil {
		return nil, shared.Pagination{}, err
	}
	filter.Search = shared.CleanString(filter.Search)
	filter.Page = shared.NewPageRequest(filter.Page.Page, filter.Page.Limit)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, total), nil
}

// Get returns a profile to its owner or to staff.
func (s *Service) Get(ctx context.Context, actor shared.Identity, userID int64) (Student, error) {
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.StudentsRead, userID); err != nil {
		return Student{}, err
	}
	return s.repo.Get(ctx, userID)
}

// UpdateProfile edits a profile. Students cannot change their own student number.
func (s *Service) UpdateProfile(ctx context.Context, actor shared.Identity, userID int64, in ProfileInput) (Student, error) {
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.StudentsUpdate, userID); err != nil {
		return Student{}, err
	}
	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Student{}, err
	}
	in = in.normalize()
	if err := httpx.Validate(in); err != nil {
		return Student{}, err
	}
	if !actor.Is(shared.RoleAdmin) && in.StudentNumber != current.StudentNumber {
		return Student{}, fmt.Errorf("%w: only admins may change a student number", shared.ErrForbidden)
	}
	if err := s.repo.UpdateProfile(ctx, userID, in); err != nil {
		return Student{}, err
	}
	s.recordAudit(ctx, actor, "STUDENT_UPDATE", userID, nil)
	return s.repo.Get(ctx, userID)
}

// Assign places a student. Admin only.
func (s *Service) Assign(ctx context.Context, actor shared.Identity, userID int64, a Assignment) (Student, error) {
	if err := rbac.Authorize(actor, rbac.StudentsAssign); err != nil {
		return Student{}, err
	}
	if err := httpx.Validate(a); err != nil {
		return Student{}, err
	}
	if err := s.repo.Assign(ctx, userID, a); err != nil {
		return Student{}, err
	}
	s.recordAudit(ctx, actor, "STUDENT_ASSIGN", userID, map[string]any{
		"school_id": a.SchoolID, "mentor_id": a.MentorID, "supervisor_id": a.SupervisorID,
	})
	return s.repo.Get(ctx, userID)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Identity, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{ActorID: actor.UserID, Action: action, Entity: "student", EntityID: strconv.FormatInt(id, 10), Meta: meta})
	if err != nil {
		s.logger.Warn("audit student", slog.String("action", action), slog.Any("error", err))
	}
}
