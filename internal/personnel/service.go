package personnel

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
	ListMentors(ctx context.Context, filter ListFilter) ([]Mentor, int, error)
	GetMentor(ctx context.Context, userID int64) (Mentor, error)
	UpdateMentor(ctx context.Context, userID int64, in MentorInput) error
	ListSupervisors(ctx context.Context, filter ListFilter) ([]Supervisor, int, error)
	GetSupervisor(ctx context.Context, userID int64) (Supervisor, error)
	UpdateSupervisor(ctx context.Context, userID int64, in SupervisorInput) error
}

// AuditPort records administrative mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages mentor and supervisor profiles.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService constructs the personnel service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

func normalizeFilter(filter ListFilter) ListFilter {
	filter.Search = shared.CleanString(filter.Search)
	filter.Page = shared.NewPageRequest(filter.Page.Page, filter.Page.Limit)
	return filter
}

// ListMentors returns a page of mentors.
func (s *Service) ListMentors(ctx context.Context, actor shared.Identity, filter ListFilter) ([]Mentor, shared.Pagination, error) {
	if err := rbac.Authorize(actor, rbac.PersonnelRead); err != nil {
		return nil, shared.Pagination{}, err
	}
	filter = normalizeFilter(filter)
	items, total, err := s.repo.ListMentors(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, total), nil
}

// GetMentor returns one mentor.
func (s *Service) GetMentor(ctx context.Context, actor shared.Identity, userID int64) (Mentor, error) {
	if err := rbac.Authorize(actor, rbac.PersonnelRead); err != nil {
		return Mentor{}, err
	}
	return s.repo.GetMentor(ctx, userID)
}

// UpdateMentor edits a mentor profile. Only admins may move a mentor to another school.
func (s *Service) UpdateMentor(ctx context.Context, actor shared.Identity, userID int64, in MentorInput) (Mentor, error) {
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.PersonnelUpdate, userID); err != nil {
		return Mentor{}, err
	}
	current, err := s.repo.GetMentor(ctx, userID)
	if err != nil {
		return Mentor{}, err
	}
	in = in.normalize()
	if err := httpx.Validate(in); err != nil {
		return Mentor{}, err
	}
	if !actor.Is(shared.RoleAdmin) && !sameID(current.SchoolID, in.SchoolID) {
		return Mentor{}, fmt.Errorf("%w: only admins may change the school of a mentor", shared.ErrForbidden)
	}
	if err := s.repo.UpdateMentor(ctx, userID, in); err != nil {
		return Mentor{}, err
	}
	s.recordAudit(ctx, actor, "mentor", userID)
	return s.repo.GetMentor(ctx, userID)
}

// ListSupervisors returns a page of supervisors.
func (s *Service) ListSupervisors(ctx context.Context, actor shared.Identity, filter ListFilter) ([]Supervisor, shared.Pagination, error) {
	if err := rbac.Authorize(actor, rbac.PersonnelRead); err != nil {
		return nil, shared.Pagination{}, err
	}
	filter = normalizeFilter(filter)
	items, total, err := s.repo.ListSupervisors(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, total), nil
}

// GetSupervisor returns one supervisor.
func (s *Service) GetSupervisor(ctx context.Context, actor shared.Identity, userID int64) (Supervisor, error) {
	if err := rbac.Authorize(actor, rbac.PersonnelRead); err != nil {
		return Supervisor{}, err
	}
	return s.repo.GetSupervisor(ctx, userID)
}

// UpdateSupervisor edits a supervisor profile.
func (s *Service) UpdateSupervisor(ctx context.Context, actor shared.Identity, userID int64, in SupervisorInput) (Supervisor, error) {
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.PersonnelUpdate, userID); err != nil {
		return Supervisor{}, err
	}
	in = in.normalize()
	if err := httpx.Validate(in); err != nil {
		return Supervisor{}, err
	}
	if err := s.repo.UpdateSupervisor(ctx, userID, in); err != nil {
		return Supervisor{}, err
	}
	s.recordAudit(ctx, actor, "supervisor", userID)
	return s.repo.GetSupervisor(ctx, userID)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Identity, entity string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{ActorID: actor.UserID, Action: "PROFILE_UPDATE", Entity: entity, EntityID: strconv.FormatInt(id, 10)})
	if err != nil {
		s.logger.Warn("audit profile", slog.String("entity", entity), slog.Any("error", err))
	}
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
