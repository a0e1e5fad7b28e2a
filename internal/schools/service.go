package schools

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]School, int, error)
	Get(ctx context.Context, id int64) (School, error)
	Create(ctx context.Context, in Input) (School, error)
	Update(ctx context.Context, id int64, in Input) (School, error)
	Delete(ctx context.Context, id int64) error
}

// AuditPort records administrative mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages partner schools.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService constructs the schools service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns a page of schools.
func (s *Service) List(ctx context.Context, actor shared.Identity, filter ListFilter) ([]School, shared.Pagination, error) {
	if err := rbac.Authorize(actor, rbac.SchoolsRead); err != nil {
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

// Get returns one school.
func (s *Service) Get(ctx context.Context, actor shared.Identity, id int64) (School, error) {
	if err := rbac.Authorize(actor, rbac.SchoolsRead); err != nil {
		return School{}, err
	}
	return s.repo.Get(ctx, id)
}

// Create registers a school.
func (s *Service) Create(ctx context.Context, actor shared.Identity, in Input) (School, error) {
	if err := rbac.Authorize(actor, rbac.SchoolsWrite); err != nil {
		return School{}, err
	}
	in = in.normalize()
	if err := httpx.Validate(in); err != nil {
		return School{}, err
	}
	school, err := s.repo.Create(ctx, in)
	if err != nil {
		return School{}, err
	}
	s.recordAudit(ctx, actor, "SCHOOL_CREATE", school.ID, map[string]any{"npsn": school.NPSN})
	return school, nil
}

// Update edits a school.
func (s *Service) Update(ctx context.Context, actor shared.Identity, id int64, in Input) (School, error) {
	if err := rbac.Authorize(actor, rbac.SchoolsWrite); err != nil {
		return School{}, err
	}
	in = in.normalize()
	if err := httpx.Validate(in); err != nil {
		return School{}, err
	}
	school, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return School{}, err
	}
	s.recordAudit(ctx, actor, "SCHOOL_UPDATE", id, nil)
	return school, nil
}

// Delete removes a school that is no longer referenced.
func (s *Service) Delete(ctx context.Context, actor shared.Identity, id int64) error {
	if err := rbac.Authorize(actor, rbac.SchoolsWrite); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "SCHOOL_DELETE", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Identity, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{ActorID: actor.UserID, Action: action, Entity: "school", EntityID: strconv.FormatInt(id, 10), Meta: meta})
	if err != nil {
		s.logger.Warn("audit school", slog.String("action", action), slog.Any("error", err))
	}
}
