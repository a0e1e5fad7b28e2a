package announcements

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]Announcement, int, error)
	Get(ctx context.Context, id int64) (Announcement, error)
	Create(ctx context.Context, authorID int64, in Input) (int64, error)
	Update(ctx context.Context, id int64, in Input) error
	Delete(ctx context.Context, id int64) error
	Unpublish(ctx context.Context, now time.Time) (int64, error)
}

// Service implements announcement use cases.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the announcements service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// List returns the announcements visible to actor, who may be anonymous.
func (s *Service) List(ctx context.Context, actor shared.Identity, page shared.PageRequest) ([]Announcement, shared.Pagination, error) {
	filter := ListFilter{
		Audiences: VisibleTo(actor),
		All:       actor.Is(shared.RoleAdmin),
		AuthorID:  actor.UserID,
		Now:       s.now().UTC(),
		Page:      shared.NewPageRequest(page.Page, page.Limit),
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, total), nil
}

// Get returns one announcement. Invisible announcements are reported as not found.
func (s *Service) Get(ctx context.Context, actor shared.Identity, id int64) (Announcement, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if actor.Is(shared.RoleAdmin) || rbac.IsOwner(actor, a.AuthorID) || a.Visible(VisibleTo(actor), s.now()) {
		return a, nil
	}
	return Announcement{}, fmt.Errorf("announcement %d: %w", id, shared.ErrNotFound)
}

// Create publishes a new announcement authored by actor.
func (s *Service) Create(ctx context.Context, actor shared.Identity, in Input) (Announcement, error) {
	if err := rbac.Authorize(actor, rbac.AnnouncementsCreate); err != nil {
		return Announcement{}, err
	}
	in, err := s.prepare(in)
	if err != nil {
		return Announcement{}, err
	}
	id, err := s.repo.Create(ctx, actor.UserID, in)
	if err != nil {
		return Announcement{}, err
	}
	s.logger.Info("announcement created", slog.Int64("id", id), slog.String("audience", in.Audience), slog.Int64("author_id", actor.UserID))
	return s.repo.Get(ctx, id)
}

// Update edits an announcement. Only its author or an admin may do so.
func (s *Service) Update(ctx context.Context, actor shared.Identity, id int64, in Input) (Announcement, error) {
	if err := s.authorizeModify(ctx, actor, id); err != nil {
		return Announcement{}, err
	}
	in, err := s.prepare(in)
	if err != nil {
		return Announcement{}, err
	}
	if err := s.repo.Update(ctx, id, in); err != nil {
		return Announcement{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an announcement. Only its author or an admin may do so.
func (s *Service) Delete(ctx context.Context, actor shared.Identity, id int64) error {
	if err := s.authorizeModify(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ExpireDue unpublishes announcements past their expiry.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.repo.Unpublish(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("announcements expired", slog.Int64("count", n))
	}
	return n, nil
}

func (s *Service) authorizeModify(ctx context.Context, actor shared.Identity, id int64) error {
	if err := rbac.Authorize(actor, rbac.AnnouncementsCreate); err != nil {
		return err
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return rbac.AuthorizeOwnerOrRole(actor, rbac.AnnouncementsModify, a.AuthorID)
}

func (s *Service) prepare(in Input) (Input, error) {
	in = in.normalize(s.now().UTC())
	if err := httpx.Validate(in); err != nil {
		return Input{}, err
	}
	if err := in.validateWindow(); err != nil {
		return Input{}, err
	}
	return in, nil
}
