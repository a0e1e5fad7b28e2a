package practicum

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppl-hub/practicum/internal/observability"
	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/workflow"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	workflow.Store
	List(ctx context.Context, filter ListFilter) ([]Record, int, error)
	Get(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, studentID int64, in Input) (int64, error)
	Update(ctx context.Context, id int64, expected workflow.Status, in Input) (bool, error)
	Delete(ctx context.Context, id int64) error
	Revise(ctx context.Context, id, actorID int64) (int64, error)
	ListReviews(ctx context.Context, id int64) ([]shared.ReviewEntry, error)
}

// Service implements practicum record use cases.
type Service struct {
	repo   RepositoryPort
	engine *workflow.Engine
	logger *slog.Logger
}

// NewEngine builds the workflow engine for this module on top of repo.
func NewEngine(repo RepositoryPort, notifier workflow.Notifier, metrics *observability.Metrics, logger *slog.Logger) *workflow.Engine {
	return workflow.NewEngine(module, workflow.PracticumRecord, repo, notifier, metrics, logger)
}

// NewService constructs the service around engine, which must use repo as its store.
func NewService(repo RepositoryPort, engine *workflow.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, engine: engine, logger: logger}
}

// List returns a page of records. Students only see their own.
func (s *Service) List(ctx context.Context, actor shared.Identity, filter ListFilter) ([]Record, shared.Pagination, error) {
	if err := rbac.Authorize(actor, rbac.SubmissionsList); err != nil {
		return nil, shared.Pagination{}, err
	}
	if actor.Is(shared.RoleStudent) {
		filter.StudentID = actor.UserID
	}
	filter.Page = shared.NewPageRequest(filter.Page.Page, filter.Page.Limit)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, total), nil
}

// Get returns one record to its author or to staff.
func (s *Service) Get(ctx context.Context, actor shared.Identity, id int64) (Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if err := s.engine.CheckRead(actor, rec.document()); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Create stores a new draft owned by the calling student.
func (s *Service) Create(ctx context.Context, actor shared.Identity, in Input) (Record, error) {
	if err := rbac.Authorize(actor, rbac.SubmissionsCreate); err != nil {
		return Record{}, err
	}
	in = in.normalize()
	if err := httpx.Validate(in); err != nil {
		return Record{}, err
	}
	id, err := s.repo.Create(ctx, actor.UserID, in)
	if err != nil {
		return Record{}, err
	}
	return s.repo.Get(ctx, id)
}

// Update edits a draft. Only the author may edit.
func (s *Service) Update(ctx context.Context, actor shared.Identity, id int64, in Input) (Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if err := s.engine.CheckEdit(actor, rec.document()); err != nil {
		return Record{}, err
	}
	in = in.normalize()
	if err := httpx.Validate(in); err != nil {
		return Record{}, err
	}
	ok, err := s.repo.Update(ctx, id, rec.Status, in)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, shared.ErrConflict
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a draft, or any record when the actor is an admin.
func (s *Service) Delete(ctx context.Context, actor shared.Identity, id int64) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.engine.CheckDelete(actor, rec.document()); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("practicum record deleted", slog.Int64("id", id), slog.Int64("actor_id", actor.UserID), slog.String("status", string(rec.Status)))
	return nil
}

// Transition fires a workflow action and returns the updated record.
func (s *Service) Transition(ctx context.Context, actor shared.Identity, id int64, action workflow.Action, note string) (Record, error) {
	if _, err := s.engine.Fire(ctx, actor, id, action, note); err != nil {
		return Record{}, err
	}
	return s.repo.Get(ctx, id)
}

// Feedback appends a reviewer comment.
func (s *Service) Feedback(ctx context.Context, actor shared.Identity, id int64, note string) (shared.ReviewEntry, error) {
	return s.engine.Feedback(ctx, actor, id, note)
}

// Reviews returns the review history.
func (s *Service) Reviews(ctx context.Context, actor shared.Identity, id int64) ([]shared.ReviewEntry, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.ListReviews(ctx, id)
}

// Revise starts a new draft from a rejected record.
func (s *Service) Revise(ctx context.Context, actor shared.Identity, id int64) (Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if err := s.engine.CheckRevise(actor, rec.document()); err != nil {
		return Record{}, err
	}
	newID, err := s.repo.Revise(ctx, id, actor.UserID)
	if err != nil {
		return Record{}, fmt.Errorf("revise practicum record %d: %w", id, err)
	}
	return s.repo.Get(ctx, newID)
}
