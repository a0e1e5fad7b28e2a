package evaluations

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ppl-hub/practicum/internal/grading"
	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]Evaluation, int, error)
	Get(ctx context.Context, id int64) (Evaluation, error)
	Create(ctx context.Context, evaluatorID int64, in CreateInput, res grading.Result) (int64, error)
	Update(ctx context.Context, id int64, in UpdateInput, res grading.Result) error
	Delete(ctx context.Context, id int64) error
}

// AuditPort records grade changes.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements evaluation use cases.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService constructs the evaluations service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns a page of evaluations. Students only see their own.
func (s *Service) List(ctx context.Context, actor shared.Identity, filter ListFilter) ([]Evaluation, shared.Pagination, error) {
	if err := rbac.Authorize(actor, rbac.EvaluationsList); err != nil {
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

// Get returns an evaluation to the evaluated student or to staff.
func (s *Service) Get(ctx context.Context, actor shared.Identity, id int64) (Evaluation, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.EvaluationsRead, e.StudentID); err != nil {
		return Evaluation{}, err
	}
	return e, nil
}

// Create grades a student. The caller becomes the evaluator.
func (s *Service) Create(ctx context.Context, actor shared.Identity, in CreateInput) (Evaluation, error) {
	if err := rbac.Authorize(actor, rbac.EvaluationsCreate); err != nil {
		return Evaluation{}, err
	}
	in.Notes = shared.CleanString(in.Notes)
	if err := httpx.Validate(in); err != nil {
		return Evaluation{}, err
	}
	scores, err := in.Scores.Resolve()
	if err != nil {
		return Evaluation{}, err
	}
	res, err := grading.Evaluate(scores)
	if err != nil {
		return Evaluation{}, err
	}
	id, err := s.repo.Create(ctx, actor.UserID, in, res)
	if err != nil {
		return Evaluation{}, err
	}
	s.recordAudit(ctx, actor, "EVALUATION_CREATE", id, map[string]any{"student_id": in.StudentID, "period": in.Period, "total": res.Total, "grade": res.Grade})
	return s.repo.Get(ctx, id)
}

// Update rescores an evaluation. Only its evaluator or an admin may do so.
func (s *Service) Update(ctx context.Context, actor shared.Identity, id int64, in UpdateInput) (Evaluation, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.EvaluationsUpdate, current.EvaluatorID); err != nil {
		return Evaluation{}, err
	}
	in.Notes = shared.CleanString(in.Notes)
	if err := httpx.Validate(in); err != nil {
		return Evaluation{}, err
	}
	scores, err := in.Scores.Resolve()
	if err != nil {
		return Evaluation{}, err
	}
	res, err := grading.Evaluate(scores)
	if err != nil {
		return Evaluation{}, err
	}
	if err := s.repo.Update(ctx, id, in, res); err != nil {
		return Evaluation{}, err
	}
	s.recordAudit(ctx, actor, "EVALUATION_UPDATE", id, map[string]any{"from": current.Total, "to": res.Total, "grade": res.Grade})
	return s.repo.Get(ctx, id)
}

// Delete removes an evaluation. Admin only.
func (s *Service) Delete(ctx context.Context, actor shared.Identity, id int64) error {
	if err := rbac.Authorize(actor, rbac.EvaluationsDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "EVALUATION_DELETE", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Identity, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{ActorID: actor.UserID, Action: action, Entity: "evaluation", EntityID: strconv.FormatInt(id, 10), Meta: meta})
	if err != nil {
		s.logger.Warn("audit evaluation", slog.String("action", action), slog.Any("error", err))
	}
}
