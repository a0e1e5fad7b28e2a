package messages

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
	List(ctx context.Context, filter ListFilter) ([]Message, int, error)
	Get(ctx context.Context, id int64) (Message, error)
	Create(ctx context.Context, senderID int64, in Input) (int64, error)
	MarkRead(ctx context.Context, id int64, at time.Time) error
}

// Service implements messaging use cases.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the messages service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// List returns the caller's inbox or sent box.
func (s *Service) List(ctx context.Context, actor shared.Identity, box Box, unreadOnly bool, page shared.PageRequest) ([]Message, shared.Pagination, error) {
	if err := rbac.Authorize(actor, rbac.MessagesUse); err != nil {
		return nil, shared.Pagination{}, err
	}
	filter := ListFilter{UserID: actor.UserID, Box: box, UnreadOnly: unreadOnly, Page: shared.NewPageRequest(page.Page, page.Limit)}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, total), nil
}

// Send delivers a message from actor.
func (s *Service) Send(ctx context.Context, actor shared.Identity, in Input) (Message, error) {
	if err := rbac.Authorize(actor, rbac.MessagesUse); err != nil {
		return Message{}, err
	}
	in.Subject = shared.CleanString(in.Subject)
	if err := httpx.Validate(in); err != nil {
		return Message{}, err
	}
	if in.RecipientID == actor.UserID {
		return Message{}, shared.FieldError("recipient_id", "cannot be yourself")
	}
	id, err := s.repo.Create(ctx, actor.UserID, in)
	if err != nil {
		return Message{}, err
	}
	return s.repo.Get(ctx, id)
}

// Get returns a message to its sender or recipient.
func (s *Service) Get(ctx context.Context, actor shared.Identity, id int64) (Message, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.MessagesRead, m.SenderID, m.RecipientID); err != nil {
		return Message{}, err
	}
	return m, nil
}

// MarkRead marks a message read. Only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, actor shared.Identity, id int64) (Message, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.MessagesRead, m.RecipientID); err != nil {
		return Message{}, fmt.Errorf("%w: only the recipient can mark a message read", shared.ErrForbidden)
	}
	if err := s.repo.MarkRead(ctx, id, s.now().UTC()); err != nil {
		return Message{}, err
	}
	return s.repo.Get(ctx, id)
}
