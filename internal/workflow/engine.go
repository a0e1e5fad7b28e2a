package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppl-hub/practicum/internal/observability"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Document is the workflow view of a reviewable record.
type Document struct {
	ID      int64
	OwnerID int64
	Status  Status
}

// Step is one accepted transition, applied atomically by the Store.
type Step struct {
	ID      int64
	From    Status
	To      Status
	Action  Action
	ActorID int64
	Note    string
	At      time.Time
}

// Store persists workflow state for one module.
type Store interface {
	LoadDocument(ctx context.Context, id int64) (Document, error)
	// ApplyStep updates the row only while its status still equals step.From and
	// appends the review entry in the same transaction. It reports false when no row matched.
	ApplyStep(ctx context.Context, step Step) (bool, error)
	AppendReview(ctx context.Context, entry shared.ReviewEntry) error
}

// Notifier is told about completed review decisions.
type Notifier interface {
	ReviewDecided(ctx context.Context, module string, doc Document, step Step)
}

// Engine applies a Machine to records held in a Store.
type Engine struct {
	module   string
	machine  Machine
	store    Store
	notifier Notifier
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine constructs an Engine. notifier and metrics may be nil.
func NewEngine(module string, machine Machine, store Store, notifier Notifier, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{module: module, machine: machine, store: store, notifier: notifier, metrics: metrics, logger: logger, now: time.Now}
}

// Machine exposes the transition table.
func (e *Engine) Machine() Machine { return e.machine }

// Module is the review log module name.
func (e *Engine) Module() string { return e.module }

// Fire performs action on record id on behalf of actor.
func (e *Engine) Fire(ctx context.Context, actor shared.Identity, id int64, action Action, note string) (Document, error) {
	if !e.machine.Supports(action) {
		return Document{}, fmt.Errorf("%w: %s is not supported for %s", shared.ErrInvalidTransition, action, e.module)
	}
	doc, err := e.store.LoadDocument(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if err := e.authorize(actor, doc, action); err != nil {
		return Document{}, err
	}
	note = strings.TrimSpace(note)
	if (action == ActionReject || action == ActionRequestRevision) && note == "" {
		return Document{}, shared.FieldError("feedback", "is required")
	}
	to, err := e.machine.Next(doc.Status, action)
	if err != nil {
		e.metrics.ObserveTransition(e.module, string(action), "invalid")
		return Document{}, err
	}

	step := Step{ID: id, From: doc.Status, To: to, Action: action, ActorID: actor.UserID, Note: note, At: e.now().UTC()}
	applied, err := e.store.ApplyStep(ctx, step)
	if err != nil {
		return Document{}, fmt.Errorf("workflow: apply %s: %w", action, err)
	}
	if !applied {
		e.metrics.ObserveTransition(e.module, string(action), "conflict")
		return Document{}, e.lost(ctx, id)
	}
	e.metrics.ObserveTransition(e.module, string(action), "ok")
	e.logger.Info("workflow transition",
		slog.String("module", e.module),
		slog.Int64("id", id),
		slog.String("from", string(step.From)),
		slog.String("to", string(step.To)),
		slog.Int64("actor_id", actor.UserID))

	doc.Status = to
	if action.IsReview() && e.notifier != nil {
		e.notifier.ReviewDecided(ctx, e.module, doc, step)
	}
	return doc, nil
}

// lost classifies a compare-and-set miss.
func (e *Engine) lost(ctx context.Context, id int64) error {
	if _, err := e.store.LoadDocument(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return fmt.Errorf("workflow: reload: %w", err)
	}
	return shared.ErrConflict
}

func (e *Engine) authorize(actor shared.Identity, doc Document, action Action) error {
	if action.IsReview() {
		return rbac.Authorize(actor, rbac.SubmissionsReview)
	}
	return rbac.AuthorizeOwnerOrRole(actor, rbac.SubmissionsEdit, doc.OwnerID)
}

// Feedback appends a FEEDBACK entry. Allowed on any record that has left draft.
func (e *Engine) Feedback(ctx context.Context, actor shared.Identity, id int64, note string) (shared.ReviewEntry, error) {
	if err := rbac.Authorize(actor, rbac.SubmissionsFeedback); err != nil {
		return shared.ReviewEntry{}, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return shared.ReviewEntry{}, shared.FieldError("feedback", "is required")
	}
	doc, err := e.store.LoadDocument(ctx, id)
	if err != nil {
		return shared.ReviewEntry{}, err
	}
	if doc.Status == StatusDraft {
		return shared.ReviewEntry{}, fmt.Errorf("%w: feedback requires a submitted record", shared.ErrInvalidTransition)
	}
	entry := shared.ReviewEntry{Module: e.module, RefID: id, ActorID: actor.UserID, Action: shared.ReviewFeedback, Note: note, At: e.now().UTC()}
	if err := e.store.AppendReview(ctx, entry); err != nil {
		return shared.ReviewEntry{}, fmt.Errorf("workflow: append feedback: %w", err)
	}
	return entry, nil
}

// CheckEdit allows content changes by the owner while the status is editable.
func (e *Engine) CheckEdit(actor shared.Identity, doc Document) error {
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.SubmissionsEdit, doc.OwnerID); err != nil {
		return err
	}
	if !e.machine.Editable(doc.Status) {
		return fmt.Errorf("%w: %s records cannot be edited", shared.ErrInvalidTransition, doc.Status)
	}
	return nil
}

// CheckDelete allows admins unconditionally and owners while the record is a draft.
func (e *Engine) CheckDelete(actor shared.Identity, doc Document) error {
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.SubmissionsDelete, doc.OwnerID); err != nil {
		return err
	}
	if actor.Is(shared.RoleAdmin) || doc.Status == StatusDraft {
		return nil
	}
	return fmt.Errorf("%w: only drafts can be deleted by their author", shared.ErrForbidden)
}

// CheckRevise allows the owner of a rejected record to start a new draft from it.
func (e *Engine) CheckRevise(actor shared.Identity, doc Document) error {
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.SubmissionsEdit, doc.OwnerID); err != nil {
		return err
	}
	if doc.Status != StatusRejected {
		return fmt.Errorf("%w: only rejected records can be revised", shared.ErrInvalidTransition)
	}
	return nil
}

// CheckRead allows the owner and reviewing roles.
func (e *Engine) CheckRead(actor shared.Identity, doc Document) error {
	return rbac.AuthorizeOwnerOrRole(actor, rbac.SubmissionsRead, doc.OwnerID)
}
