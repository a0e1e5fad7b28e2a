package workflow

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Reviewable is the service surface behind the review endpoints of one module.
type Reviewable[T any] interface {
	Transition(ctx context.Context, actor shared.Identity, id int64, action Action, note string) (T, error)
	Feedback(ctx context.Context, actor shared.Identity, id int64, note string) (shared.ReviewEntry, error)
	Reviews(ctx context.Context, actor shared.Identity, id int64) ([]shared.ReviewEntry, error)
	Revise(ctx context.Context, actor shared.Identity, id int64) (T, error)
}

type reviewRequest struct {
	Feedback string `json:"feedback" validate:"max=5000"`
}

type reviewRoutes[T any] struct {
	noun    string
	guard   rbac.Middleware
	service Reviewable[T]
}

// MountReviewRoutes registers POST /{id}/<action>, /{id}/feedback, /{id}/revise and
// GET /{id}/reviews. Only actions known to machine are mounted.
func MountReviewRoutes[T any](r chi.Router, guard rbac.Middleware, noun string, machine Machine, service Reviewable[T]) {
	h := reviewRoutes[T]{noun: noun, guard: guard, service: service}
	r.With(guard.Require(rbac.SubmissionsEdit)).Post("/{id}/submit", h.transition(ActionSubmit, "submitted"))
	r.With(guard.Require(rbac.SubmissionsReview)).Post("/{id}/approve", h.transition(ActionApprove, "approved"))
	r.With(guard.Require(rbac.SubmissionsReview)).Post("/{id}/reject", h.transition(ActionReject, "rejected"))
	if machine.Supports(ActionRequestRevision) {
		r.With(guard.Require(rbac.SubmissionsReview)).Post("/{id}/request-revision", h.transition(ActionRequestRevision, "sent back for revision"))
	}
	r.With(guard.Require(rbac.SubmissionsFeedback)).Post("/{id}/feedback", h.feedback)
	r.With(guard.Require(rbac.SubmissionsEdit)).Post("/{id}/revise", h.revise)
	r.With(guard.Require(rbac.SubmissionsRead)).Get("/{id}/reviews", h.reviews)
}

// decodeReview accepts an empty body.
func decodeReview(r *http.Request) (reviewRequest, error) {
	var req reviewRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}
	if err := httpx.Bind(r, &req); err != nil {
		return reviewRequest{}, err
	}
	return req, nil
}

func (h reviewRoutes[T]) transition(action Action, verb string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.IDParam(r, "id")
		if err != nil {
			h.guard.Errors.Respond(w, r, err)
			return
		}
		req, err := decodeReview(r)
		if err != nil {
			h.guard.Errors.Respond(w, r, err)
			return
		}
		actor, _ := shared.IdentityFromContext(r.Context())
		out, err := h.service.Transition(r.Context(), actor, id, action, req.Feedback)
		if err != nil {
			h.guard.Errors.Respond(w, r, err)
			return
		}
		httpx.OK(w, h.noun+" "+verb, out)
	}
}

func (h reviewRoutes[T]) feedback(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	req, err := decodeReview(r)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	entry, err := h.service.Feedback(r.Context(), actor, id, req.Feedback)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Created(w, "feedback recorded", entry)
}

func (h reviewRoutes[T]) revise(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	out, err := h.service.Revise(r.Context(), actor, id)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Created(w, h.noun+" revision created", out)
}

func (h reviewRoutes[T]) reviews(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	entries, err := h.service.Reviews(r.Context(), actor, id)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "review history retrieved", entries)
}
