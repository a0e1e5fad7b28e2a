package practicum

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/workflow"
)

// Handler exposes practicum record endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers practicum record routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guard.Authenticate)
	r.With(h.guard.Require(rbac.SubmissionsList)).Get("/", h.list)
	r.With(h.guard.Require(rbac.SubmissionsCreate)).Post("/", h.create)
	r.With(h.guard.Require(rbac.SubmissionsRead)).Get("/{id}", h.get)
	r.With(h.guard.Require(rbac.SubmissionsEdit)).Put("/{id}", h.update)
	r.With(h.guard.Require(rbac.SubmissionsDelete)).Delete("/{id}", h.delete)
	workflow.MountReviewRoutes[Record](r, h.guard, "practicum record", workflow.PracticumRecord, h.service)
}

// parseListFilter reads student_id and status query parameters.
func parseListFilter(r *http.Request) (ListFilter, error) {
	filter := ListFilter{Page: shared.PageRequestFromQuery(r)}
	var err error
	if filter.StudentID, err = httpx.QueryInt64(r, "student_id"); err != nil {
		return ListFilter{}, err
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := workflow.ParseStatus(raw)
		if !ok {
			return ListFilter{}, shared.FieldError("status", "is not a known status")
		}
		filter.Status = status
	}
	return filter, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	items, page, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Page(w, "practicum records retrieved", items, page)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	rec, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Created(w, "practicum record created", rec)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	rec, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "practicum record retrieved", rec)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	rec, err := h.service.Update(r.Context(), actor, id, in)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "practicum record updated", rec)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "practicum record deleted", nil)
}
