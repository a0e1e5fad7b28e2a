package evaluations

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Handler exposes evaluation endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers evaluation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guard.Authenticate)
	r.With(h.guard.Require(rbac.EvaluationsList)).Get("/", h.list)
	r.With(h.guard.Require(rbac.EvaluationsCreate)).Post("/", h.create)
	r.With(h.guard.Require(rbac.EvaluationsRead)).Get("/{id}", h.get)
	r.With(h.guard.Require(rbac.EvaluationsUpdate)).Put("/{id}", h.update)
	r.With(h.guard.Require(rbac.EvaluationsDelete)).Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Page: shared.PageRequestFromQuery(r)}
	var err error
	if filter.StudentID, err = httpx.QueryInt64(r, "student_id"); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	if filter.EvaluatorID, err = httpx.QueryInt64(r, "evaluator_id"); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	switch p := Period(r.URL.Query().Get("period")); p {
	case "", PeriodMidterm, PeriodFinal:
		filter.Period = p
	default:
		h.guard.Errors.Respond(w, r, shared.FieldError("period", "must be one of: midterm final"))
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	items, page, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Page(w, "evaluations retrieved", items, page)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	e, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Created(w, "evaluation created", e)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	e, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "evaluation retrieved", e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	e, err := h.service.Update(r.Context(), actor, id, in)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "evaluation updated", e)
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
	httpx.OK(w, "evaluation deleted", nil)
}
