package announcements

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Handler exposes announcement endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers announcement routes. Reads accept anonymous callers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Optional)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticate, h.guard.Require(rbac.AnnouncementsCreate))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.IdentityFromContext(r.Context())
	items, page, err := h.service.List(r.Context(), actor, shared.PageRequestFromQuery(r))
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Page(w, "announcements retrieved", items, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	a, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "announcement retrieved", a)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	a, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Created(w, "announcement created", a)
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
	a, err := h.service.Update(r.Context(), actor, id, in)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "announcement updated", a)
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
	httpx.OK(w, "announcement deleted", nil)
}
