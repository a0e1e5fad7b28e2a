package messages

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Handler exposes messaging endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers message routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guard.Authenticate, h.guard.Require(rbac.MessagesUse))
	r.Get("/", h.list(Inbox))
	r.Get("/sent", h.list(Sent))
	r.Post("/", h.send)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/read", h.markRead)
}

func (h *Handler) list(box Box) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := shared.IdentityFromContext(r.Context())
		unread := r.URL.Query().Get("unread") == "true"
		items, page, err := h.service.List(r.Context(), actor, box, unread, shared.PageRequestFromQuery(r))
		if err != nil {
			h.guard.Errors.Respond(w, r, err)
			return
		}
		httpx.Page(w, "messages retrieved", items, page)
	}
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	m, err := h.service.Send(r.Context(), actor, in)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Created(w, "message sent", m)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	m, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "message retrieved", m)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	m, err := h.service.MarkRead(r.Context(), actor, id)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "message marked as read", m)
}
