package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
	errors  httpx.ErrorResponder
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, errors: guard.Errors}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticate)
		r.Get("/me", h.handleMe)
		r.Put("/password", h.handleChangePassword)
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	token, err := h.service.IssueToken(r.Context(), req.Username, req.Password)
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "login successful", token)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	user, err := h.service.Me(r.Context(), id)
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "profile retrieved", user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	id, _ := shared.IdentityFromContext(r.Context())
	if err := h.service.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "password updated", nil)
}
