package personnel

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Handler exposes mentor and supervisor endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountMentorRoutes registers /mentors routes.
func (h *Handler) MountMentorRoutes(r chi.Router) {
	r.Use(h.guard.Authenticate)
	r.With(h.guard.Require(rbac.PersonnelRead)).Get("/", h.listMentors)
	r.With(h.guard.Require(rbac.PersonnelRead)).Get("/{id}", h.getMentor)
	r.With(h.guard.Require(rbac.PersonnelUpdate)).Put("/{id}", h.updateMentor)
}

// MountSupervisorRoutes registers /supervisors routes.
func (h *Handler) MountSupervisorRoutes(r chi.Router) {
	r.Use(h.guard.Authenticate)
	r.With(h.guard.Require(rbac.PersonnelRead)).Get("/", h.listSupervisors)
	r.With(h.guard.Require(rbac.PersonnelRead)).Get("/{id}", h.getSupervisor)
	r.With(h.guard.Require(rbac.PersonnelUpdate)).Put("/{id}", h.updateSupervisor)
}

func listFilter(r *http.Request) ListFilter {
	schoolID, _ := strconv.ParseInt(r.URL.Query().Get("school_id"), 10, 64)
	return ListFilter{Search: r.URL.Query().Get("search"), SchoolID: schoolID, Page: shared.PageRequestFromQuery(r)}
}

func (h *Handler) listMentors(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.IdentityFromContext(r.Context())
	items, page, err := h.service.ListMentors(r.Context(), actor, listFilter(r))
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Page(w, "mentors retrieved", items, page)
}

func (h *Handler) getMentor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	mentor, err := h.service.GetMentor(r.Context(), actor, id)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "mentor retrieved", mentor)
}

func (h *Handler) updateMentor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	var in MentorInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	mentor, err := h.service.UpdateMentor(r.Context(), actor, id, in)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "mentor updated", mentor)
}

func (h *Handler) listSupervisors(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.IdentityFromContext(r.Context())
	items, page, err := h.service.ListSupervisors(r.Context(), actor, listFilter(r))
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.Page(w, "supervisors retrieved", items, page)
}

func (h *Handler) getSupervisor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	supervisor, err := h.service.GetSupervisor(r.Context(), actor, id)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "supervisor retrieved", supervisor)
}

func (h *Handler) updateSupervisor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	var in SupervisorInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	actor, _ := shared.IdentityFromContext(r.Context())
	supervisor, err := h.service.UpdateSupervisor(r.Context(), actor, id, in)
	if err != nil {
		h.guard.Errors.Respond(w, r, err)
		return
	}
	httpx.OK(w, "supervisor updated", supervisor)
}
