package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ppl-hub/practicum/internal/announcements"
	"github.com/ppl-hub/practicum/internal/auth"
	"github.com/ppl-hub/practicum/internal/evaluations"
	"github.com/ppl-hub/practicum/internal/lessonplans"
	"github.com/ppl-hub/practicum/internal/messages"
	"github.com/ppl-hub/practicum/internal/observability"
	"github.com/ppl-hub/practicum/internal/personnel"
	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/practicum"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/reports"
	"github.com/ppl-hub/practicum/internal/schools"
	"github.com/ppl-hub/practicum/internal/students"
	"github.com/ppl-hub/practicum/internal/users"
	"github.com/ppl-hub/practicum/jobs"
)

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
	Readiness      map[string]ReadinessCheck

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	SchoolsHandler       *schools.Handler
	StudentsHandler      *students.Handler
	PersonnelHandler     *personnel.Handler
	PracticumHandler     *practicum.Handler
	LessonPlansHandler   *lessonplans.Handler
	EvaluationsHandler   *evaluations.Handler
	AnnouncementsHandler *announcements.Handler
	MessagesHandler      *messages.Handler
	ReportsHandler       *reports.Handler
	JobHandler           *jobs.Handler
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.OK(w, "ok", map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readinessHandler(params.Logger, params.Readiness))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.SchoolsHandler != nil {
			r.Route("/schools", params.SchoolsHandler.MountRoutes)
		}
		if params.StudentsHandler != nil {
			r.Route("/students", params.StudentsHandler.MountRoutes)
		}
		if params.PersonnelHandler != nil {
			r.Route("/mentors", params.PersonnelHandler.MountMentorRoutes)
			r.Route("/supervisors", params.PersonnelHandler.MountSupervisorRoutes)
		}
		if params.PracticumHandler != nil {
			r.Route("/practicum-records", params.PracticumHandler.MountRoutes)
		}
		if params.LessonPlansHandler != nil {
			r.Route("/lesson-plans", params.LessonPlansHandler.MountRoutes)
		}
		if params.EvaluationsHandler != nil {
			r.Route("/evaluations", params.EvaluationsHandler.MountRoutes)
		}
		if params.AnnouncementsHandler != nil {
			r.Route("/announcements", params.AnnouncementsHandler.MountRoutes)
		}
		if params.MessagesHandler != nil {
			r.Route("/messages", params.MessagesHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.RBACMiddleware.Authenticate, params.RBACMiddleware.Require(rbac.OperationsMonitor))
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	return r
}

func readinessHandler(logger *slog.Logger, checks map[string]ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := make(map[string]string, len(checks))
		ready := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				if logger != nil {
					logger.Warn("readiness check failed", slog.String("dependency", name), slog.Any("error", err))
				}
				status[name] = "unavailable"
				ready = false
				continue
			}
			status[name] = "ok"
		}
		if !ready {
			httpx.JSON(w, http.StatusServiceUnavailable, httpx.Envelope{Success: false, Message: "not ready", Data: status})
			return
		}
		httpx.OK(w, "ready", status)
	}
}
