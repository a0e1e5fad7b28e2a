package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ppl-hub/practicum/internal/announcements"
	"github.com/ppl-hub/practicum/internal/app"
	"github.com/ppl-hub/practicum/internal/auth"
	"github.com/ppl-hub/practicum/internal/evaluations"
	"github.com/ppl-hub/practicum/internal/lessonplans"
	"github.com/ppl-hub/practicum/internal/messages"
	"github.com/ppl-hub/practicum/internal/observability"
	"github.com/ppl-hub/practicum/internal/personnel"
	"github.com/ppl-hub/practicum/internal/platform/cache"
	"github.com/ppl-hub/practicum/internal/platform/db"
	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/practicum"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/reports"
	"github.com/ppl-hub/practicum/internal/schools"
	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/students"
	"github.com/ppl-hub/practicum/internal/users"
	"github.com/ppl-hub/practicum/internal/workflow"
	"github.com/ppl-hub/practicum/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	throttle := auth.NewRedisThrottle(redisClient, cfg.LoginMaxAttempts, cfg.LoginLockout, logger)
	authService := auth.NewService(auth.NewRepository(dbpool), tokens, throttle, metrics, logger)

	guard := rbac.Middleware{
		Tokens: authService,
		Errors: httpx.ErrorResponder{Logger: logger, ExposeDetail: !cfg.IsProduction()},
	}

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL, logger)
	notifier := workflow.Notifiers{reportCache, jobs.NewNotifier(jobClient, logger)}

	practicumRepo := practicum.NewRepository(dbpool)
	practicumEngine := practicum.NewEngine(practicumRepo, notifier, metrics, logger)
	practicumService := practicum.NewService(practicumRepo, practicumEngine, logger)

	lessonPlanRepo := lessonplans.NewRepository(dbpool)
	lessonPlanEngine := lessonplans.NewEngine(lessonPlanRepo, notifier, metrics, logger)
	lessonPlanService := lessonplans.NewService(lessonPlanRepo, lessonPlanEngine, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		RBACMiddleware: guard,
		Metrics:        metrics,
		Readiness: map[string]app.ReadinessCheck{
			"postgres": dbpool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
		AuthHandler:          auth.NewHandler(logger, authService, guard),
		UsersHandler:         users.NewHandler(logger, users.NewService(users.NewRepository(dbpool), auditLogger, logger), guard),
		SchoolsHandler:       schools.NewHandler(logger, schools.NewService(schools.NewRepository(dbpool), auditLogger, logger), guard),
		StudentsHandler:      students.NewHandler(logger, students.NewService(students.NewRepository(dbpool), auditLogger, logger), guard),
		PersonnelHandler:     personnel.NewHandler(logger, personnel.NewService(personnel.NewRepository(dbpool), auditLogger, logger), guard),
		PracticumHandler:     practicum.NewHandler(logger, practicumService, guard),
		LessonPlansHandler:   lessonplans.NewHandler(logger, lessonPlanService, guard),
		EvaluationsHandler:   evaluations.NewHandler(logger, evaluations.NewService(evaluations.NewRepository(dbpool), auditLogger, logger), guard),
		AnnouncementsHandler: announcements.NewHandler(logger, announcements.NewService(announcements.NewRepository(dbpool), logger), guard),
		MessagesHandler:      messages.NewHandler(logger, messages.NewService(messages.NewRepository(dbpool), logger), guard),
		ReportsHandler:       reports.NewHandler(logger, reports.NewService(reports.NewRepository(dbpool), reportCache, logger), guard),
		JobHandler:           jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
