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
	jobmetrics "github.com/ppl-hub/practicum/internal/jobs"
	"github.com/ppl-hub/practicum/internal/messages"
	"github.com/ppl-hub/practicum/internal/observability"
	"github.com/ppl-hub/practicum/internal/platform/db"
	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("component", "worker"))

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	reviewNotify := &jobs.ReviewNotifyJob{
		Inbox:   messages.NewRepository(pool),
		Logger:  logger,
		Metrics: jobMetrics,
	}
	expireAnnouncements := &jobs.AnnouncementsExpireJob{
		Announcements: announcements.NewService(announcements.NewRepository(pool), logger),
		Logger:        logger,
		Metrics:       jobMetrics,
	}
	cleanupReceipts := &jobs.ReceiptsCleanupJob{
		Receipts:  shared.NewIdempotencyStore(pool),
		Retention: cfg.ReceiptRetention,
		Logger:    logger,
		Metrics:   jobMetrics,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReviewNotify, Handler: reviewNotify.Handle},
			{Type: jobs.TaskAnnouncementsExpire, Handler: expireAnnouncements.Handle},
			{Type: jobs.TaskReceiptsCleanup, Handler: cleanupReceipts.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.AnnouncementsExpireCron, Task: jobs.NewAnnouncementsExpireTask(), Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
			{Spec: cfg.ReceiptsCleanupCron, Task: jobs.NewReceiptsCleanupTask(), Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
