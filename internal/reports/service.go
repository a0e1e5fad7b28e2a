package reports

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

// Source exposes the aggregate queries a report is built from.
type Source interface {
	UsersByRole(ctx context.Context) (map[string]int, error)
	RecordsByStatus(ctx context.Context) (map[string]int, error)
	PlansByStatus(ctx context.Context) (map[string]int, error)
	ApprovedHours(ctx context.Context) (float64, error)
	Evaluations(ctx context.Context) (EvaluationStats, error)
	StudentHours(ctx context.Context, studentID int64) (StudentHours, error)
}

// Service builds reports.
type Service struct {
	source Source
	cache  *Cache
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a Source with an optional Cache.
func NewService(source Source, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, logger: logger, now: time.Now}
}

const summaryBuildTimeout = 30 * time.Second

// Summary returns the program-wide dashboard. Concurrent callers share one build.
func (s *Service) Summary(ctx context.Context, actor shared.Identity) (Summary, error) {
	if err := rbac.Authorize(actor, rbac.ReportsSummary); err != nil {
		return Summary{}, err
	}
	key, err := s.cache.BuildKey(ctx, "summary")
	if err != nil {
		s.logger.Warn("report cache version unavailable", slog.Any("error", err))
		key = "practicum:reports:summary"
	}
	ch := s.group.DoChan(key, func() (any, error) {
		// Shared by every waiter, so it must outlive the caller that started it.
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryBuildTimeout)
		defer cancel()
		var out Summary
		err := s.cache.FetchJSON(buildCtx, key, &out, func(ctx context.Context) (any, error) {
			return s.buildSummary(ctx)
		})
		return out, err
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		return res.Val.(Summary), nil
	}
}

func (s *Service) buildSummary(ctx context.Context) (Summary, error) {
	out := Summary{GeneratedAt: s.now().UTC()}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := s.source.UsersByRole(ctx)
		out.Users = users
		return err
	})
	g.Go(func() error {
		records, err := s.source.RecordsByStatus(ctx)
		out.PracticumRecords = records
		return err
	})
	g.Go(func() error {
		plans, err := s.source.PlansByStatus(ctx)
		out.LessonPlans = plans
		return err
	})
	g.Go(func() error {
		hours, err := s.source.ApprovedHours(ctx)
		out.ApprovedHours = hours
		return err
	})
	g.Go(func() error {
		stats, err := s.source.Evaluations(ctx)
		out.Evaluations = stats
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// StudentHours returns the hour ledger to the student and to staff.
func (s *Service) StudentHours(ctx context.Context, actor shared.Identity, studentID int64) (StudentHours, error) {
	if err := rbac.AuthorizeOwnerOrRole(actor, rbac.ReportsStudentHours, studentID); err != nil {
		return StudentHours{}, err
	}
	return s.source.StudentHours(ctx, studentID)
}
