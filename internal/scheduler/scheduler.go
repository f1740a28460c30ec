// Package scheduler force-refreshes every live prefetch queue on a cron
// schedule so long-running queues do not keep serving stale questions. Each
// run first drops queues that have been idle too long.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// ErrInvalidCron is returned by New for an expression gocron cannot parse.
var ErrInvalidCron = errors.New("invalid cron expression")

// Refresher is the part of the prefetch registry the scheduler drives.
type Refresher interface {
	EvictIdle(maxIdle time.Duration) int
	ForceRefreshAll(ctx context.Context) int
}

// Scheduler runs Refresher.ForceRefreshAll on a cron expression in UTC.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	maxIdle   time.Duration
	logger    *slog.Logger
	enabled   bool
}

// New creates a scheduler. An empty cronExpr yields a scheduler whose Start
// and Stop do nothing. Queues idle longer than maxIdle are evicted on each
// run; a non-positive maxIdle keeps them.
func New(refresher Refresher, cronExpr string, maxIdle time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if refresher == nil {
		panic("refresher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		maxIdle:   maxIdle,
		logger:    logger.With(slog.String("component", "scheduler")),
	}
	if cronExpr == "" {
		return s, nil
	}

	if _, err := s.scheduler.Cron(cronExpr).Do(s.refreshAll); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidCron, cronExpr, err)
	}
	s.enabled = true
	return s, nil
}

// Start begins running scheduled refreshes without blocking.
func (s *Scheduler) Start() {
	if !s.enabled {
		s.logger.Info("scheduled queue refresh disabled")
		return
	}
	s.scheduler.StartAsync()
	_, next := s.scheduler.NextRun()
	s.logger.Info("scheduled queue refresh started", slog.Time("next_run", next))
}

// Stop terminates scheduled refreshes. A refresh already running finishes.
func (s *Scheduler) Stop() {
	if !s.enabled {
		return
	}
	s.scheduler.Stop()
}

// Enabled reports whether a refresh job is scheduled.
func (s *Scheduler) Enabled() bool {
	return s.enabled
}

// RunNow evicts idle queues, refreshes the rest immediately and returns how
// many were refreshed.
func (s *Scheduler) RunNow(ctx context.Context) int {
	evicted := s.refresher.EvictIdle(s.maxIdle)
	n := s.refresher.ForceRefreshAll(ctx)
	s.logger.Info("refreshed prefetch queues", slog.Int("queues", n), slog.Int("evicted", evicted))
	return n
}

func (s *Scheduler) refreshAll() {
	s.RunNow(context.Background())
}
