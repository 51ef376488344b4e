package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/wx-station/internal/observability"
	"github.com/go-co-op/gocron"
)

// Schedule sets how often each job runs.
type Schedule struct {
	Wind      time.Duration
	THP       time.Duration
	Rain      time.Duration
	SummaryAt string // HH:MM, daily
	Location  *time.Location
}

// Scheduler drives a Relay's jobs with gocron. Interval jobs run once
// immediately on Start, then on their interval; a job never overlaps itself.
type Scheduler struct {
	cron    *gocron.Scheduler
	relay   *Relay
	logger  *slog.Logger
	metrics *observability.RelayMetrics
	ctx     context.Context
	timeout time.Duration
}

// NewScheduler registers the wind, THP, rain and daily summary jobs. Each run is
// bounded by jobTimeout.
func NewScheduler(r *Relay, sch Schedule, jobTimeout time.Duration, logger *slog.Logger, metrics *observability.RelayMetrics) (*Scheduler, error) {
	loc := sch.Location
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		cron:    gocron.NewScheduler(loc),
		relay:   r,
		logger:  logger,
		metrics: metrics,
		ctx:     context.Background(),
		timeout: jobTimeout,
	}
	s.cron.SingletonModeAll()

	jobs := []struct {
		name  string
		every time.Duration
		run   func(context.Context) error
	}{
		{"wind", sch.Wind, r.Wind},
		{"thp", sch.THP, r.THP},
		{"rain", sch.Rain, r.Rain},
	}
	for _, j := range jobs {
		if _, err := s.cron.Every(j.every).Do(s.wrap(j.name, j.run)); err != nil {
			return nil, fmt.Errorf("schedule %s job: %w", j.name, err)
		}
	}
	if _, err := s.cron.Every(1).Day().At(sch.SummaryAt).Do(s.wrap("summary", r.Summary)); err != nil {
		return nil, fmt.Errorf("schedule summary job: %w", err)
	}
	return s, nil
}

// Start runs the scheduler in the background. Jobs stop receiving new runs when
// ctx is cancelled; call Stop to release the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.StartAsync()
	s.metrics.SchedulerActive.Set(1)
	s.logger.Info("relay scheduler started", "jobs", s.cron.Len())
}

// Stop halts the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.metrics.SchedulerActive.Set(0)
	s.logger.Info("relay scheduler stopped")
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return s.cron.Len()
}

func (s *Scheduler) wrap(name string, run func(context.Context) error) func() {
	return func() {
		if s.ctx.Err() != nil {
			return
		}
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		if err := run(ctx); err != nil {
			s.logger.Warn("relay job failed", "job", name, "error", err)
		}
	}
}
