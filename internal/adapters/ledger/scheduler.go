package ledger

import (
	"context"
	"time"

	"github.com/okian/comptrack/pkg/logger"
)

// Scheduler defaults.
const (
	DefaultChecklistHour = 8
	defaultTickInterval  = time.Minute
)

// SchedulerOption applies a configuration option to the Scheduler.
type SchedulerOption func(*Scheduler)

// WithChecklistHour sets the local hour the daily cycle runs at.
func WithChecklistHour(hour int) SchedulerOption {
	return func(s *Scheduler) {
		if hour >= 0 && hour < 24 {
			s.hour = hour
		}
	}
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(log logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTickInterval overrides the polling interval.
func WithTickInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// Scheduler runs the ledger's daily cycle once per day at a fixed local
// hour: checklist dispatch first, then rollover. The last-run guard keeps
// the cycle from firing twice on the same day.
type Scheduler struct {
	ledger   *Ledger
	hour     int
	interval time.Duration
	lastRun  string // yyyy-mm-dd of the last completed cycle
	done     chan struct{}
	log      logger.Logger
}

// NewScheduler creates a scheduler driving the given ledger.
func NewScheduler(l *Ledger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		ledger:   l,
		hour:     DefaultChecklistHour,
		interval: defaultTickInterval,
		done:     make(chan struct{}),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop terminates the scheduler loop.
func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs the daily cycle when the configured hour is reached and the
// cycle has not run today.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.ledger.now().In(s.ledger.loc)
	day := now.Format("2006-01-02")
	if now.Hour() != s.hour || s.lastRun == day {
		return
	}

	if _, err := s.ledger.DispatchChecklist(ctx); err != nil {
		s.log.Error(ctx, "checklist dispatch failed", logger.Error(err))
		return
	}
	if _, err := s.ledger.RolloverUnfinished(ctx); err != nil {
		s.log.Error(ctx, "rollover failed", logger.Error(err))
		return
	}
	s.lastRun = day
	s.log.Info(ctx, "daily cycle complete", logger.String("day", day))
}
