package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/internal/models"
)

// Session is the trading-session calendar the scheduler obeys (default
// 09:15-15:30 local, Mon-Fri).
type Session struct {
	StartHour, StartMinute int
	EndHour, EndMinute     int
}

func (s Session) contains(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), s.StartHour, s.StartMinute, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month(), t.Day(), s.EndHour, s.EndMinute, 0, 0, t.Location())
	return !t.Before(start) && !t.After(end)
}

// Scheduler drives RunAll on a cron schedule, skipping a tick for an index
// whose previous cycle is still running rather than overlapping it, and
// skipping every tick outside the trading session.
type Scheduler struct {
	orchestrator *Orchestrator
	cron         *cron.Cron
	session      Session
	indices      []models.Index
	reportDir    string
	logger       zerolog.Logger

	running int32 // atomic guard: 0 = idle, 1 = a cycle is in flight
}

// NewScheduler wires a cron-driven scheduler around orchestrator.
func NewScheduler(orchestrator *Orchestrator, session Session, indices []models.Index, reportDir string, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		cron:         cron.New(),
		session:      session,
		indices:      indices,
		reportDir:    reportDir,
		logger:       logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the periodic tick (a cron expression, default every 5
// minutes Mon-Fri) and starts the cron loop. Call Stop to drain in-flight
// jobs.
func (s *Scheduler) Start(cronExpr string) error {
	_, err := s.cron.AddFunc(cronExpr, s.tick)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for any in-flight job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) tick() {
	now := time.Now()
	if !s.session.contains(now) {
		return
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		s.logger.Warn().Msg("previous cycle still running; skipping this tick")
		return
	}
	defer atomic.StoreInt32(&s.running, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	reports := s.orchestrator.RunAll(ctx, s.indices)
	for _, report := range reports {
		if err := WriteReport(s.reportDir, report); err != nil {
			s.logger.Warn().Err(err).Str("index", string(report.Index)).Msg("failed to persist report")
		}
	}
}

// RunOnce executes a single cycle across every configured index
// immediately, outside the cron schedule, and persists each report.
func (s *Scheduler) RunOnce(ctx context.Context) []*Report {
	reports := s.orchestrator.RunAll(ctx, s.indices)
	for _, report := range reports {
		if err := WriteReport(s.reportDir, report); err != nil {
			s.logger.Warn().Err(err).Str("index", string(report.Index)).Msg("failed to persist report")
		}
	}
	return reports
}
