// Package jobs runs the periodic maintenance of game sessions (cron).
package jobs

import (
	"context"
	"fmt"
	"time"

	"clipit_tycoon/internal/logger"

	"github.com/robfig/cron/v3"
)

// Maintainer is the part of the game service the jobs drive
type Maintainer interface {
	EvictIdle(maxIdle time.Duration) int
	RefreshDailyBonuses(ctx context.Context) int
}

type Config struct {
	// JanitorSpec and BonusSpec are cron specs, "@every 10m" style descriptors included
	JanitorSpec string
	BonusSpec   string
	IdleTimeout time.Duration
}

// Scheduler runs the idle-session janitor and the daily bonus refresh
type Scheduler struct {
	cron *cron.Cron
	svc  Maintainer
	cfg  Config
}

func NewScheduler(svc Maintainer, cfg Config) *Scheduler {
	c := cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return &Scheduler{cron: c, svc: svc, cfg: cfg}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.JanitorSpec, s.RunJanitor); err != nil {
		return fmt.Errorf("janitor schedule %q: %w", s.cfg.JanitorSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.BonusSpec, func() { s.RunBonusRefresh(ctx) }); err != nil {
		return fmt.Errorf("bonus schedule %q: %w", s.cfg.BonusSpec, err)
	}

	s.cron.Start()
	logger.Info("job scheduler started", "janitor", s.cfg.JanitorSpec, "bonus", s.cfg.BonusSpec)
	return nil
}

// RunJanitor closes sessions idle for longer than IdleTimeout
func (s *Scheduler) RunJanitor() {
	if n := s.svc.EvictIdle(s.cfg.IdleTimeout); n > 0 {
		logger.Info("[CRON] idle sessions evicted", "count", n)
	}
}

// RunBonusRefresh reopens the daily bonus window of players online across the day boundary
func (s *Scheduler) RunBonusRefresh(ctx context.Context) {
	if n := s.svc.RefreshDailyBonuses(ctx); n > 0 {
		logger.Info("[CRON] daily bonus windows refreshed", "count", n)
	}
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("job scheduler stopped")
}
