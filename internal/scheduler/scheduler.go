// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultRolloverSchedule checks for an ended challenge week every minute.
const DefaultRolloverSchedule = "0 * * * * *"

// jobTimeout bounds a single job run.
const jobTimeout = 30 * time.Second

// ChallengeRoller starts a new challenge week when the current one has ended.
type ChallengeRoller interface {
	RolloverChallenges(ctx context.Context) bool
}

// Config holds configuration for the scheduler.
type Config struct {
	// RolloverSchedule is a six-field cron spec (default: DefaultRolloverSchedule).
	RolloverSchedule string

	// Roller receives the rollover job.
	Roller ChallengeRoller

	// Logger for job runs.
	Logger zerolog.Logger
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron   *cron.Cron
	roller ChallengeRoller
	logger zerolog.Logger
}

// New creates a scheduler and registers its jobs.
func New(cfg Config) (*Scheduler, error) {
	spec := cfg.RolloverSchedule
	if spec == "" {
		spec = DefaultRolloverSchedule
	}

	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		roller: cfg.Roller,
		logger: cfg.Logger,
	}

	if cfg.Roller != nil {
		if _, err := s.cron.AddFunc(spec, s.RunRollover); err != nil {
			return nil, fmt.Errorf("register challenge rollover %q: %w", spec, err)
		}
	}

	return s, nil
}

// Start starts the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop stops the runner and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunRollover executes the challenge rollover job once.
func (s *Scheduler) RunRollover() {
	if s.roller == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if s.roller.RolloverChallenges(ctx) {
		s.logger.Info().Msg("challenge week rolled over by scheduler")
		return
	}
	s.logger.Debug().Msg("challenge week still active")
}
