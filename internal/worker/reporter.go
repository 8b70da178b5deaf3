package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reporter flushes the digest on a cron schedule and logs the totals.
type Reporter struct {
	cron    *cron.Cron
	digest  *Digest
	metrics *Metrics
	logger  zerolog.Logger
}

// NewReporter creates a reporter for the given six-field cron schedule.
func NewReporter(schedule string, digest *Digest, metrics *Metrics, logger zerolog.Logger) (*Reporter, error) {
	if schedule == "" {
		schedule = DefaultConfig().DigestSchedule
	}

	r := &Reporter{
		cron:    cron.New(cron.WithSeconds()),
		digest:  digest,
		metrics: metrics,
		logger:  logger,
	}
	if _, err := r.cron.AddFunc(schedule, func() { r.Report() }); err != nil {
		return nil, fmt.Errorf("register digest report %q: %w", schedule, err)
	}
	return r, nil
}

// Start runs the schedule in its own goroutine.
func (r *Reporter) Start() {
	r.cron.Start()
}

// Stop stops the schedule and waits for a running report until ctx is done.
func (r *Reporter) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Report flushes the current window and logs it.
func (r *Reporter) Report() DigestSnapshot {
	s := r.digest.Flush()
	r.metrics.RecordDigest(s)

	modes := zerolog.Dict()
	for mode, n := range s.TripsByMode {
		modes.Int(mode, n)
	}

	ev := r.logger.Info().
		Time("since", s.Since).
		Time("until", s.Until).
		Int("trips", s.Trips).
		Dict("trips_by_mode", modes).
		Int("spent", s.Spent).
		Int("saved", s.Saved).
		Int("carbon", s.CarbonEmitted).
		Int("topups", s.TopUps).
		Int("topped_up", s.ToppedUp).
		Int("challenges_completed", s.ChallengesCompleted).
		Int("bonus_credited", s.BonusCredited).
		Int("rollovers", s.Rollovers).
		Int("duplicates", s.Duplicates)
	if s.LastBalance >= 0 {
		ev = ev.Int("balance", s.LastBalance)
	}
	ev.Msg("travel digest")

	return s
}
