package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/challenge"
	"github.com/onejourney/onejourney/internal/events"
	"github.com/onejourney/onejourney/internal/telemetry"
)

// Rejection reasons reported in metrics.
const (
	rejectInvalidInput  = "invalid_input"
	rejectInsufficient  = "insufficient_balance"
	rejectInvalidAmount = "invalid_amount"
)

// Config holds configuration for the wallet service.
type Config struct {
	// InitialBalance is the opening balance (default: 2500). Zero is a
	// valid opening balance; nil selects the default.
	InitialBalance *int

	// Clock returns the current time (default: time.Now).
	Clock func() time.Time

	// Tracker holds the weekly challenges (default: a fresh tracker on Clock).
	Tracker *challenge.Tracker

	// Publisher receives trip, top-up and challenge events (default: discard).
	Publisher events.Publisher

	// Metrics records domain counters (optional).
	Metrics *telemetry.DomainMetrics

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service owns the wallet and the challenge tracker. A single mutex covers
// both, so the balance check, debit, challenge update and bonus credit of a
// trip are applied together or not at all.
type Service struct {
	mu      sync.Mutex
	wallet  Wallet
	tracker *challenge.Tracker

	now       func() time.Time
	publisher events.Publisher
	metrics   *telemetry.DomainMetrics
	logger    zerolog.Logger
}

// NewService creates a wallet service.
func NewService(cfg Config) *Service {
	balance := DefaultInitialBalance
	if cfg.InitialBalance != nil {
		balance = *cfg.InitialBalance
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	tracker := cfg.Tracker
	if tracker == nil {
		tracker = challenge.NewTracker(now)
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	cfg.Metrics.SetBalance(balance)

	return &Service{
		wallet: Wallet{
			Balance: balance,
			Trips:   []TripRecord{},
		},
		tracker:   tracker,
		now:       now,
		publisher: publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// State returns a copy of the wallet.
func (s *Service) State() Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet.clone()
}

// UseRoute pays for a trip. It fails without side effects when the cost is
// not positive or exceeds the balance. On success the trip is recorded, the
// challenges advance, and bonuses of newly completed challenges are credited.
func (s *Service) UseRoute(ctx context.Context, in TripInput) (UseResult, error) {
	if in.Cost <= 0 {
		s.metrics.RecordWalletRejection(rejectInvalidInput)
		return UseResult{}, ErrInvalidInput
	}

	s.mu.Lock()

	if s.wallet.Balance < in.Cost {
		balance := s.wallet.Balance
		s.mu.Unlock()
		s.metrics.RecordWalletRejection(rejectInsufficient)
		s.logger.Debug().
			Int("balance", balance).
			Int("cost", in.Cost).
			Msg("trip rejected, insufficient balance")
		return UseResult{}, ErrInsufficientBalance
	}

	// Savings and carbon totals never decrease.
	in.Savings = max(in.Savings, 0)
	in.Carbon = max(in.Carbon, 0)

	now := s.now()
	s.wallet.Balance -= in.Cost
	s.wallet.TotalSaved += in.Savings
	s.wallet.CarbonSaved += in.Carbon
	s.wallet.Trips = append(s.wallet.Trips, TripRecord{
		Mode:     in.Mode,
		Cost:     in.Cost,
		Savings:  in.Savings,
		Carbon:   in.Carbon,
		Duration: in.Duration,
		Distance: in.Distance,
		Date:     now.UTC(),
	})

	s.tracker.OnTrip(in.Savings, in.Carbon)
	completions := s.tracker.Sweep()
	for _, c := range completions {
		s.wallet.Balance += c.Bonus
	}

	result := UseResult{
		Wallet:              s.wallet.clone(),
		CompletedChallenges: completions,
	}
	s.mu.Unlock()

	s.metrics.RecordTrip(in.Mode, result.Balance)
	for _, c := range completions {
		s.metrics.RecordChallengeCompleted(c.ID, c.Bonus)
		s.logger.Info().
			Str("challenge", c.ID).
			Int("bonus", c.Bonus).
			Msg("challenge completed")
	}

	s.publish(ctx, events.TypeTripCompleted, events.TripCompleted{
		Mode:     in.Mode,
		Cost:     in.Cost,
		Savings:  in.Savings,
		Carbon:   in.Carbon,
		Duration: in.Duration,
		Distance: in.Distance,
		Balance:  result.Balance,
	}, now)
	for _, c := range completions {
		s.publish(ctx, events.TypeChallengeCompleted, events.ChallengeCompleted{
			ChallengeID: c.ID,
			Title:       c.Title,
			Bonus:       c.Bonus,
		}, now)
	}

	return result, nil
}

// TopUp adds a positive amount to the balance.
func (s *Service) TopUp(ctx context.Context, amount int) (Wallet, error) {
	if amount <= 0 {
		s.metrics.RecordWalletRejection(rejectInvalidAmount)
		return Wallet{}, ErrInvalidAmount
	}

	s.mu.Lock()
	s.wallet.Balance += amount
	w := s.wallet.clone()
	s.mu.Unlock()

	s.metrics.RecordTopUp(w.Balance)
	s.publish(ctx, events.TypeWalletToppedUp, events.WalletToppedUp{
		Amount:  amount,
		Balance: w.Balance,
	}, s.now())

	return w, nil
}

// History returns up to limit trips, most recent first. Limits outside
// (0, DefaultHistoryLimit] use DefaultHistoryLimit.
func (s *Service) History(limit int) []TripRecord {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := min(limit, len(s.wallet.Trips))
	out := make([]TripRecord, 0, n)
	for i := len(s.wallet.Trips) - 1; i >= len(s.wallet.Trips)-n; i-- {
		out = append(out, s.wallet.Trips[i])
	}
	return out
}

// Challenges returns the current challenge week, rolling it over first when
// it has ended, together with the cumulative carbon saved.
func (s *Service) Challenges(ctx context.Context) (challenge.Set, int) {
	s.mu.Lock()
	rolled := s.tracker.Rollover()
	set := s.tracker.Current()
	carbon := s.wallet.CarbonSaved
	s.mu.Unlock()

	if rolled {
		s.announceRollover(ctx, set)
	}
	return set, carbon
}

// RolloverChallenges starts a new challenge week if the current one has
// ended. It reports whether a rollover happened.
func (s *Service) RolloverChallenges(ctx context.Context) bool {
	s.mu.Lock()
	rolled := s.tracker.Rollover()
	set := s.tracker.Current()
	s.mu.Unlock()

	if rolled {
		s.announceRollover(ctx, set)
	}
	return rolled
}

func (s *Service) announceRollover(ctx context.Context, set challenge.Set) {
	s.logger.Info().
		Time("week_start", set.WeekStart).
		Time("week_end", set.WeekEnd).
		Msg("weekly challenges reset")
	s.publish(ctx, events.TypeChallengesRollover, events.ChallengesRolledOver{
		WeekStart: set.WeekStart,
		WeekEnd:   set.WeekEnd,
	}, set.WeekStart)
}

// publish sends an event; failures are logged and never fail the caller.
func (s *Service) publish(ctx context.Context, typ events.Type, payload any, at time.Time) {
	e, err := events.New(typ, payload, at)
	if err == nil {
		err = s.publisher.Publish(ctx, e)
	}
	if err != nil {
		s.logger.Warn().Err(err).
			Str("event_type", string(typ)).
			Msg("failed to publish event")
	}
}
