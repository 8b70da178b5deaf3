package routing

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/telemetry"
)

// Fallback reasons reported in logs and metrics.
const (
	FallbackNoProvider    = "no_provider"
	FallbackProviderError = "provider_error"
	FallbackEmptyResult   = "empty_result"
)

// ServiceConfig holds configuration for the route source service.
type ServiceConfig struct {
	// Provider is the real directions provider. Nil means no credentials are configured.
	Provider Provider

	// Fallback produces candidates whenever Provider cannot (default: MockProvider).
	Fallback Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache real provider results (default: 5 minutes).
	CacheTTL time.Duration

	// CleanupInterval is how often to clean up expired entries (default: 5 minutes).
	CleanupInterval time.Duration

	// Metrics records fallbacks (optional).
	Metrics *telemetry.DomainMetrics

	// ProviderMetrics records provider call latency (optional).
	ProviderMetrics *telemetry.ProviderMetrics
}

// Result is the outcome of a candidate fetch.
type Result struct {
	Candidates    []Candidate
	UsingRealData bool
	Provider      string
}

// Service fetches trip candidates through a single fallback chain:
// real provider, then synthetic candidates. It never fails.
type Service struct {
	provider        Provider
	fallback        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cleanupInterval time.Duration
	metrics         *telemetry.DomainMetrics
	providerMetrics *telemetry.ProviderMetrics

	mu          sync.RWMutex
	cache       map[string]*cachedCandidates
	lastCleanup time.Time
}

type cachedCandidates struct {
	candidates []Candidate
	expiresAt  time.Time
}

// NewService creates a new route source service.
func NewService(cfg ServiceConfig) *Service {
	fallback := cfg.Fallback
	if fallback == nil {
		fallback = NewMockProvider(nil)
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		fallback:        fallback,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cleanupInterval: cleanupInterval,
		metrics:         cfg.Metrics,
		providerMetrics: cfg.ProviderMetrics,
		cache:           make(map[string]*cachedCandidates),
	}
}

// Fetch returns candidates for a trip. Real provider results are augmented
// with synthetic modes; any provider failure degrades to the fallback.
func (s *Service) Fetch(ctx context.Context, source, destination string) Result {
	if s.provider == nil {
		s.logger.Debug().Msg("no directions provider configured, using mock candidates")
		return s.fallbackResult(ctx, source, destination, FallbackNoProvider)
	}

	key := cacheKey(source, destination)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", key).
			Msg("cache hit for candidates")
		return Result{
			Candidates:    cloneCandidates(cached.candidates),
			UsingRealData: true,
			Provider:      s.provider.Name(),
		}
	}
	s.mu.RUnlock()

	start := time.Now()
	candidates, err := s.provider.Candidates(ctx, source, destination)
	if s.providerMetrics != nil {
		s.providerMetrics.RecordRequest(s.provider.Name(), "directions", time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Msg("directions provider failed, using mock candidates")
		return s.fallbackResult(ctx, source, destination, FallbackProviderError)
	}
	if len(candidates) == 0 {
		s.logger.Warn().
			Str("provider", s.provider.Name()).
			Msg("directions provider returned no routes, using mock candidates")
		return s.fallbackResult(ctx, source, destination, FallbackEmptyResult)
	}

	for i := range candidates {
		candidates[i].Steps = truncateSteps(candidates[i].Steps)
	}
	augmented := Augment(candidates)

	s.store(key, augmented)

	return Result{
		Candidates:    cloneCandidates(augmented),
		UsingRealData: true,
		Provider:      s.provider.Name(),
	}
}

func (s *Service) fallbackResult(ctx context.Context, source, destination, reason string) Result {
	s.metrics.RecordRouteFallback(reason)

	candidates, err := s.fallback.Candidates(ctx, source, destination)
	if err != nil {
		// The mock generator cannot fail; a custom fallback still must not surface errors.
		s.logger.Error().Err(err).
			Str("provider", s.fallback.Name()).
			Msg("fallback provider failed")
		candidates = []Candidate{}
	}
	for i := range candidates {
		candidates[i].Steps = truncateSteps(candidates[i].Steps)
	}

	return Result{
		Candidates:    candidates,
		UsingRealData: false,
		Provider:      s.fallback.Name(),
	}
}

func (s *Service) store(key string, candidates []Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.cache[key] = &cachedCandidates{
		candidates: cloneCandidates(candidates),
		expiresAt:  now.Add(s.cacheTTL),
	}

	s.logger.Debug().
		Str("cache_key", key).
		Int("candidate_count", len(candidates)).
		Msg("cached provider candidates")

	s.cleanupIfNeeded(now)
}

// cleanupIfNeeded removes expired entries if cleanup interval has passed.
// Caller must hold the write lock.
func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		if now.After(cached.expiresAt) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired candidate cache entries")
	}
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedCandidates)
}

// HasProvider reports whether a real directions provider is configured.
func (s *Service) HasProvider() bool {
	return s.provider != nil
}

// ProviderName returns the name of the real provider, or the fallback when none is configured.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return s.fallback.Name()
	}
	return s.provider.Name()
}

// cacheKey normalizes place names so "Chennai " and "chennai" share an entry.
func cacheKey(source, destination string) string {
	return strings.ToLower(strings.TrimSpace(source)) + "|" + strings.ToLower(strings.TrimSpace(destination))
}

func cloneCandidates(in []Candidate) []Candidate {
	out := make([]Candidate, len(in))
	for i, c := range in {
		c.Steps = append([]string(nil), c.Steps...)
		out[i] = c
	}
	return out
}
