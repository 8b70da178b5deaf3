package resilience

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Level summarizes whether a feature is served by its upstream or by its fallback.
type Level int

const (
	// LevelHealthy means the last call succeeded and the circuit is closed.
	LevelHealthy Level = iota
	// LevelDegraded means the last call failed or the circuit is probing.
	LevelDegraded
	// LevelDown means the circuit is open and every call uses the fallback.
	LevelDown
)

func (l Level) String() string {
	switch l {
	case LevelHealthy:
		return "healthy"
	case LevelDegraded:
		return "degraded"
	case LevelDown:
		return "down"
	default:
		return "unknown"
	}
}

// ProviderHealth is a point-in-time view of one upstream.
type ProviderHealth struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Level derives the health level from the circuit state and the most recent outcome.
func (h *ProviderHealth) Level() Level {
	switch {
	case h.CircuitState == gobreaker.StateOpen:
		return LevelDown
	case h.CircuitState == gobreaker.StateHalfOpen:
		return LevelDegraded
	case h.LastFailureAt == nil:
		return LevelHealthy
	case h.LastSuccessAt == nil || h.LastFailureAt.After(*h.LastSuccessAt):
		return LevelDegraded
	default:
		return LevelHealthy
	}
}

// Registry tracks the upstream clients behind route planning and the
// assistant, and when each last succeeded or failed.
type Registry struct {
	mu        sync.RWMutex
	now       func() time.Time
	upstreams map[string]*upstream
}

type upstream struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock sets the clock used to stamp outcomes.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		now:       time.Now,
		upstreams: make(map[string]*upstream),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a client. Registering a name again replaces the client and
// clears its history.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upstreams[name] = &upstream{client: client}
}

// RecordSuccess stamps a successful call. Unknown names are ignored.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.upstreams[name]; ok {
		now := r.now()
		u.lastSuccessAt = &now
	}
}

// RecordFailure stamps a failed call and keeps its error text. Unknown names are ignored.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.upstreams[name]; ok {
		now := r.now()
		u.lastFailureAt = &now
		if err != nil {
			u.lastError = err.Error()
		}
	}
}

// Health returns the health of one upstream, or nil if it is not registered.
func (r *Registry) Health(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.upstreams[name]
	if !ok {
		return nil
	}
	return u.health(name)
}

// Snapshot returns the health of every upstream, ordered by name.
func (r *Registry) Snapshot() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ProviderHealth, 0, len(r.upstreams))
	for name, u := range r.upstreams {
		out = append(out, u.health(name))
	}
	slices.SortFunc(out, func(a, b *ProviderHealth) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func (u *upstream) health(name string) *ProviderHealth {
	return &ProviderHealth{
		Name:          name,
		CircuitState:  u.client.CircuitBreakerState(),
		Counts:        u.client.CircuitBreakerCounts(),
		LastSuccessAt: u.lastSuccessAt,
		LastFailureAt: u.lastFailureAt,
		LastError:     u.lastError,
	}
}
