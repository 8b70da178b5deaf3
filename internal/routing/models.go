// Package routing provides trip candidate sourcing and ranking.
package routing

import (
	"context"
	"errors"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the directions provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrNoRouteFound indicates the provider returned no usable routes.
	ErrNoRouteFound = errors.New("no route found between the given places")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidResponse indicates the provider response could not be decoded.
	ErrInvalidResponse = errors.New("invalid provider response")
)

// Provider defines the interface for trip candidate providers.
type Provider interface {
	// Candidates returns raw trip candidates between two free-text places.
	Candidates(ctx context.Context, source, destination string) ([]Candidate, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Candidate is a raw transport option between two places.
type Candidate struct {
	ID              int      `json:"id"`
	Mode            string   `json:"mode"`
	DurationMinutes int      `json:"duration"`
	Cost            int      `json:"cost"`
	CarbonGrams     int      `json:"carbon"`
	DistanceLabel   string   `json:"distance"`
	Steps           []string `json:"steps"`

	// DistanceKm is the numeric distance behind DistanceLabel, 0 when unknown.
	DistanceKm float64 `json:"-"`
}

// ScoredRoute is a Candidate annotated by the scorer.
type ScoredRoute struct {
	Candidate
	SmartScore int `json:"smartScore"`
	Savings    int `json:"savings"`
}

// Constraints narrows and orders a scored batch.
type Constraints struct {
	MaxBudget *float64 `json:"maxBudget,omitempty"`
	Fastest   bool     `json:"fastest,omitempty"`
	EcoMode   bool     `json:"ecoMode,omitempty"`
}

// MaxSteps is the maximum number of instructions kept per candidate.
const MaxSteps = 3

// Error provides detailed error information from a directions provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}

func truncateSteps(steps []string) []string {
	if len(steps) > MaxSteps {
		return steps[:MaxSteps]
	}
	return steps
}
