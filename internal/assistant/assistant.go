// Package assistant answers free-text travel questions through a chat
// completion provider, degrading to fixed replies when it cannot.
package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/telemetry"
)

// Fixed replies returned instead of errors.
const (
	UnavailableReply = "AI service unavailable - API key not configured. Set OPENROUTER_API_KEY in the environment or config file."
	TroubleReply     = "Sorry, I'm having trouble connecting to AI services right now. Please try again later."
	ErrorReply       = "Sorry, I encountered an error. Please try again."
)

// SystemPrompt frames every conversation.
const SystemPrompt = "You are an AI urban mobility assistant for OneJourney. Help users with route planning, transport options, cost optimization, and eco-friendly travel. Be concise and helpful. Focus on practical advice for Indian cities like Chennai, Bangalore, Mumbai, Delhi."

// Provider errors.
var (
	// ErrUpstreamStatus indicates the provider answered with a non-success status.
	ErrUpstreamStatus = errors.New("chat provider returned an error status")
	// ErrEmptyReply indicates the provider response carried no choices.
	ErrEmptyReply = errors.New("chat provider returned no reply")
)

// Fallback reasons reported in logs and metrics.
const (
	reasonUnconfigured   = "unconfigured"
	reasonUpstreamStatus = "upstream_status"
	reasonError          = "error"
)

// Provider produces a single reply to a user message.
type Provider interface {
	Reply(ctx context.Context, message string) (string, error)
	Name() string
}

// Config holds configuration for the assistant service.
type Config struct {
	// Provider is the chat backend. Nil means no credentials are configured.
	Provider Provider

	// Metrics records fallbacks (optional).
	Metrics *telemetry.DomainMetrics

	// ProviderMetrics records provider call latency (optional).
	ProviderMetrics *telemetry.ProviderMetrics

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service answers questions. It never returns an error.
type Service struct {
	provider        Provider
	metrics         *telemetry.DomainMetrics
	providerMetrics *telemetry.ProviderMetrics
	logger          zerolog.Logger
}

// NewService creates an assistant service.
func NewService(cfg Config) *Service {
	return &Service{
		provider:        cfg.Provider,
		metrics:         cfg.Metrics,
		providerMetrics: cfg.ProviderMetrics,
		logger:          cfg.Logger,
	}
}

// Configured reports whether a chat provider is available.
func (s *Service) Configured() bool {
	return s.provider != nil
}

// Ask returns the provider's reply, or one of the fixed replies when no
// provider is configured or the call fails.
func (s *Service) Ask(ctx context.Context, message string) string {
	if s.provider == nil {
		s.metrics.RecordAssistantFallback(reasonUnconfigured)
		return UnavailableReply
	}

	start := time.Now()
	reply, err := s.provider.Reply(ctx, message)
	s.providerMetrics.RecordRequest(s.provider.Name(), "chat", time.Since(start), err)
	if err == nil {
		return reply
	}

	if errors.Is(err, ErrUpstreamStatus) {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Msg("chat provider rejected request")
		s.metrics.RecordAssistantFallback(reasonUpstreamStatus)
		return TroubleReply
	}

	s.logger.Error().Err(err).
		Str("provider", s.provider.Name()).
		Msg("chat request failed")
	s.metrics.RecordAssistantFallback(reasonError)
	return ErrorReply
}
