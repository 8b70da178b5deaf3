package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/events"
)

// ErrMalformedEvent is returned when a message body is not a valid event.
var ErrMalformedEvent = errors.New("malformed event")

// Processor decodes message bodies and applies them to a digest.
type Processor struct {
	digest  *Digest
	metrics *Metrics
	logger  zerolog.Logger
}

// NewProcessor creates a processor. metrics may be nil.
func NewProcessor(digest *Digest, metrics *Metrics, logger zerolog.Logger) *Processor {
	return &Processor{
		digest:  digest,
		metrics: metrics,
		logger:  logger,
	}
}

// Process handles one message body. Duplicates are dropped without error.
func (p *Processor) Process(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var e events.Event
	if err := json.Unmarshal(data, &e); err != nil {
		p.metrics.RecordEvent("", OutcomeMalformed)
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if e.Type == "" {
		p.metrics.RecordEvent("", OutcomeMalformed)
		return fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	applied, err := p.digest.Apply(e)
	switch {
	case errors.Is(err, ErrUnknownEventType):
		p.metrics.RecordEvent(string(e.Type), OutcomeUnknown)
		return err
	case err != nil:
		p.metrics.RecordEvent(string(e.Type), OutcomeMalformed)
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	case !applied:
		p.metrics.RecordEvent(string(e.Type), OutcomeDuplicate)
		p.logger.Debug().Str("event_id", e.ID).Msg("duplicate event dropped")
		return nil
	}

	p.metrics.RecordEvent(string(e.Type), OutcomeApplied)
	p.logger.Debug().
		Str("event_id", e.ID).
		Str("event_type", string(e.Type)).
		Msg("event applied")
	return nil
}
