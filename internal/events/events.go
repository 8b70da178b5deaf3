// Package events publishes wallet and challenge activity for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of event.
type Type string

// Event types.
const (
	TypeTripCompleted      Type = "trip.completed"
	TypeChallengeCompleted Type = "challenge.completed"
	TypeWalletToppedUp     Type = "wallet.topped_up"
	TypeChallengesRollover Type = "challenges.rolled_over"
)

// Event is the envelope written to the message bus.
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// TripCompleted is the payload of a trip.completed event.
type TripCompleted struct {
	Mode     string `json:"mode"`
	Cost     int    `json:"cost"`
	Savings  int    `json:"savings"`
	Carbon   int    `json:"carbon"`
	Duration int    `json:"duration"`
	Distance string `json:"distance"`
	Balance  int    `json:"balance"`
}

// ChallengeCompleted is the payload of a challenge.completed event.
type ChallengeCompleted struct {
	ChallengeID string `json:"challengeId"`
	Title       string `json:"title"`
	Bonus       int    `json:"bonus"`
}

// WalletToppedUp is the payload of a wallet.topped_up event.
type WalletToppedUp struct {
	Amount  int `json:"amount"`
	Balance int `json:"balance"`
}

// ChallengesRolledOver is the payload of a challenges.rolled_over event.
type ChallengesRolledOver struct {
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
}

// New builds an event with a fresh ID.
func New(typ Type, payload any, at time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	return Event{
		ID:         uuid.New().String(),
		Type:       typ,
		OccurredAt: at.UTC(),
		Data:       data,
	}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return nil
}

// Publisher sends events to a message bus.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// MemoryPublisher keeps published events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewMemoryPublisher creates an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// FailWith makes subsequent Publish calls return err.
func (p *MemoryPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Publish implements Publisher.
func (p *MemoryPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

// Close implements Publisher.
func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// OfType returns the published events of one type.
func (p *MemoryPublisher) OfType(typ Type) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

var (
	_ Publisher = NopPublisher{}
	_ Publisher = (*MemoryPublisher)(nil)
)
