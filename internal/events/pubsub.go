package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// PubSubConfig holds configuration for the Pub/Sub publisher.
type PubSubConfig struct {
	ProjectID string
	Topic     string
	Logger    zerolog.Logger

	// ClientOptions are passed to the Pub/Sub client, e.g. to target an emulator.
	ClientOptions []option.ClientOption
}

// PubSubPublisher publishes events to a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    zerolog.Logger

	// pending tracks acknowledgements still being awaited.
	pending sync.WaitGroup
}

// NewPubSubPublisher creates a publisher for the configured topic.
func NewPubSubPublisher(ctx context.Context, cfg PubSubConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
		topic:     cfg.Topic,
		logger:    cfg.Logger,
	}, nil
}

// Publish hands the event to the batching publisher and returns without
// waiting for the server. Delivery failures are logged once the result
// resolves. The caller's cancellation does not abort a queued message.
func (p *PubSubPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	ctx = context.WithoutCancel(ctx)
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":     string(e.Type),
			"event_id": e.ID,
		},
	})

	p.pending.Add(1)
	go p.await(ctx, e, result)

	return nil
}

func (p *PubSubPublisher) await(ctx context.Context, e Event, result *pubsub.PublishResult) {
	defer p.pending.Done()

	serverID, err := result.Get(ctx)
	if err != nil {
		p.logger.Warn().Err(err).
			Str("event_id", e.ID).
			Str("event_type", string(e.Type)).
			Str("topic", p.topic).
			Msg("failed to publish event")
		return
	}

	p.logger.Debug().
		Str("event_id", e.ID).
		Str("event_type", string(e.Type)).
		Str("message_id", serverID).
		Msg("published event")
}

// Close flushes pending messages, waits for their results and closes the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	p.pending.Wait()
	return p.client.Close()
}

var _ Publisher = (*PubSubPublisher)(nil)
