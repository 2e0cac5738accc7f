// Package eventbus wraps watermill publishers/subscribers behind the small
// interface the room module needs. The production implementation rides on
// NATS; tests and single-process setups can use the in-memory bus.
//
// Delivery is fire-and-forget: the bus is a change-notification fabric, not
// the source of truth. A client that misses a notification converges through
// the poll fallback.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus publishes and subscribes room change notifications.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type natsEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

// NewEventBus connects to NATS and returns a bus backed by it.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}

	// Core NATS only. Room notifications are advisory; there is nothing to
	// replay for a client that reconnects, it just polls the current state.
	js := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:       natsURL,
			Marshaler: marshaler,
			JetStream: js,
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
			},
		},
		watermillLogger,
	)
	if err != nil {
		logger.Error("Failed to create NATS publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:         natsURL,
			Unmarshaler: marshaler,
			JetStream:   js,
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
			},
		},
		watermillLogger,
	)
	if err != nil {
		publisher.Close()
		logger.Error("Failed to create NATS subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &natsEventBus{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
	}, nil
}

func (eb *natsEventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (eb *natsEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return ch, nil
}

func (eb *natsEventBus) Close() error {
	pubErr := eb.publisher.Close()
	subErr := eb.subscriber.Close()
	if pubErr != nil {
		return fmt.Errorf("failed to close publisher: %w", pubErr)
	}
	if subErr != nil {
		return fmt.Errorf("failed to close subscriber: %w", subErr)
	}
	return nil
}

type memoryEventBus struct {
	pubsub *gochannel.GoChannel
}

// NewInMemoryBus returns a process-local bus. Used by tests and by
// single-node deployments that do not run NATS.
func NewInMemoryBus(logger *slog.Logger) EventBus {
	return &memoryEventBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger)),
	}
}

func (eb *memoryEventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	return eb.pubsub.Publish(topic, messages...)
}

func (eb *memoryEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return eb.pubsub.Subscribe(ctx, topic)
}

func (eb *memoryEventBus) Close() error {
	return eb.pubsub.Close()
}
