package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/curio-learn/profile-service/internal/config"
)

// Bus publishes record events to one topic over watermill. Kafka backs it
// when brokers are configured; otherwise an in-process go channel does.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	topic      string
	logger     *slog.Logger

	// shared is set when one gochannel serves both sides
	shared bool
}

// NewBus builds the transport described by cfg
func NewBus(cfg config.EventsConfig, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if len(cfg.KafkaBrokers) == 0 {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, wmLogger)
		return &Bus{publisher: ch, subscriber: ch, topic: cfg.Topic, logger: logger, shared: true}, nil
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.KafkaBrokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         cfg.ConsumerGroup,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("create kafka subscriber: %w", err)
	}

	return &Bus{publisher: publisher, subscriber: subscriber, topic: cfg.Topic, logger: logger}, nil
}

// Publish sends event to the bus topic
func (b *Bus) Publish(ctx context.Context, event *RecordEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("type", event.Type)
	msg.Metadata.Set("model", event.Model)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Subscribe starts consuming the topic in the background until ctx ends.
// Every message is acked. Decode and handler failures are logged only.
func (b *Bus) Subscribe(ctx context.Context, handler Handler) error {
	messages, err := b.subscriber.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.topic, err)
	}

	go func() {
		for msg := range messages {
			var event RecordEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Error("Dropping undecodable event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}

			if err := handler(msg.Context(), &event); err != nil {
				b.logger.Error("Event handler failed", "event_id", event.ID, "type", event.Type, "error", err)
			}
			msg.Ack()
		}
	}()

	return nil
}

// Close shuts down the publisher and subscriber
func (b *Bus) Close() error {
	var firstErr error
	if err := b.publisher.Close(); err != nil {
		firstErr = err
	}
	if !b.shared {
		if err := b.subscriber.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
