// Package eventbus provides the NATS JetStream transport used by every
// module. The bus satisfies watermill's Publisher and Subscriber interfaces
// so it can be handed straight to a watermill router.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"

	eventbusmetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/eventbus"
)

// TopicMetadataKey names the message metadata entry that carries the
// destination topic. Handlers set it on each result message; Publish resolves
// it when called with an empty topic, which is how router handlers fan out to
// success or failure topics from a single registration.
const TopicMetadataKey = "topic"

// EventBus is the messaging surface modules depend on. Close is inherited
// from the embedded watermill interfaces.
type EventBus interface {
	message.Publisher
	message.Subscriber
	CreateStream(ctx context.Context, streamName string) error
}

type jetStreamBus struct {
	natsURL    string
	logger     *slog.Logger
	metrics    eventbusmetrics.EventBusMetrics
	tracer     trace.Tracer
	conn       *nc.Conn
	js         nc.JetStreamContext
	publisher  message.Publisher
	subscriber message.Subscriber
}

var _ EventBus = (*jetStreamBus)(nil)

// NewEventBus connects to NATS and builds the JetStream publisher and
// subscriber. appType prefixes durable consumer names so independently
// deployed processes keep separate delivery cursors.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger, appType string, metrics eventbusmetrics.EventBusMetrics, tracer trace.Tracer) (EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
		nc.ErrorHandler(func(_ *nc.Conn, s *nc.Subscription, err error) {
			if s != nil {
				logger.Error("nats subscription error",
					slog.String("subject", s.Subject),
					slog.String("queue", s.Queue),
					slog.Any("error", err),
				)
			} else {
				logger.Error("nats connection error", slog.Any("error", err))
			}
		}),
	}

	conn, err := nc.Connect(natsURL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: options,
			Marshaler:   &nats.NATSMarshaler{},
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
		},
		wmLogger,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create watermill NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:         natsURL,
			NatsOptions: options,
			Unmarshaler: &nats.NATSMarshaler{},
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: true,
				DurablePrefix: appType,
			},
		},
		wmLogger,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create watermill NATS subscriber: %w", err)
	}

	return &jetStreamBus{
		natsURL:    natsURL,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		conn:       conn,
		js:         js,
		publisher:  publisher,
		subscriber: subscriber,
	}, nil
}

// Publish sends messages to topic. When topic is empty each message is routed
// by its TopicMetadataKey metadata instead, so a single Publish call can fan
// messages out to different topics.
func (b *jetStreamBus) Publish(topic string, messages ...*message.Message) error {
	// watermill's Publisher carries no context; metrics get a background one.
	ctx := context.Background()
	for _, msg := range messages {
		target := topic
		if target == "" {
			target = msg.Metadata.Get(TopicMetadataKey)
		}
		if target == "" {
			b.metrics.RecordPublishError(ctx, "missing_topic")
			return fmt.Errorf("message %s has no destination topic", msg.UUID)
		}

		if err := b.publisher.Publish(target, msg); err != nil {
			b.metrics.RecordPublishError(ctx, target)
			return fmt.Errorf("failed to publish to %s: %w", target, err)
		}
		b.metrics.RecordMessagePublished(ctx, target)
	}
	return nil
}

// Subscribe returns a channel of messages for topic. The stream backing the
// topic must already exist; consumers are provisioned on first subscribe.
func (b *jetStreamBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	msgs, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	out := make(chan *message.Message)
	go func() {
		defer close(out)
		for msg := range msgs {
			b.metrics.RecordMessageReceived(ctx, topic)
			out <- msg
		}
	}()
	return out, nil
}

// CreateStream provisions the JetStream stream for a module if it does not
// exist. Streams capture every subject under their name, e.g. stream "club"
// holds "club.>".
func (b *jetStreamBus) CreateStream(ctx context.Context, streamName string) error {
	if !isValidStreamName(streamName) {
		return fmt.Errorf("invalid stream name: %s", streamName)
	}

	info, err := b.js.StreamInfo(streamName)
	if err != nil && !errors.Is(err, nc.ErrStreamNotFound) {
		return fmt.Errorf("failed to get stream info: %w", err)
	}
	if info != nil {
		return nil
	}

	_, err = b.js.AddStream(&nc.StreamConfig{
		Name:     streamName,
		Subjects: []string{fmt.Sprintf("%s.>", streamName)},
	})
	if err != nil {
		return fmt.Errorf("failed to add stream %s: %w", streamName, err)
	}

	b.logger.InfoContext(ctx, "stream created", slog.String("stream", streamName))
	return nil
}

// Close shuts down the publisher, subscriber, and the underlying connection.
func (b *jetStreamBus) Close() error {
	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	if err := b.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	b.conn.Close()
	return errors.Join(errs...)
}

// isValidStreamName checks a stream name against NATS naming rules: no
// whitespace, periods, wildcards, and no leading or trailing hyphen.
func isValidStreamName(name string) bool {
	for _, r := range name {
		if !isValidRune(r) {
			return false
		}
	}
	return name != "" && name[0] != '-' && name[len(name)-1] != '-'
}

func isValidRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}
