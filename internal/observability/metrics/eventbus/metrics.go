package eventbusmetrics

import "context"

// EventBusMetrics counts traffic through the JetStream event bus.
type EventBusMetrics interface {
	RecordMessagePublished(ctx context.Context, topic string)
	RecordMessageReceived(ctx context.Context, topic string)
	RecordPublishError(ctx context.Context, topic string)
}

// NoOpMetrics discards every record.
type NoOpMetrics struct{}

var _ EventBusMetrics = (*NoOpMetrics)(nil)

func (NoOpMetrics) RecordMessagePublished(context.Context, string) {}
func (NoOpMetrics) RecordMessageReceived(context.Context, string)  {}
func (NoOpMetrics) RecordPublishError(context.Context, string)     {}
