// Package handlerwrapper adapts typed transformation handlers to watermill.
// A handler receives a decoded payload and returns Results; the wrapper turns
// each Result into an outgoing message whose destination topic rides in
// metadata, which is what lets routers register handlers with an empty
// publish topic.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/osusu-club/osusu-service/internal/observability/attr"
	"github.com/osusu-club/osusu-service/internal/utils"
)

type ctxKey string

// CtxKeyReplyTo carries a dynamic reply topic extracted from message
// metadata. Handlers may use it to override their static response topic.
const CtxKeyReplyTo ctxKey = "reply_to"

// Result is a single outgoing event produced by a handler.
type Result struct {
	Topic    string
	Payload  interface{}
	Metadata map[string]string
}

// ReturningMetrics records handler-level outcomes. A nil value disables
// recording.
type ReturningMetrics interface {
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}

// WrapTransformingTyped decodes the message payload into T, seeds the context
// with correlation and reply-to metadata, invokes the handler, and marshals
// its Results into outgoing messages.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	metrics ReturningMetrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		if correlationID := middleware.MessageCorrelationID(msg); correlationID != "" {
			ctx = attr.WithCorrelationID(ctx, correlationID)
		}
		if replyTo := msg.Metadata.Get(utils.MetadataReplyTo); replyTo != "" {
			ctx = context.WithValue(ctx, CtxKeyReplyTo, replyTo)
		}

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName)
			defer span.End()
		}

		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, handlerName)
		}
		start := time.Now()
		defer func() {
			if metrics != nil {
				metrics.RecordHandlerDuration(ctx, handlerName, time.Since(start))
			}
		}()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to unmarshal handler payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			// Malformed payloads will never succeed on redelivery; surface
			// the error so the router can dead-letter or drop per policy.
			return nil, fmt.Errorf("%s: failed to unmarshal payload: %w", handlerName, err)
		}

		results, err := handler(ctx, payload)
		if err != nil {
			if span != nil {
				span.RecordError(err)
			}
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, res := range results {
			outMsg, err := helpers.CreateResultMessage(msg, res.Payload, res.Topic)
			if err != nil {
				if metrics != nil {
					metrics.RecordHandlerFailure(ctx, handlerName)
				}
				return nil, fmt.Errorf("%s: failed to create result message: %w", handlerName, err)
			}
			for k, v := range res.Metadata {
				outMsg.Metadata.Set(k, v)
			}
			out = append(out, outMsg)
		}

		if metrics != nil {
			metrics.RecordHandlerSuccess(ctx, handlerName)
		}
		return out, nil
	}
}
