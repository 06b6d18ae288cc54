package utils

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Metadata keys stamped by the middleware below.
const (
	MetadataModule     = "module"
	MetadataReceivedAt = "received_at"
	MetadataReplyTo    = "reply_to"
)

// MiddlewareHelper builds watermill middleware shared by module routers.
type MiddlewareHelper struct{}

// NewMiddlewareHelper creates a MiddlewareHelper.
func NewMiddlewareHelper() *MiddlewareHelper {
	return &MiddlewareHelper{}
}

// CommonMetadataMiddleware stamps the handling module and receipt time on
// every produced message.
func (m *MiddlewareHelper) CommonMetadataMiddleware(module string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			produced, err := h(msg)
			if err != nil {
				return nil, err
			}
			receivedAt := time.Now().UTC().Format(time.RFC3339)
			for _, out := range produced {
				out.Metadata.Set(MetadataModule, module)
				out.Metadata.Set(MetadataReceivedAt, receivedAt)
			}
			return produced, nil
		}
	}
}

// RoutingMetadataMiddleware copies reply_to from the incoming message onto
// produced messages so dynamic reply topics survive multi-hop flows.
func (m *MiddlewareHelper) RoutingMetadataMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			produced, err := h(msg)
			if err != nil {
				return nil, err
			}
			replyTo := msg.Metadata.Get(MetadataReplyTo)
			if replyTo == "" {
				return produced, nil
			}
			for _, out := range produced {
				if out.Metadata.Get(MetadataReplyTo) == "" {
					out.Metadata.Set(MetadataReplyTo, replyTo)
				}
			}
			return produced, nil
		}
	}
}
