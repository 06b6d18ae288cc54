// Package utils holds message construction helpers shared by every module's
// handlers.
package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/osusu-club/osusu-service/internal/eventbus"
)

// Helpers builds outgoing messages and decodes incoming payloads.
type Helpers interface {
	// CreateResultMessage builds a response message that inherits the
	// original message's metadata and targets topic.
	CreateResultMessage(originalMsg *message.Message, payload interface{}, topic string) (*message.Message, error)

	// CreateNewMessage builds a fresh message with no originating context.
	CreateNewMessage(payload interface{}, topic string) (*message.Message, error)

	// UnmarshalPayload decodes a message payload into the given struct.
	UnmarshalPayload(msg *message.Message, payload interface{}) error
}

// Helper is the production Helpers implementation.
type Helper struct {
	logger *slog.Logger
}

// NewHelper creates a Helper.
func NewHelper(logger *slog.Logger) *Helper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Helper{logger: logger}
}

var _ Helpers = (*Helper)(nil)

func (h *Helper) CreateResultMessage(originalMsg *message.Message, payload interface{}, topic string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result payload: %w", err)
	}

	newMsg := message.NewMessage(watermill.NewUUID(), data)
	if originalMsg != nil {
		for k, v := range originalMsg.Metadata {
			newMsg.Metadata.Set(k, v)
		}
	}
	newMsg.Metadata.Set(eventbus.TopicMetadataKey, topic)
	return newMsg, nil
}

func (h *Helper) CreateNewMessage(payload interface{}, topic string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	newMsg := message.NewMessage(watermill.NewUUID(), data)
	newMsg.Metadata.Set(eventbus.TopicMetadataKey, topic)
	return newMsg, nil
}

func (h *Helper) UnmarshalPayload(msg *message.Message, payload interface{}) error {
	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		h.logger.Error("Failed to unmarshal message payload",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}
