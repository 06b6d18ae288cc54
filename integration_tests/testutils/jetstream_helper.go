package testutils

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nats-io/nats.go/jetstream"
)

// ResetJetStreamState purges all messages from the given streams. Purging
// preserves consumers, so module durables survive a reset.
func (env *TestEnvironment) ResetJetStreamState(ctx context.Context, streamNames ...string) error {
	if env.JetStream == nil {
		return fmt.Errorf("JetStream context is nil")
	}

	for _, streamName := range streamNames {
		stream, err := env.JetStream.Stream(ctx, streamName)
		if err != nil {
			// Stream doesn't exist yet, skip
			if isStreamNotFoundError(err) {
				continue
			}
			log.Printf("Warning: failed to access stream %s: %v", streamName, err)
			continue
		}

		if err := stream.Purge(ctx); err != nil {
			log.Printf("Warning: failed to purge stream %s: %v", streamName, err)
		}
	}

	return nil
}

// isStreamNotFoundError checks if the error indicates a stream was not found
func isStreamNotFoundError(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound)
}
