package testutils

import (
	"context"
	"fmt"
	"time"
)

// WaitFor repeatedly calls a check function until it returns nil or a timeout occurs.
// This is useful for waiting for asynchronous operations to complete in integration tests.
func WaitFor(timeout, interval time.Duration, check func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Check one last time before returning timeout error
			if err := check(); err == nil {
				return nil
			}
			return fmt.Errorf("timed out waiting: %w", ctx.Err())
		case <-ticker.C:
			if err := check(); err == nil {
				return nil
			}
			// Continue waiting if check returns an error
		}
	}
}
