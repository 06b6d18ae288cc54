package clubmetrics

import (
	"context"
	"time"
)

// ClubMetrics records club service operations and domain events. Implementations
// must be safe for concurrent use.
type ClubMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordMemberJoined(ctx context.Context, clubID string)
	RecordContribution(ctx context.Context, clubID string, amount int64)
	RecordWithdrawal(ctx context.Context, clubID string, amount int64)
	RecordPhaseTransition(ctx context.Context, clubID, phase string)
}
