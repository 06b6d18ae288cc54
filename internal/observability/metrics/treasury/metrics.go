package treasurymetrics

import (
	"context"
	"time"
)

// TreasuryMetrics records treasury operations, recorded transfers, and
// statement reconciliation outcomes.
type TreasuryMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordTransferRecorded(ctx context.Context, kind string, amount int64)
	RecordStatementImport(ctx context.Context, format string, rows int)
	RecordReconciliation(ctx context.Context, matched, mismatched, unmatched int)
}
