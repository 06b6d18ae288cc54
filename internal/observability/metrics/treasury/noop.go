package treasurymetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards every record.
type NoOpMetrics struct{}

var _ TreasuryMetrics = (*NoOpMetrics)(nil)

// NewNoop returns metrics that go nowhere.
func NewNoop() NoOpMetrics { return NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordTransferRecorded(context.Context, string, int64)                  {}
func (NoOpMetrics) RecordStatementImport(context.Context, string, int)                     {}
func (NoOpMetrics) RecordReconciliation(context.Context, int, int, int)                    {}
