package clubmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards every record. Used in tests and when metrics are
// disabled.
type NoOpMetrics struct{}

var _ ClubMetrics = (*NoOpMetrics)(nil)

// NewNoop returns metrics that go nowhere.
func NewNoop() NoOpMetrics { return NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordMemberJoined(context.Context, string)                             {}
func (NoOpMetrics) RecordContribution(context.Context, string, int64)                      {}
func (NoOpMetrics) RecordWithdrawal(context.Context, string, int64)                        {}
func (NoOpMetrics) RecordPhaseTransition(context.Context, string, string)                  {}
