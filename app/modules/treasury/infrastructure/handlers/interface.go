package treasuryhandlers

import (
	"context"

	treasuryevents "github.com/osusu-club/osusu-service/app/events/treasury"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// Handlers defines the interface for treasury event handlers.
type Handlers interface {
	// HandleTransferRecorded reacts to instructions recorded by settled
	// withdrawals and pushes them to the settlement gateway.
	HandleTransferRecorded(ctx context.Context, payload *treasuryevents.TransferRecordedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleStatementImportRequest handles uploaded bank statements and
	// publishes the reconciliation report.
	HandleStatementImportRequest(ctx context.Context, payload *treasuryevents.StatementImportRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
