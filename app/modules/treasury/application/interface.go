package treasuryservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	treasuryevents "github.com/osusu-club/osusu-service/app/events/treasury"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
	"github.com/osusu-club/osusu-service/internal/results"
)

// Operation result aliases reduce generic verbosity. Each pairs the success
// payload with the failure payload the handlers publish on the matching
// outcome topics.
type (
	SubmitTransferResult  = results.OperationResult[treasuryevents.TransferSubmittedPayloadV1, treasuryevents.TransferSubmitFailedPayloadV1]
	ImportStatementResult = results.OperationResult[treasuryevents.StatementReconciledPayloadV1, treasuryevents.StatementImportFailedPayloadV1]
)

// Service defines the interface for treasury operations. RecordTransfer
// doubles as the club module's TransferRecorder port, which is why it takes
// the caller's db handle instead of an OperationResult shape.
type Service interface {
	RecordTransfer(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) (treasurytypes.TransferInstruction, error)
	SubmitTransfer(ctx context.Context, transferID uuid.UUID) (SubmitTransferResult, error)
	ImportStatement(ctx context.Context, clubID uuid.UUID, filename, format string, content []byte) (ImportStatementResult, error)
	ListTransfers(ctx context.Context, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error)
}
