package treasuryservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"

	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
	"github.com/osusu-club/osusu-service/internal/observability/attr"
)

// RecordTransfer implements the club module's TransferRecorder port. It signs
// the instruction and inserts the transfers row through the caller's db
// handle, so the insert commits or rolls back with the withdrawal that
// authorized it. No OperationResult here: an error aborts the caller's
// transaction, which is exactly the contract the port promises.
func (s *TreasuryService) RecordTransfer(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) (treasurytypes.TransferInstruction, error) {
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "RecordTransfer")
		defer span.End()
	}

	if instruction.ID == uuid.Nil {
		instruction.ID = uuid.New()
	}
	if instruction.IssuedAt.IsZero() {
		instruction.IssuedAt = s.clock.NowUTC()
	}
	instruction.Status = treasurytypes.TransferStatusPending

	if s.signer != nil {
		signature, err := s.signer.Sign(instruction)
		if err != nil {
			return treasurytypes.TransferInstruction{}, fmt.Errorf("failed to sign instruction: %w", err)
		}
		instruction.Signature = signature
	}

	if err := s.repo.Insert(ctx, db, instruction); err != nil {
		return treasurytypes.TransferInstruction{}, err
	}

	s.logger.InfoContext(ctx, "Transfer instruction recorded",
		attr.ExtractCorrelationID(ctx),
		attr.String("transfer_id", instruction.ID.String()),
		attr.String("club_id", instruction.ClubID.String()),
		attr.String("kind", string(instruction.Kind)),
		attr.Int64("amount", int64(instruction.Amount)),
	)
	if s.metrics != nil {
		s.metrics.RecordTransferRecorded(ctx, string(instruction.Kind), int64(instruction.Amount))
	}

	return instruction, nil
}
