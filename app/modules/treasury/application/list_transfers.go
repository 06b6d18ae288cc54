package treasuryservice

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// ListTransfers returns a club's instructions in issuance order. It backs the
// HTTP read API; no event accompanies it, so it skips the OperationResult
// machinery and returns the slice directly.
func (s *TreasuryService) ListTransfers(ctx context.Context, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error) {
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "ListTransfers")
		defer span.End()
	}

	return s.repo.ListByClub(ctx, nil, clubID)
}
