package treasuryhandlers

import (
	"context"
	"errors"

	treasuryevents "github.com/osusu-club/osusu-service/app/events/treasury"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// HandleStatementImportRequest handles the StatementImportRequested event.
func (h *TreasuryHandlers) HandleStatementImportRequest(ctx context.Context, payload *treasuryevents.StatementImportRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.ImportStatement(ctx, payload.ClubID, payload.Filename, payload.Format, payload.Content)
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result,
		treasuryevents.StatementReconciledV1,
		treasuryevents.StatementImportFailedV1,
	), nil
}
