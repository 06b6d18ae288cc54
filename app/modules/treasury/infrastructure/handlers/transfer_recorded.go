package treasuryhandlers

import (
	"context"
	"errors"

	treasuryevents "github.com/osusu-club/osusu-service/app/events/treasury"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// HandleTransferRecorded handles the TransferRecorded event. The instruction
// row already committed with the withdrawal, so this handler only carries the
// id; the service re-reads the row under lock before talking to the gateway.
func (h *TreasuryHandlers) HandleTransferRecorded(ctx context.Context, payload *treasuryevents.TransferRecordedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.SubmitTransfer(ctx, payload.Instruction.ID)
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result,
		treasuryevents.TransferSubmittedV1,
		treasuryevents.TransferSubmitFailedV1,
	), nil
}
