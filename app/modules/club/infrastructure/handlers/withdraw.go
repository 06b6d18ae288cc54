package clubhandlers

import (
	"context"
	"errors"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	treasuryevents "github.com/osusu-club/osusu-service/app/events/treasury"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// HandleWithdrawRequest handles the ClubWithdrawRequested event. A settled
// claim is announced twice: once on the club stream and once on the treasury
// stream, so ledger consumers do not have to watch club topics.
func (h *ClubHandlers) HandleWithdrawRequest(ctx context.Context, payload *clubevents.ClubWithdrawRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.Withdraw(ctx, payload.ClubID, payload.Account)
	if err != nil {
		return nil, err
	}

	out := mapOperationResult(result,
		clubevents.ClubWithdrawalSettledV1,
		clubevents.ClubWithdrawFailedV1,
	)

	if result.Success != nil && result.Success.Instruction != nil {
		out = append(out, handlerwrapper.Result{
			Topic: treasuryevents.TransferRecordedV1,
			Payload: &treasuryevents.TransferRecordedPayloadV1{
				Instruction: *result.Success.Instruction,
			},
		})
	}

	return out, nil
}
