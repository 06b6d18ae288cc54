package clubhandlers

import (
	"context"
	"errors"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// HandleOpenWithdrawalsRequest handles the ClubWithdrawalOpenRequested event.
func (h *ClubHandlers) HandleOpenWithdrawalsRequest(ctx context.Context, payload *clubevents.ClubWithdrawalOpenRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.OpenWithdrawals(ctx, payload.ClubID, payload.Caller)
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result,
		clubevents.ClubWithdrawalPhaseOpenedV1,
		clubevents.ClubWithdrawalOpenFailedV1,
	), nil
}
