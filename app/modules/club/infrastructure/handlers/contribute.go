package clubhandlers

import (
	"context"
	"errors"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// HandleContributionRequest handles the ClubContributionRequested event.
func (h *ClubHandlers) HandleContributionRequest(ctx context.Context, payload *clubevents.ClubContributionRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.Contribute(ctx, payload.ClubID, payload.Account, payload.Amount)
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result,
		clubevents.ClubContributionRecordedV1,
		clubevents.ClubContributionFailedV1,
	), nil
}
