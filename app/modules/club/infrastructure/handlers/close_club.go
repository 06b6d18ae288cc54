package clubhandlers

import (
	"context"
	"errors"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// HandleCloseClubRequest handles the ClubCloseRequested event.
func (h *ClubHandlers) HandleCloseClubRequest(ctx context.Context, payload *clubevents.ClubCloseRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.CloseClub(ctx, payload.ClubID, payload.Caller)
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result,
		clubevents.ClubClosedV1,
		clubevents.ClubCloseFailedV1,
	), nil
}
