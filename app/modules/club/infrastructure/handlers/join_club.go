package clubhandlers

import (
	"context"
	"errors"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// HandleJoinClubRequest handles the ClubJoinRequested event.
func (h *ClubHandlers) HandleJoinClubRequest(ctx context.Context, payload *clubevents.ClubJoinRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.JoinClub(ctx, payload.ClubID, payload.Account, payload.AccountKind, payload.PaidPenalty)
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result,
		clubevents.ClubMemberJoinedV1,
		clubevents.ClubJoinFailedV1,
	), nil
}
