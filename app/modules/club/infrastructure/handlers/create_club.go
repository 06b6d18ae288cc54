package clubhandlers

import (
	"context"
	"errors"
	"time"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// HandleCreateClubRequest handles the ClubCreateRequested event.
func (h *ClubHandlers) HandleCreateClubRequest(ctx context.Context, payload *clubevents.ClubCreateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	input := clubtypes.CreateClubInput{
		Name:               payload.Name,
		Description:        payload.Description,
		Creator:            payload.Creator,
		ContributionAmount: payload.ContributionAmount,
		PenaltyAmount:      payload.PenaltyAmount,
		MaxMembers:         payload.MaxMembers,
		StartTime:          payload.StartTime,
		EndTime:            payload.EndTime,
		PayoutInterval:     time.Duration(payload.PayoutIntervalSeconds) * time.Second,
		FirstPayoutPhrase:  payload.FirstPayoutPhrase,
	}

	result, err := h.service.CreateClub(ctx, input)
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result,
		clubevents.ClubCreatedV1,
		clubevents.ClubCreationFailedV1,
	), nil
}
