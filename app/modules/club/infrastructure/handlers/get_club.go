package clubhandlers

import (
	"context"
	"errors"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
	"github.com/osusu-club/osusu-service/internal/observability/attr"
)

// HandleGetClubRequest handles requests for the club snapshot.
func (h *ClubHandlers) HandleGetClubRequest(ctx context.Context, payload *clubevents.ClubGetRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	ctx, span := h.tracer.Start(ctx, "ClubHandlers.HandleGetClubRequest")
	defer span.End()

	h.logger.InfoContext(ctx, "Club snapshot requested",
		attr.ExtractCorrelationID(ctx),
		attr.String("club_id", payload.ClubID.String()),
	)

	result, err := h.service.GetClub(ctx, payload.ClubID)
	if err != nil {
		return nil, err
	}

	// Dynamic reply-to takes precedence over the static response topic so
	// point-to-point requesters receive the snapshot on their inbox subject.
	responseTopic := clubevents.ClubGetResponseV1
	if rt, ok := ctx.Value(handlerwrapper.CtxKeyReplyTo).(string); ok && rt != "" {
		responseTopic = rt
	}

	return mapOperationResult(result,
		responseTopic,
		clubevents.ClubGetFailedV1,
	), nil
}
