package clubhandlers

import (
	"context"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
)

// Handlers defines the interface for club event handlers.
type Handlers interface {
	// HandleCreateClubRequest handles club creation requests.
	HandleCreateClubRequest(ctx context.Context, payload *clubevents.ClubCreateRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleJoinClubRequest handles membership admission requests.
	HandleJoinClubRequest(ctx context.Context, payload *clubevents.ClubJoinRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleContributionRequest handles round deposit requests.
	HandleContributionRequest(ctx context.Context, payload *clubevents.ClubContributionRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleOpenWithdrawalsRequest handles creator requests to open the
	// withdrawal phase.
	HandleOpenWithdrawalsRequest(ctx context.Context, payload *clubevents.ClubWithdrawalOpenRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleWithdrawRequest handles member claims on the pool.
	HandleWithdrawRequest(ctx context.Context, payload *clubevents.ClubWithdrawRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleCloseClubRequest handles creator requests to retire a lapsed club.
	HandleCloseClubRequest(ctx context.Context, payload *clubevents.ClubCloseRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleGetClubRequest handles requests for the club snapshot.
	HandleGetClubRequest(ctx context.Context, payload *clubevents.ClubGetRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
