package clubservice

import (
	"context"

	"github.com/google/uuid"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	"github.com/osusu-club/osusu-service/internal/results"
)

// Operation result aliases reduce generic verbosity. Each pairs the success
// payload with the failure payload the handlers publish on the matching
// outcome topics.
type (
	CreateClubResult      = results.OperationResult[clubevents.ClubCreatedPayloadV1, clubevents.ClubCreationFailedPayloadV1]
	JoinClubResult        = results.OperationResult[clubevents.ClubMemberJoinedPayloadV1, clubevents.ClubJoinFailedPayloadV1]
	ContributeResult      = results.OperationResult[clubevents.ClubContributionRecordedPayloadV1, clubevents.ClubContributionFailedPayloadV1]
	OpenWithdrawalsResult = results.OperationResult[clubevents.ClubWithdrawalPhaseOpenedPayloadV1, clubevents.ClubWithdrawalOpenFailedPayloadV1]
	WithdrawResult        = results.OperationResult[clubevents.ClubWithdrawalSettledPayloadV1, clubevents.ClubWithdrawFailedPayloadV1]
	CloseClubResult       = results.OperationResult[clubevents.ClubClosedPayloadV1, clubevents.ClubCloseFailedPayloadV1]
	GetClubResult         = results.OperationResult[clubevents.ClubGetResponsePayloadV1, clubevents.ClubGetFailedPayloadV1]
)

// Service defines the interface for club operations.
type Service interface {
	CreateClub(ctx context.Context, input clubtypes.CreateClubInput) (CreateClubResult, error)
	JoinClub(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, kind sharedtypes.AccountKind, paidPenalty sharedtypes.Amount) (JoinClubResult, error)
	Contribute(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, amount sharedtypes.Amount) (ContributeResult, error)
	OpenWithdrawals(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (OpenWithdrawalsResult, error)
	Withdraw(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID) (WithdrawResult, error)
	CloseClub(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (CloseClubResult, error)
	GetClub(ctx context.Context, clubID uuid.UUID) (GetClubResult, error)
}
