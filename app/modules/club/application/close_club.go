package clubservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	"github.com/osusu-club/osusu-service/internal/observability/attr"
)

// CloseClub retires an undersubscribed club whose admission window lapsed
// while it was still Open.
func (s *ClubService) CloseClub(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (CloseClubResult, error) {
	closeTx := func(ctx context.Context, db bun.IDB) (CloseClubResult, error) {
		return s.closeClubLogic(ctx, db, clubID, caller)
	}

	return withTelemetry(s, ctx, "CloseClub", clubID.String(), func(ctx context.Context) (CloseClubResult, error) {
		return runInTx(s, ctx, closeTx)
	})
}

// closeClubLogic contains the core logic.
func (s *ClubService) closeClubLogic(ctx context.Context, db bun.IDB, clubID uuid.UUID, caller sharedtypes.AccountID) (CloseClubResult, error) {
	club, err := s.repo.GetByIDForUpdate(ctx, db, clubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			return closeClubFailureResult(clubID, caller, err), nil
		}
		return CloseClubResult{}, fmt.Errorf("failed to load club: %w", err)
	}

	if err := club.Close(caller, s.clock.NowUTC()); err != nil {
		return closeClubFailureResult(clubID, caller, err), nil
	}

	if err := s.repo.Save(ctx, db, club); err != nil {
		return CloseClubResult{}, fmt.Errorf("failed to persist club: %w", err)
	}

	// A cancellation failure does not undo the close; stray jobs are harmless
	// because the workers skip closed clubs on their own.
	if s.scheduler != nil {
		if err := s.scheduler.CancelClubJobs(ctx, clubID); err != nil {
			s.logger.WarnContext(ctx, "Failed to cancel scheduled jobs for closed club",
				attr.ExtractCorrelationID(ctx),
				attr.String("club_id", clubID.String()),
				attr.Error(err),
			)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordPhaseTransition(ctx, clubID.String(), string(club.Phase))
	}

	payload := clubevents.ClubClosedPayloadV1{
		ClubID: clubID,
		Phase:  string(club.Phase),
	}
	return CloseClubResult{Success: &payload}, nil
}

// closeClubFailureResult is a helper to create standardized failure results.
func closeClubFailureResult(clubID uuid.UUID, caller sharedtypes.AccountID, err error) CloseClubResult {
	return CloseClubResult{
		Failure: &clubevents.ClubCloseFailedPayloadV1{
			ClubID: clubID,
			Caller: caller,
			Reason: err.Error(),
			Code:   failureCode(err),
		},
	}
}
