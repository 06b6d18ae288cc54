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
)

// OpenWithdrawals flips a fully contributed club into the payable phase.
// Creator only; the latch is one-shot.
func (s *ClubService) OpenWithdrawals(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (OpenWithdrawalsResult, error) {
	openTx := func(ctx context.Context, db bun.IDB) (OpenWithdrawalsResult, error) {
		return s.openWithdrawalsLogic(ctx, db, clubID, caller)
	}

	return withTelemetry(s, ctx, "OpenWithdrawals", clubID.String(), func(ctx context.Context) (OpenWithdrawalsResult, error) {
		return runInTx(s, ctx, openTx)
	})
}

// openWithdrawalsLogic contains the core logic.
func (s *ClubService) openWithdrawalsLogic(ctx context.Context, db bun.IDB, clubID uuid.UUID, caller sharedtypes.AccountID) (OpenWithdrawalsResult, error) {
	club, err := s.repo.GetByIDForUpdate(ctx, db, clubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			return openWithdrawalsFailureResult(clubID, caller, err), nil
		}
		return OpenWithdrawalsResult{}, fmt.Errorf("failed to load club: %w", err)
	}

	if err := club.OpenWithdrawals(caller, s.clock.NowUTC()); err != nil {
		return openWithdrawalsFailureResult(clubID, caller, err), nil
	}

	if err := s.repo.Save(ctx, db, club); err != nil {
		return OpenWithdrawalsResult{}, fmt.Errorf("failed to persist club: %w", err)
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleWithdrawalWindow(ctx, club.ID, club.NextWithdrawalTime); err != nil {
			return OpenWithdrawalsResult{}, fmt.Errorf("failed to schedule withdrawal window job: %w", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordPhaseTransition(ctx, clubID.String(), string(club.Phase))
	}

	payload := clubevents.ClubWithdrawalPhaseOpenedPayloadV1{
		ClubID:             clubID,
		Phase:              string(club.Phase),
		TotalContributions: club.TotalContributions,
		NextWithdrawalTime: club.NextWithdrawalTime,
	}
	return OpenWithdrawalsResult{Success: &payload}, nil
}

// openWithdrawalsFailureResult is a helper to create standardized failure results.
func openWithdrawalsFailureResult(clubID uuid.UUID, caller sharedtypes.AccountID, err error) OpenWithdrawalsResult {
	return OpenWithdrawalsResult{
		Failure: &clubevents.ClubWithdrawalOpenFailedPayloadV1{
			ClubID: clubID,
			Caller: caller,
			Reason: err.Error(),
			Code:   failureCode(err),
		},
	}
}
