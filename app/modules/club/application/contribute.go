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

// Contribute records a member's fixed deposit for the current round.
func (s *ClubService) Contribute(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, amount sharedtypes.Amount) (ContributeResult, error) {
	contributeTx := func(ctx context.Context, db bun.IDB) (ContributeResult, error) {
		return s.contributeLogic(ctx, db, clubID, account, amount)
	}

	return withTelemetry(s, ctx, "Contribute", clubID.String(), func(ctx context.Context) (ContributeResult, error) {
		return runInTx(s, ctx, contributeTx)
	})
}

// contributeLogic contains the core logic.
func (s *ClubService) contributeLogic(ctx context.Context, db bun.IDB, clubID uuid.UUID, account sharedtypes.AccountID, amount sharedtypes.Amount) (ContributeResult, error) {
	club, err := s.repo.GetByIDForUpdate(ctx, db, clubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			return contributeFailureResult(clubID, account, err), nil
		}
		return ContributeResult{}, fmt.Errorf("failed to load club: %w", err)
	}

	if err := club.Contribute(account, amount, s.clock.NowUTC()); err != nil {
		return contributeFailureResult(clubID, account, err), nil
	}

	if err := s.repo.Save(ctx, db, club); err != nil {
		return ContributeResult{}, fmt.Errorf("failed to persist club: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordContribution(ctx, clubID.String(), int64(amount))
	}

	payload := clubevents.ClubContributionRecordedPayloadV1{
		ClubID:             clubID,
		Account:            account,
		Amount:             amount,
		TotalContributions: club.TotalContributions,
		ContributorCount:   club.ContributorCount(),
	}
	return ContributeResult{Success: &payload}, nil
}

// contributeFailureResult is a helper to create standardized failure results.
func contributeFailureResult(clubID uuid.UUID, account sharedtypes.AccountID, err error) ContributeResult {
	return ContributeResult{
		Failure: &clubevents.ClubContributionFailedPayloadV1{
			ClubID:  clubID,
			Account: account,
			Reason:  err.Error(),
			Code:    failureCode(err),
		},
	}
}
