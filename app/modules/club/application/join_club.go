package clubservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

// JoinClub admits an account into a club against the paid entry penalty.
func (s *ClubService) JoinClub(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, kind sharedtypes.AccountKind, paidPenalty sharedtypes.Amount) (JoinClubResult, error) {
	joinTx := func(ctx context.Context, db bun.IDB) (JoinClubResult, error) {
		return s.joinClubLogic(ctx, db, clubID, account, kind, paidPenalty)
	}

	return withTelemetry(s, ctx, "JoinClub", clubID.String(), func(ctx context.Context) (JoinClubResult, error) {
		return runInTx(s, ctx, joinTx)
	})
}

// joinClubLogic contains the core logic.
func (s *ClubService) joinClubLogic(ctx context.Context, db bun.IDB, clubID uuid.UUID, account sharedtypes.AccountID, kind sharedtypes.AccountKind, paidPenalty sharedtypes.Amount) (JoinClubResult, error) {
	club, err := s.repo.GetByIDForUpdate(ctx, db, clubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			return joinClubFailureResult(clubID, account, err), nil
		}
		return JoinClubResult{}, fmt.Errorf("failed to load club: %w", err)
	}

	member, err := club.Join(account, kind, paidPenalty, s.clock.NowUTC())
	if err != nil {
		return joinClubFailureResult(clubID, account, err), nil
	}

	if err := s.repo.Save(ctx, db, club); err != nil {
		return JoinClubResult{}, fmt.Errorf("failed to persist club: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordMemberJoined(ctx, clubID.String())
		if club.Phase == clubdomain.PhaseInProgress {
			s.metrics.RecordPhaseTransition(ctx, clubID.String(), string(club.Phase))
		}
	}

	payload := clubevents.ClubMemberJoinedPayloadV1{
		ClubID:         clubID,
		Account:        account,
		AdmissionIndex: member.AdmissionIndex,
		MemberCount:    len(club.Members),
		MaxMembers:     club.Config.MaxMembers,
		Phase:          string(club.Phase),
	}
	return JoinClubResult{Success: &payload}, nil
}

// joinClubFailureResult is a helper to create standardized failure results.
func joinClubFailureResult(clubID uuid.UUID, account sharedtypes.AccountID, err error) JoinClubResult {
	return JoinClubResult{
		Failure: &clubevents.ClubJoinFailedPayloadV1{
			ClubID:  clubID,
			Account: account,
			Reason:  err.Error(),
			Code:    failureCode(err),
		},
	}
}
