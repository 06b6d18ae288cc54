package clubservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
)

// GetClub serves the read-only snapshot projection of a club.
func (s *ClubService) GetClub(ctx context.Context, clubID uuid.UUID) (GetClubResult, error) {
	getTx := func(ctx context.Context, db bun.IDB) (GetClubResult, error) {
		return s.getClubLogic(ctx, db, clubID)
	}

	return withTelemetry(s, ctx, "GetClub", clubID.String(), func(ctx context.Context) (GetClubResult, error) {
		return runInTx(s, ctx, getTx)
	})
}

// getClubLogic contains the core logic.
func (s *ClubService) getClubLogic(ctx context.Context, db bun.IDB, clubID uuid.UUID) (GetClubResult, error) {
	club, err := s.repo.GetByID(ctx, db, clubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			return GetClubResult{
				Failure: &clubevents.ClubGetFailedPayloadV1{
					ClubID: clubID,
					Reason: err.Error(),
					Code:   failureCode(err),
				},
			}, nil
		}
		return GetClubResult{}, fmt.Errorf("failed to get club: %w", err)
	}

	payload := clubevents.ClubGetResponsePayloadV1{Club: club.Snapshot()}
	return GetClubResult{Success: &payload}, nil
}
