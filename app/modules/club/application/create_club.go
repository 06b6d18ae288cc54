package clubservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
)

// CreateClub provisions a new club from decoded creation parameters and
// schedules its notification jobs.
func (s *ClubService) CreateClub(ctx context.Context, input clubtypes.CreateClubInput) (CreateClubResult, error) {
	createTx := func(ctx context.Context, db bun.IDB) (CreateClubResult, error) {
		return s.createClubLogic(ctx, db, input)
	}

	return withTelemetry(s, ctx, "CreateClub", input.Name, func(ctx context.Context) (CreateClubResult, error) {
		return runInTx(s, ctx, createTx)
	})
}

// createClubLogic contains the core logic.
func (s *ClubService) createClubLogic(ctx context.Context, db bun.IDB, input clubtypes.CreateClubInput) (CreateClubResult, error) {
	now := s.clock.NowUTC()

	interval := input.PayoutInterval
	if interval <= 0 && input.FirstPayoutPhrase != "" {
		parsed, err := s.parser.Parse(input.FirstPayoutPhrase, input.StartTime)
		if err != nil {
			return createClubFailureResult(input, fmt.Errorf("%w: %v", clubdomain.ErrInvalidConfig, err)), nil
		}
		interval = parsed
	}

	cfg := clubdomain.Config{
		Name:               input.Name,
		Description:        input.Description,
		Creator:            input.Creator,
		ContributionAmount: input.ContributionAmount,
		PenaltyAmount:      input.PenaltyAmount,
		MaxMembers:         input.MaxMembers,
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		PayoutInterval:     interval,
	}

	club, err := clubdomain.NewClub(uuid.New(), cfg, now)
	if err != nil {
		return createClubFailureResult(input, err), nil
	}

	if err := s.repo.Create(ctx, db, club); err != nil {
		return CreateClubResult{}, fmt.Errorf("failed to persist club: %w", err)
	}

	// A scheduling failure aborts the transaction; the stray job is harmless
	// because the workers treat a missing club as a clean skip.
	if s.scheduler != nil {
		if err := s.scheduler.ScheduleWithdrawalWindow(ctx, club.ID, club.WithdrawalStartTime); err != nil {
			return CreateClubResult{}, fmt.Errorf("failed to schedule withdrawal window job: %w", err)
		}
		if err := s.scheduler.ScheduleContributionReminder(ctx, club.ID, club.Config.StartTime); err != nil {
			return CreateClubResult{}, fmt.Errorf("failed to schedule contribution reminder job: %w", err)
		}
	}

	payload := clubevents.ClubCreatedPayloadV1{Club: club.Snapshot()}
	return CreateClubResult{Success: &payload}, nil
}

// createClubFailureResult is a helper to create standardized failure results.
func createClubFailureResult(input clubtypes.CreateClubInput, err error) CreateClubResult {
	return CreateClubResult{
		Failure: &clubevents.ClubCreationFailedPayloadV1{
			Name:    input.Name,
			Creator: input.Creator,
			Reason:  err.Error(),
			Code:    failureCode(err),
		},
	}
}
