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
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// Withdraw settles one member's claim on the pool. The treasury records the
// transfer inside the same transaction, so either the claim is consumed and
// the instruction exists, or neither happened.
func (s *ClubService) Withdraw(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID) (WithdrawResult, error) {
	withdrawTx := func(ctx context.Context, db bun.IDB) (WithdrawResult, error) {
		return s.withdrawLogic(ctx, db, clubID, account)
	}

	return withTelemetry(s, ctx, "Withdraw", clubID.String(), func(ctx context.Context) (WithdrawResult, error) {
		return runInTx(s, ctx, withdrawTx)
	})
}

// withdrawLogic contains the core logic.
func (s *ClubService) withdrawLogic(ctx context.Context, db bun.IDB, clubID uuid.UUID, account sharedtypes.AccountID) (WithdrawResult, error) {
	club, err := s.repo.GetByIDForUpdate(ctx, db, clubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			return withdrawFailureResult(clubID, account, err), nil
		}
		return WithdrawResult{}, fmt.Errorf("failed to load club: %w", err)
	}

	payout, err := club.Withdraw(account, s.clock.NowUTC())
	if err != nil {
		return withdrawFailureResult(clubID, account, err), nil
	}

	if s.treasury == nil {
		return WithdrawResult{}, errors.New("transfer recorder not configured")
	}

	instruction := treasurytypes.TransferInstruction{
		ClubID:      clubID,
		Destination: payout.Destination,
		Amount:      payout.Amount,
		Kind:        treasurytypes.TransferKindPayout,
		Cycle:       payout.Cycle,
		IssuedAt:    payout.AuthorizedAt,
	}
	recorded, err := s.treasury.RecordTransfer(ctx, db, instruction)
	if err != nil {
		return WithdrawResult{}, fmt.Errorf("failed to record transfer: %w", err)
	}

	if err := s.repo.Save(ctx, db, club); err != nil {
		return WithdrawResult{}, fmt.Errorf("failed to persist club: %w", err)
	}

	cycleCompleted := club.Phase == clubdomain.PhaseCompleted
	if s.metrics != nil {
		s.metrics.RecordWithdrawal(ctx, clubID.String(), int64(payout.Amount))
		if cycleCompleted {
			s.metrics.RecordPhaseTransition(ctx, clubID.String(), string(club.Phase))
		}
	}

	payload := clubevents.ClubWithdrawalSettledPayloadV1{
		ClubID:         clubID,
		Account:        account,
		Amount:         payout.Amount,
		Cycle:          payout.Cycle,
		TransferID:     recorded.ID,
		CycleCompleted: cycleCompleted,
		Phase:          string(club.Phase),
		Instruction:    &recorded,
	}
	return WithdrawResult{Success: &payload}, nil
}

// withdrawFailureResult is a helper to create standardized failure results.
func withdrawFailureResult(clubID uuid.UUID, account sharedtypes.AccountID, err error) WithdrawResult {
	return WithdrawResult{
		Failure: &clubevents.ClubWithdrawFailedPayloadV1{
			ClubID:  clubID,
			Account: account,
			Reason:  err.Error(),
			Code:    failureCode(err),
		},
	}
}
