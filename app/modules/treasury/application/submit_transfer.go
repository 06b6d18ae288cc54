package treasuryservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	treasuryevents "github.com/osusu-club/osusu-service/app/events/treasury"
	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	treasurydb "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/repositories"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// SubmitTransfer hands a pending instruction to the settlement gateway and
// advances its status. The row lock serializes concurrent submissions of the
// same instruction; a redelivered event finds the status already moved and
// stops at the pending guard.
func (s *TreasuryService) SubmitTransfer(ctx context.Context, transferID uuid.UUID) (SubmitTransferResult, error) {
	submitTx := func(ctx context.Context, db bun.IDB) (SubmitTransferResult, error) {
		return s.submitTransferLogic(ctx, db, transferID)
	}

	return withTelemetry(s, ctx, "SubmitTransfer", transferID.String(), func(ctx context.Context) (SubmitTransferResult, error) {
		return runInTx(s, ctx, submitTx)
	})
}

// submitTransferLogic contains the core logic.
func (s *TreasuryService) submitTransferLogic(ctx context.Context, db bun.IDB, transferID uuid.UUID) (SubmitTransferResult, error) {
	instruction, err := s.repo.GetByIDForUpdate(ctx, db, transferID)
	if err != nil {
		if errors.Is(err, treasurydb.ErrNotFound) {
			return submitFailureResult(transferID, uuid.Nil, err), nil
		}
		return SubmitTransferResult{}, fmt.Errorf("failed to load transfer: %w", err)
	}

	if instruction.Status != treasurytypes.TransferStatusPending {
		return submitFailureResult(transferID, instruction.ClubID, treasurydomain.ErrNotPending), nil
	}

	if s.gateway == nil {
		return submitFailureResult(transferID, instruction.ClubID, ErrSettlementDisabled), nil
	}

	if err := s.gateway.Submit(ctx, instruction); err != nil {
		if errors.Is(err, treasurydomain.ErrSubmissionRejected) {
			if updErr := s.repo.UpdateStatus(ctx, db, transferID, treasurytypes.TransferStatusFailed); updErr != nil {
				return SubmitTransferResult{}, fmt.Errorf("failed to mark transfer failed: %w", updErr)
			}
			return submitFailureResult(transferID, instruction.ClubID, err), nil
		}
		// Transient: the transfer stays pending and the event is retried.
		return SubmitTransferResult{}, fmt.Errorf("failed to submit transfer: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, db, transferID, treasurytypes.TransferStatusSubmitted); err != nil {
		return SubmitTransferResult{}, fmt.Errorf("failed to mark transfer submitted: %w", err)
	}

	payload := treasuryevents.TransferSubmittedPayloadV1{
		TransferID: transferID,
		ClubID:     instruction.ClubID,
		Status:     treasurytypes.TransferStatusSubmitted,
	}
	return SubmitTransferResult{Success: &payload}, nil
}

// submitFailureResult is a helper to create standardized failure results.
func submitFailureResult(transferID, clubID uuid.UUID, err error) SubmitTransferResult {
	return SubmitTransferResult{
		Failure: &treasuryevents.TransferSubmitFailedPayloadV1{
			TransferID: transferID,
			ClubID:     clubID,
			Reason:     err.Error(),
			Code:       failureCode(err),
		},
	}
}
