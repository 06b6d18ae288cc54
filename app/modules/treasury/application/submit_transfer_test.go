package treasuryservice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"

	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

func TestSubmitTransfer(t *testing.T) {
	transferID := uuid.New()
	clubID := uuid.New()

	storedInstruction := func(status treasurytypes.TransferStatus) treasurytypes.TransferInstruction {
		instruction := pendingInstruction(clubID)
		instruction.ID = transferID
		instruction.Status = status
		return instruction
	}

	tests := []struct {
		name        string
		setupRepo   func(*FakeTransferRepo)
		gatewayErr  error
		nilGateway  bool
		wantErr     bool
		wantCode    string
		wantClubID  uuid.UUID
		wantStatus  treasurytypes.TransferStatus
		wantSubmits int
	}{
		{
			name: "happy path - pending instruction reaches the gateway",
			setupRepo: func(f *FakeTransferRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
					return storedInstruction(treasurytypes.TransferStatusPending), nil
				}
			},
			wantStatus:  treasurytypes.TransferStatusSubmitted,
			wantSubmits: 1,
		},
		{
			name:       "transfer not found",
			setupRepo:  func(f *FakeTransferRepo) {},
			wantCode:   CodeNotFound,
			wantClubID: uuid.Nil,
		},
		{
			name: "redelivered event finds the status already moved",
			setupRepo: func(f *FakeTransferRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
					return storedInstruction(treasurytypes.TransferStatusSubmitted), nil
				}
			},
			wantCode:   CodeNotPending,
			wantClubID: clubID,
		},
		{
			name: "failed transfer is not resubmitted",
			setupRepo: func(f *FakeTransferRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
					return storedInstruction(treasurytypes.TransferStatusFailed), nil
				}
			},
			wantCode:   CodeNotPending,
			wantClubID: clubID,
		},
		{
			name: "gateway not wired",
			setupRepo: func(f *FakeTransferRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
					return storedInstruction(treasurytypes.TransferStatusPending), nil
				}
			},
			nilGateway: true,
			wantCode:   CodeSettlementDisabled,
			wantClubID: clubID,
		},
		{
			name: "provider rejection marks the transfer failed",
			setupRepo: func(f *FakeTransferRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
					return storedInstruction(treasurytypes.TransferStatusPending), nil
				}
			},
			gatewayErr:  fmt.Errorf("%w: 422 Unprocessable Entity: destination account closed", treasurydomain.ErrSubmissionRejected),
			wantCode:    CodeSettlementRejected,
			wantClubID:  clubID,
			wantStatus:  treasurytypes.TransferStatusFailed,
			wantSubmits: 1,
		},
		{
			name: "transient gateway error leaves the transfer pending",
			setupRepo: func(f *FakeTransferRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
					return storedInstruction(treasurytypes.TransferStatusPending), nil
				}
			},
			gatewayErr:  errors.New("gateway timeout"),
			wantErr:     true,
			wantSubmits: 1,
		},
		{
			name: "database error on load",
			setupRepo: func(f *FakeTransferRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
					return treasurytypes.TransferInstruction{}, errors.New("database connection failed")
				}
			},
			wantErr: true,
		},
		{
			name: "database error marking submitted",
			setupRepo: func(f *FakeTransferRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
					return storedInstruction(treasurytypes.TransferStatusPending), nil
				}
				f.UpdateStatusFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID, status treasurytypes.TransferStatus) error {
					return errors.New("database connection failed")
				}
			},
			wantErr:     true,
			wantSubmits: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeTransferRepo()
			tt.setupRepo(fakeRepo)

			fakeGateway := NewFakeGateway()
			if tt.gatewayErr != nil {
				fakeGateway.SubmitFunc = func(ctx context.Context, instruction treasurytypes.TransferInstruction) error {
					return tt.gatewayErr
				}
			}

			var gateway SettlementGateway = fakeGateway
			if tt.nilGateway {
				gateway = nil
			}

			svc := newTestService(fakeRepo, nil, nil, gateway, fixedClock(testNow))

			result, err := svc.SubmitTransfer(context.Background(), transferID)

			assert.Len(t, fakeGateway.Trace(), tt.wantSubmits)
			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, fakeRepo.Statuses[transferID])
			} else {
				assert.NotContains(t, fakeRepo.Statuses, transferID, "status must not move")
			}

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)

			if tt.wantCode != "" {
				if assert.NotNil(t, result.Failure) {
					assert.Equal(t, tt.wantCode, result.Failure.Code)
					assert.Equal(t, transferID, result.Failure.TransferID)
					assert.Equal(t, tt.wantClubID, result.Failure.ClubID)
					assert.NotEmpty(t, result.Failure.Reason)
				}
				return
			}

			if assert.NotNil(t, result.Success) {
				assert.Equal(t, transferID, result.Success.TransferID)
				assert.Equal(t, clubID, result.Success.ClubID)
				assert.Equal(t, treasurytypes.TransferStatusSubmitted, result.Success.Status)
			}
			if assert.Len(t, fakeGateway.Submitted, 1) {
				assert.Equal(t, transferID, fakeGateway.Submitted[0].ID, "the gateway must see the stored instruction")
			}
			assert.Equal(t, []string{"GetByIDForUpdate", "UpdateStatus"}, fakeRepo.Trace())
		})
	}
}

// TestSubmitTransferTransientKeepsStatus pins the retry contract. A transient
// gateway error surfaces as an error with no status write, so the event bus
// redelivers and the next attempt finds the row still pending.
func TestSubmitTransferTransientKeepsStatus(t *testing.T) {
	transferID := uuid.New()
	clubID := uuid.New()

	fakeRepo := NewFakeTransferRepo()
	fakeRepo.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
		instruction := pendingInstruction(clubID)
		instruction.ID = transferID
		instruction.Status = treasurytypes.TransferStatusPending
		return instruction, nil
	}

	fakeGateway := NewFakeGateway()
	attempts := 0
	fakeGateway.SubmitFunc = func(ctx context.Context, instruction treasurytypes.TransferInstruction) error {
		attempts++
		if attempts == 1 {
			return errors.New("gateway timeout")
		}
		return nil
	}

	svc := newTestService(fakeRepo, nil, nil, fakeGateway, fixedClock(testNow))

	_, err := svc.SubmitTransfer(context.Background(), transferID)
	assert.Error(t, err)
	assert.NotContains(t, fakeRepo.Statuses, transferID)

	result, err := svc.SubmitTransfer(context.Background(), transferID)
	assert.NoError(t, err)
	if assert.NotNil(t, result.Success) {
		assert.Equal(t, treasurytypes.TransferStatusSubmitted, result.Success.Status)
	}
	assert.Equal(t, treasurytypes.TransferStatusSubmitted, fakeRepo.Statuses[transferID])
	assert.Equal(t, 2, attempts)
}
