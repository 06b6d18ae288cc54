package clubservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"

	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
	"github.com/osusu-club/osusu-service/internal/clock"
)

func TestWithdraw(t *testing.T) {
	testID := uuid.New()

	tests := []struct {
		name        string
		setupRepo   func(*FakeClubRepo)
		account     sharedtypes.AccountID
		opNow       time.Time
		nilTreasury bool
		recordErr   error
		wantErr     bool
		wantCode    string
	}{
		{
			name: "happy path - first claim",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return pendingClub(t, testID, testNow), nil
				}
			},
			account: memberAmina,
		},
		{
			name: "claim after the end time",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return pendingClub(t, testID, testNow), nil
				}
			},
			account:  memberAmina,
			opNow:    testNow.Add(8 * 24 * time.Hour),
			wantCode: CodeAlreadyFinalized,
		},
		{
			name: "claim before the interval elapsed",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					club := pendingClub(t, testID, testNow)
					if _, err := club.Withdraw(memberBisi, testNow.Add(-time.Hour)); err != nil {
						t.Fatalf("seeding prior claim: %v", err)
					}
					return club, nil
				}
			},
			account:  memberAmina,
			wantCode: CodeWithdrawalTooSoon,
		},
		{
			name: "withdrawal phase not open",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return readyClub(t, testID, testNow), nil
				}
			},
			account:  memberAmina,
			wantCode: CodeWithdrawalsNotOpen,
		},
		{
			name: "non-member rejected",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return pendingClub(t, testID, testNow), nil
				}
			},
			account:  "acct-zara",
			wantCode: CodeNotMember,
		},
		{
			name: "non-contributor rejected",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					club := pendingClub(t, testID, testNow)
					club.Members[0].ContributedAt = nil
					return club, nil
				}
			},
			account:  memberAmina,
			wantCode: CodeNotContributor,
		},
		{
			name: "double claim rejected",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					club := pendingClub(t, testID, testNow)
					if _, err := club.Withdraw(memberAmina, testNow.Add(-24*time.Hour)); err != nil {
						t.Fatalf("seeding prior claim: %v", err)
					}
					return club, nil
				}
			},
			account:  memberAmina,
			wantCode: CodeAlreadyWithdrawn,
		},
		{
			name: "club not found",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return nil, clubdb.ErrNotFound
				}
			},
			account:  memberAmina,
			wantCode: CodeNotFound,
		},
		{
			name: "transfer recorder not wired",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return pendingClub(t, testID, testNow), nil
				}
			},
			account:     memberAmina,
			nilTreasury: true,
			wantErr:     true,
		},
		{
			name: "transfer recording fails",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return pendingClub(t, testID, testNow), nil
				}
			},
			account:   memberAmina,
			recordErr: errors.New("treasury insert failed"),
			wantErr:   true,
		},
		{
			name: "database error on save",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return pendingClub(t, testID, testNow), nil
				}
				f.SaveFunc = func(ctx context.Context, db bun.IDB, club *clubdomain.Club) error {
					return errors.New("database connection failed")
				}
			},
			account: memberAmina,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeClubRepo()
			tt.setupRepo(fakeRepo)

			fakeTreasury := NewFakeTransferRecorder()
			if tt.recordErr != nil {
				fakeTreasury.RecordTransferFunc = func(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) (treasurytypes.TransferInstruction, error) {
					return treasurytypes.TransferInstruction{}, tt.recordErr
				}
			}

			var treasury TransferRecorder = fakeTreasury
			if tt.nilTreasury {
				treasury = nil
			}

			opNow := tt.opNow
			if opNow.IsZero() {
				opNow = testNow
			}

			svc := newTestService(fakeRepo, treasury, nil, fixedClock(opNow))

			result, err := svc.Withdraw(context.Background(), testID, tt.account)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.recordErr != nil {
					assert.NotContains(t, fakeRepo.Trace(), "Save", "failed recording must abort before persisting")
				}
				return
			}
			assert.NoError(t, err)

			if tt.wantCode != "" {
				if assert.NotNil(t, result.Failure) {
					assert.Equal(t, tt.wantCode, result.Failure.Code)
					assert.Equal(t, tt.account, result.Failure.Account)
				}
				assert.NotContains(t, fakeRepo.Trace(), "Save", "rejected claim must not persist")
				assert.Empty(t, fakeTreasury.Trace(), "rejected claim must not reach the treasury")
				return
			}

			if assert.NotNil(t, result.Success) {
				assert.Equal(t, testID, result.Success.ClubID)
				assert.Equal(t, tt.account, result.Success.Account)
				assert.Equal(t, sharedtypes.Amount(10000), result.Success.Amount)
				assert.Equal(t, 1, result.Success.Cycle)
				assert.False(t, result.Success.CycleCompleted)
				assert.Equal(t, string(clubdomain.PhasePending), result.Success.Phase)
				assert.NotEqual(t, uuid.Nil, result.Success.TransferID)
				if assert.NotNil(t, result.Success.Instruction) {
					assert.Equal(t, result.Success.TransferID, result.Success.Instruction.ID)
					assert.Equal(t, tt.account, result.Success.Instruction.Destination)
					assert.Equal(t, treasurytypes.TransferKindPayout, result.Success.Instruction.Kind)
				}
			}
			assert.Equal(t, []string{"GetByIDForUpdate", "Save"}, fakeRepo.Trace())
			if assert.Len(t, fakeTreasury.Recorded, 1) {
				assert.Equal(t, sharedtypes.Amount(10000), fakeTreasury.Recorded[0].Amount)
			}
		})
	}
}

// TestWithdrawCompletesCycle runs both members through the rotation against a
// shared aggregate and checks that the final claim completes the cycle.
func TestWithdrawCompletesCycle(t *testing.T) {
	testID := uuid.New()
	club := pendingClub(t, testID, testNow)

	fakeRepo := NewFakeClubRepo()
	fakeRepo.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
		return club, nil
	}

	fakeTreasury := NewFakeTransferRecorder()

	now := testNow
	clk := &clock.FakeClock{
		NowFn:    func() time.Time { return now },
		NowUTCFn: func() time.Time { return now },
	}

	svc := newTestService(fakeRepo, fakeTreasury, nil, clk)

	first, err := svc.Withdraw(context.Background(), testID, memberAmina)
	assert.NoError(t, err)
	if assert.NotNil(t, first.Success) {
		assert.False(t, first.Success.CycleCompleted)
		assert.Equal(t, string(clubdomain.PhasePending), first.Success.Phase)
		assert.Equal(t, sharedtypes.Amount(10000), first.Success.Amount)
	}

	// the second claimant has to wait out the payout interval
	now = now.Add(24 * time.Hour)

	second, err := svc.Withdraw(context.Background(), testID, memberBisi)
	assert.NoError(t, err)
	if assert.NotNil(t, second.Success) {
		assert.True(t, second.Success.CycleCompleted)
		assert.Equal(t, string(clubdomain.PhaseCompleted), second.Success.Phase)
		assert.Equal(t, sharedtypes.Amount(10000), second.Success.Amount, "each claim is authorized for the whole pool")
	}

	assert.Len(t, fakeTreasury.Recorded, 2)
	if assert.Len(t, club.CompletedCycles, 1) {
		assert.Equal(t, 1, club.CompletedCycles[0].Cycle)
		assert.Equal(t, []sharedtypes.AccountID{memberAmina, memberBisi}, club.CompletedCycles[0].AccountsPaid)
	}
}
