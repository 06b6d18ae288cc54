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
)

// earlyContributedClub is fully contributed but its withdrawal start time is
// still almost a day away.
func earlyContributedClub(t *testing.T, id uuid.UUID, now time.Time) *clubdomain.Club {
	t.Helper()
	club, err := clubdomain.NewClub(id, clubdomain.Config{
		Name:               "Market Women Circle",
		Creator:            creatorAccount,
		ContributionAmount: 5000,
		PenaltyAmount:      500,
		MaxMembers:         2,
		StartTime:          now.Add(-2 * time.Hour),
		EndTime:            now.Add(7 * 24 * time.Hour),
		PayoutInterval:     24 * time.Hour,
	}, now.Add(-3*time.Hour))
	if err != nil {
		t.Fatalf("building early club fixture: %v", err)
	}
	for _, account := range []sharedtypes.AccountID{memberAmina, memberBisi} {
		if _, err := club.Join(account, sharedtypes.AccountKindIndividual, 500, now.Add(-time.Hour)); err != nil {
			t.Fatalf("admitting %s: %v", account, err)
		}
	}
	for _, account := range []sharedtypes.AccountID{memberAmina, memberBisi} {
		if err := club.Contribute(account, 5000, now.Add(-30*time.Minute)); err != nil {
			t.Fatalf("recording contribution for %s: %v", account, err)
		}
	}
	return club
}

func TestOpenWithdrawals(t *testing.T) {
	testID := uuid.New()

	tests := []struct {
		name        string
		setupRepo   func(*FakeClubRepo)
		setupSched  func(*FakeScheduler)
		caller      sharedtypes.AccountID
		wantErr     bool
		wantCode    string
		wantSchedAt time.Time
	}{
		{
			name: "happy path",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return readyClub(t, testID, testNow), nil
				}
			},
			caller: creatorAccount,
			// withdrawal start was a day ago, so the next window lands now
			wantSchedAt: testNow,
		},
		{
			name: "only the creator may open",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return readyClub(t, testID, testNow), nil
				}
			},
			caller:   memberAmina,
			wantCode: CodeUnauthorized,
		},
		{
			name: "latch is one-shot",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return pendingClub(t, testID, testNow), nil
				}
			},
			caller:   creatorAccount,
			wantCode: CodeWithdrawalsAlreadyOpen,
		},
		{
			name: "contributions incomplete",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return collectingClub(t, testID, testNow), nil
				}
			},
			caller:   creatorAccount,
			wantCode: CodeContributionsIncomplete,
		},
		{
			name: "withdrawal start still in the future",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return earlyContributedClub(t, testID, testNow), nil
				}
			},
			caller:   creatorAccount,
			wantCode: CodeWithdrawalsNotDue,
		},
		{
			name: "club not found",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return nil, clubdb.ErrNotFound
				}
			},
			caller:   creatorAccount,
			wantCode: CodeNotFound,
		},
		{
			name: "database error on save",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return readyClub(t, testID, testNow), nil
				}
				f.SaveFunc = func(ctx context.Context, db bun.IDB, club *clubdomain.Club) error {
					return errors.New("database connection failed")
				}
			},
			caller:  creatorAccount,
			wantErr: true,
		},
		{
			name: "scheduler rejects the window job",
			setupRepo: func(f *FakeClubRepo) {
				f.GetByIDForUpdateFunc = func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
					return readyClub(t, testID, testNow), nil
				}
			},
			setupSched: func(f *FakeScheduler) {
				f.ScheduleWithdrawalWindowFunc = func(ctx context.Context, clubID uuid.UUID, openAt time.Time) error {
					return errors.New("queue unavailable")
				}
			},
			caller:  creatorAccount,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeClubRepo()
			tt.setupRepo(fakeRepo)

			fakeSched := NewFakeScheduler()
			if tt.setupSched != nil {
				tt.setupSched(fakeSched)
			}

			var scheduledAt time.Time
			if tt.setupSched == nil {
				fakeSched.ScheduleWithdrawalWindowFunc = func(ctx context.Context, clubID uuid.UUID, openAt time.Time) error {
					scheduledAt = openAt
					return nil
				}
			}

			svc := newTestService(fakeRepo, nil, fakeSched, fixedClock(testNow))

			result, err := svc.OpenWithdrawals(context.Background(), testID, tt.caller)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)

			if tt.wantCode != "" {
				if assert.NotNil(t, result.Failure) {
					assert.Equal(t, tt.wantCode, result.Failure.Code)
					assert.Equal(t, tt.caller, result.Failure.Caller)
				}
				assert.NotContains(t, fakeRepo.Trace(), "Save", "rejected open must not persist")
				assert.Empty(t, fakeSched.Trace(), "rejected open must not enqueue jobs")
				return
			}

			if assert.NotNil(t, result.Success) {
				assert.Equal(t, testID, result.Success.ClubID)
				assert.Equal(t, string(clubdomain.PhasePending), result.Success.Phase)
				assert.Equal(t, sharedtypes.Amount(10000), result.Success.TotalContributions)
				assert.Equal(t, tt.wantSchedAt, result.Success.NextWithdrawalTime)
			}
			assert.Equal(t, []string{"GetByIDForUpdate", "Save"}, fakeRepo.Trace())
			assert.Equal(t, []string{"ScheduleWithdrawalWindow"}, fakeSched.Trace())
			assert.Equal(t, tt.wantSchedAt, scheduledAt)
		})
	}
}
