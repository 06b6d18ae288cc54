package treasuryservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	treasurydb "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/repositories"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
	"github.com/osusu-club/osusu-service/internal/clock"
	treasurymetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/treasury"
)

var testNow = time.Date(2026, time.April, 5, 12, 0, 0, 0, time.UTC)

const (
	payeeAmina sharedtypes.AccountID = "acct-amina"
	payeeBisi  sharedtypes.AccountID = "acct-bisi"
)

func fixedClock(now time.Time) *clock.FakeClock {
	return &clock.FakeClock{
		NowFn:    func() time.Time { return now },
		NowUTCFn: func() time.Time { return now },
	}
}

func newTestSigner(t *testing.T) *treasurydomain.Signer {
	t.Helper()
	kp, err := nkeys.CreateAccount()
	require.NoError(t, err)
	seed, err := kp.Seed()
	require.NoError(t, err)
	signer, err := treasurydomain.NewSigner(string(seed))
	require.NoError(t, err)
	return signer
}

func newTestService(repo treasurydb.Repository, clubs *FakeClubReader, signer *treasurydomain.Signer, gateway SettlementGateway, clk clock.Clock) *TreasuryService {
	var clubRepo *FakeClubReader
	if clubs != nil {
		clubRepo = clubs
	} else {
		clubRepo = NewFakeClubReader()
	}
	return NewTreasuryService(
		repo,
		clubRepo,
		signer,
		gateway,
		clk,
		slog.Default(),
		treasurymetrics.NewNoop(),
		nil,
		nil,
	)
}

func pendingInstruction(clubID uuid.UUID) treasurytypes.TransferInstruction {
	return treasurytypes.TransferInstruction{
		ClubID:      clubID,
		Destination: payeeAmina,
		Amount:      10000,
		Kind:        treasurytypes.TransferKindPayout,
		Cycle:       1,
		IssuedAt:    testNow,
	}
}

func TestRecordTransfer(t *testing.T) {
	clubID := uuid.New()

	t.Run("fills identity, signs, and inserts", func(t *testing.T) {
		fakeRepo := NewFakeTransferRepo()
		signer := newTestSigner(t)
		service := newTestService(fakeRepo, nil, signer, nil, fixedClock(testNow))

		recorded, err := service.RecordTransfer(context.Background(), nil, pendingInstruction(clubID))
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, recorded.ID)
		assert.Equal(t, treasurytypes.TransferStatusPending, recorded.Status)
		assert.NotEmpty(t, recorded.Signature)
		assert.NoError(t, signer.Verify(recorded), "recorded instruction must verify against the signing key")

		require.Len(t, fakeRepo.Inserted, 1)
		assert.Equal(t, recorded, fakeRepo.Inserted[0])
		assert.Equal(t, []string{"Insert"}, fakeRepo.Trace())
	})

	t.Run("keeps a caller-assigned id", func(t *testing.T) {
		fakeRepo := NewFakeTransferRepo()
		service := newTestService(fakeRepo, nil, newTestSigner(t), nil, fixedClock(testNow))

		preset := pendingInstruction(clubID)
		preset.ID = uuid.MustParse("11111111-2222-3333-4444-555555555555")

		recorded, err := service.RecordTransfer(context.Background(), nil, preset)
		require.NoError(t, err)
		assert.Equal(t, preset.ID, recorded.ID)
	})

	t.Run("stamps issuance time from the clock when missing", func(t *testing.T) {
		fakeRepo := NewFakeTransferRepo()
		service := newTestService(fakeRepo, nil, newTestSigner(t), nil, fixedClock(testNow))

		blank := pendingInstruction(clubID)
		blank.IssuedAt = time.Time{}

		recorded, err := service.RecordTransfer(context.Background(), nil, blank)
		require.NoError(t, err)
		assert.True(t, recorded.IssuedAt.Equal(testNow))
	})

	t.Run("resets a smuggled status to pending", func(t *testing.T) {
		fakeRepo := NewFakeTransferRepo()
		service := newTestService(fakeRepo, nil, newTestSigner(t), nil, fixedClock(testNow))

		smuggled := pendingInstruction(clubID)
		smuggled.Status = treasurytypes.TransferStatusSettled

		recorded, err := service.RecordTransfer(context.Background(), nil, smuggled)
		require.NoError(t, err)
		assert.Equal(t, treasurytypes.TransferStatusPending, recorded.Status)
	})

	t.Run("insert failure aborts the recording", func(t *testing.T) {
		fakeRepo := NewFakeTransferRepo()
		fakeRepo.InsertFunc = func(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) error {
			return errors.New("connection reset")
		}
		service := newTestService(fakeRepo, nil, newTestSigner(t), nil, fixedClock(testNow))

		_, err := service.RecordTransfer(context.Background(), nil, pendingInstruction(clubID))
		assert.Error(t, err)
	})

	t.Run("works unsigned when no signer is configured", func(t *testing.T) {
		fakeRepo := NewFakeTransferRepo()
		service := newTestService(fakeRepo, nil, nil, nil, fixedClock(testNow))

		recorded, err := service.RecordTransfer(context.Background(), nil, pendingInstruction(clubID))
		require.NoError(t, err)
		assert.Empty(t, recorded.Signature)
	})
}
