package treasuryservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

const statementHeaderLine = "reference,account,amount,direction,posted_at,description"

// importClub is a two-member club whose roster backs the deposit expectations,
// built through the domain so the fixture stays honest about admission rules.
func importClub(t *testing.T, id uuid.UUID) *clubdomain.Club {
	t.Helper()
	club, err := clubdomain.NewClub(id, clubdomain.Config{
		Name:               "Market Women Circle",
		Creator:            "acct-creator",
		ContributionAmount: 5000,
		PenaltyAmount:      500,
		MaxMembers:         2,
		StartTime:          testNow.Add(-48 * time.Hour),
		EndTime:            testNow.Add(7 * 24 * time.Hour),
		PayoutInterval:     24 * time.Hour,
	}, testNow.Add(-72*time.Hour))
	require.NoError(t, err)
	for _, account := range []sharedtypes.AccountID{payeeAmina, payeeBisi} {
		_, err := club.Join(account, sharedtypes.AccountKindIndividual, 500, testNow.Add(-40*time.Hour))
		require.NoError(t, err)
	}
	return club
}

func TestImportStatement(t *testing.T) {
	clubID := uuid.New()
	transferID := uuid.New()

	recordedTransfer := treasurytypes.TransferInstruction{
		ID:          transferID,
		ClubID:      clubID,
		Destination: payeeAmina,
		Amount:      10000,
		Kind:        treasurytypes.TransferKindPayout,
		Cycle:       1,
		IssuedAt:    testNow,
		Status:      treasurytypes.TransferStatusSubmitted,
	}

	statement := func(lines ...string) []byte {
		return []byte(strings.Join(append([]string{statementHeaderLine}, lines...), "\n") + "\n")
	}

	fullStatement := statement(
		fmt.Sprintf("%s,acct-amina,10000,debit,2026-04-05T12:00:00Z,cycle 1 payout", transferID),
		"BNK-001,acct-amina,5000,credit,2026-04-01T09:00:00Z,weekly deposit",
		"BNK-002,acct-bisi,5000,credit,2026-04-02T09:00:00Z,weekly deposit",
	)

	tests := []struct {
		name           string
		filename       string
		format         string
		content        []byte
		setupRepo      func(*FakeTransferRepo)
		setupClubs     func(*FakeClubReader)
		wantErr        bool
		wantCode       string
		wantMatched    int
		wantMismatched int
		wantUnmatched  int
	}{
		{
			name:     "happy path - statement fully reconciled",
			filename: "april.csv",
			content:  fullStatement,
			setupRepo: func(f *FakeTransferRepo) {
				f.ListByClubFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) ([]treasurytypes.TransferInstruction, error) {
					return []treasurytypes.TransferInstruction{recordedTransfer}, nil
				}
			},
			setupClubs: func(f *FakeClubReader) {
				f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*clubdomain.Club, error) {
					return importClub(t, clubID), nil
				}
			},
			wantMatched: 3,
		},
		{
			name:     "short deposit lands in amount mismatches",
			filename: "april.csv",
			content: statement(
				"BNK-001,acct-amina,4000,credit,2026-04-01T09:00:00Z,short deposit",
			),
			setupRepo: func(f *FakeTransferRepo) {},
			setupClubs: func(f *FakeClubReader) {
				f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*clubdomain.Club, error) {
					return importClub(t, clubID), nil
				}
			},
			wantMismatched: 1,
		},
		{
			name:     "stranger deposit is unmatched",
			filename: "april.csv",
			content: statement(
				"BNK-009,acct-zara,5000,credit,2026-04-01T09:00:00Z,who is this",
			),
			setupRepo: func(f *FakeTransferRepo) {},
			setupClubs: func(f *FakeClubReader) {
				f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*clubdomain.Club, error) {
					return importClub(t, clubID), nil
				}
			},
			wantUnmatched: 1,
		},
		{
			name:     "unknown format",
			filename: "april.pdf",
			content:  fullStatement,
			wantCode: CodeUnknownFormat,
		},
		{
			name:     "format hint wins over the filename",
			filename: "april.csv",
			format:   "pdf",
			content:  fullStatement,
			wantCode: CodeUnknownFormat,
		},
		{
			name:     "malformed statement",
			filename: "april.csv",
			content: statement(
				"BNK-001,acct-amina,not-a-number,credit,2026-04-01T09:00:00Z,weekly deposit",
			),
			wantCode: CodeMalformedStatement,
		},
		{
			name:     "statement with no rows",
			filename: "april.csv",
			content:  statement(),
			wantCode: CodeEmptyStatement,
		},
		{
			name:     "club not found",
			filename: "april.csv",
			content:  fullStatement,
			wantCode: CodeClubNotFound,
		},
		{
			name:     "database error loading club",
			filename: "april.csv",
			content:  fullStatement,
			setupClubs: func(f *FakeClubReader) {
				f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*clubdomain.Club, error) {
					return nil, errors.New("database connection failed")
				}
			},
			wantErr: true,
		},
		{
			name:     "database error listing transfers",
			filename: "april.csv",
			content:  fullStatement,
			setupRepo: func(f *FakeTransferRepo) {
				f.ListByClubFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) ([]treasurytypes.TransferInstruction, error) {
					return nil, errors.New("database connection failed")
				}
			},
			setupClubs: func(f *FakeClubReader) {
				f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*clubdomain.Club, error) {
					return importClub(t, clubID), nil
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeTransferRepo()
			if tt.setupRepo != nil {
				tt.setupRepo(fakeRepo)
			}
			fakeClubs := NewFakeClubReader()
			if tt.setupClubs != nil {
				tt.setupClubs(fakeClubs)
			}

			svc := newTestService(fakeRepo, fakeClubs, nil, nil, fixedClock(testNow))

			result, err := svc.ImportStatement(context.Background(), clubID, tt.filename, tt.format, tt.content)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)

			if tt.wantCode != "" {
				if assert.NotNil(t, result.Failure) {
					assert.Equal(t, tt.wantCode, result.Failure.Code)
					assert.Equal(t, clubID, result.Failure.ClubID)
					assert.Equal(t, tt.filename, result.Failure.Filename)
					assert.NotEmpty(t, result.Failure.Reason)
				}
				if tt.wantCode != CodeClubNotFound {
					assert.Empty(t, fakeClubs.Trace(), "a statement that never parsed must not hit the database")
					assert.Empty(t, fakeRepo.Trace())
				}
				return
			}

			if assert.NotNil(t, result.Success) {
				report := result.Success.Report
				assert.Equal(t, clubID, report.ClubID)
				assert.Len(t, report.Matched, tt.wantMatched)
				assert.Len(t, report.AmountMismatches, tt.wantMismatched)
				assert.Len(t, report.Unmatched, tt.wantUnmatched)
			}
			assert.Equal(t, []string{"GetByID"}, fakeClubs.Trace())
			assert.Equal(t, []string{"ListByClub"}, fakeRepo.Trace())
		})
	}
}

// TestImportStatementExpectations pins where deposit expectations come from:
// one per rostered member, each at the club's configured contribution amount.
func TestImportStatementExpectations(t *testing.T) {
	clubID := uuid.New()

	fakeRepo := NewFakeTransferRepo()
	fakeClubs := NewFakeClubReader()
	fakeClubs.GetByIDFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*clubdomain.Club, error) {
		return importClub(t, clubID), nil
	}

	svc := newTestService(fakeRepo, fakeClubs, nil, nil, fixedClock(testNow))

	content := []byte(statementHeaderLine + "\n" +
		"BNK-001,acct-amina,5000,credit,2026-04-01T09:00:00Z,deposit\n" +
		"BNK-002,acct-amina,5000,credit,2026-04-08T09:00:00Z,second deposit\n")

	result, err := svc.ImportStatement(context.Background(), clubID, "april.csv", "", content)
	require.NoError(t, err)
	require.NotNil(t, result.Success)

	report := result.Success.Report
	if assert.Len(t, report.Matched, 1) {
		assert.Equal(t, payeeAmina, report.Matched[0].Row.Account)
		assert.Equal(t, sharedtypes.Amount(5000), report.Matched[0].Expected)
		assert.Equal(t, uuid.Nil, report.Matched[0].TransferID, "deposits match expectations, not transfers")
	}
	if assert.Len(t, report.Unmatched, 1) {
		assert.Equal(t, "BNK-002", report.Unmatched[0].Reference, "each member expectation is consumed once")
	}
}
