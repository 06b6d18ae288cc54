package treasuryservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	treasuryevents "github.com/osusu-club/osusu-service/app/events/treasury"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	"github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/statements"
)

// ImportStatement parses an uploaded bank statement and reconciles its rows
// against the club's recorded transfers and expected member deposits. Nothing
// is persisted; the report is the product. The transaction only pins a
// consistent read of transfers and the member roster.
func (s *TreasuryService) ImportStatement(ctx context.Context, clubID uuid.UUID, filename, format string, content []byte) (ImportStatementResult, error) {
	importTx := func(ctx context.Context, db bun.IDB) (ImportStatementResult, error) {
		return s.importStatementLogic(ctx, db, clubID, filename, format, content)
	}

	return withTelemetry(s, ctx, "ImportStatement", clubID.String(), func(ctx context.Context) (ImportStatementResult, error) {
		return runInTx(s, ctx, importTx)
	})
}

// importStatementLogic contains the core logic.
func (s *TreasuryService) importStatementLogic(ctx context.Context, db bun.IDB, clubID uuid.UUID, filename, format string, content []byte) (ImportStatementResult, error) {
	detected := statements.DetectFormat(filename, format)
	parser, err := statements.ForFormat(detected)
	if err != nil {
		return importFailureResult(clubID, filename, err), nil
	}

	rows, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return importFailureResult(clubID, filename, err), nil
	}
	if len(rows) == 0 {
		return importFailureResult(clubID, filename, treasurydomain.ErrEmptyStatement), nil
	}

	if s.metrics != nil {
		s.metrics.RecordStatementImport(ctx, detected, len(rows))
	}

	club, err := s.clubs.GetByID(ctx, db, clubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			return importFailureResult(clubID, filename, err), nil
		}
		return ImportStatementResult{}, fmt.Errorf("failed to load club: %w", err)
	}

	transfers, err := s.repo.ListByClub(ctx, db, clubID)
	if err != nil {
		return ImportStatementResult{}, err
	}

	expectations := make([]treasurydomain.ContributionExpectation, 0, len(club.Members))
	for _, member := range club.Members {
		expectations = append(expectations, treasurydomain.ContributionExpectation{
			Account: member.Account,
			Amount:  club.Config.ContributionAmount,
		})
	}

	report := treasurydomain.Reconcile(clubID, rows, transfers, expectations)
	if s.metrics != nil {
		s.metrics.RecordReconciliation(ctx, len(report.Matched), len(report.AmountMismatches), len(report.Unmatched))
	}

	payload := treasuryevents.StatementReconciledPayloadV1{Report: report}
	return ImportStatementResult{Success: &payload}, nil
}

// importFailureResult is a helper to create standardized failure results.
func importFailureResult(clubID uuid.UUID, filename string, err error) ImportStatementResult {
	return ImportStatementResult{
		Failure: &treasuryevents.StatementImportFailedPayloadV1{
			ClubID:   clubID,
			Filename: filename,
			Reason:   err.Error(),
			Code:     failureCode(err),
		},
	}
}
