package treasurydomain

import (
	"github.com/google/uuid"

	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// ContributionExpectation is the deposit reconciliation expects from one
// member account over the statement period.
type ContributionExpectation struct {
	Account sharedtypes.AccountID
	Amount  sharedtypes.Amount
}

// Reconcile matches imported statement rows against recorded transfers and
// contribution expectations.
//
// Debit rows carry money out of the pool, so they must reference a recorded
// transfer: the row's reference field holds the instruction id. Credit rows
// carry member deposits in and are matched to the expectation for the row's
// account. Each transfer and each expectation is consumed at most once, so a
// duplicated bank row surfaces as unmatched instead of hiding behind its
// twin. Report entries keep the statement's row order.
func Reconcile(
	clubID uuid.UUID,
	rows []treasurytypes.StatementRow,
	transfers []treasurytypes.TransferInstruction,
	expectations []ContributionExpectation,
) treasurytypes.ReconciliationReport {
	report := treasurytypes.ReconciliationReport{ClubID: clubID}

	byID := make(map[uuid.UUID]treasurytypes.TransferInstruction, len(transfers))
	for _, t := range transfers {
		byID[t.ID] = t
	}
	byAccount := make(map[sharedtypes.AccountID]ContributionExpectation, len(expectations))
	for _, e := range expectations {
		byAccount[e.Account] = e
	}

	for _, row := range rows {
		switch row.Direction {
		case treasurytypes.DirectionDebit:
			ref, err := uuid.Parse(row.Reference)
			if err != nil {
				report.Unmatched = append(report.Unmatched, row)
				continue
			}
			transfer, ok := byID[ref]
			if !ok {
				report.Unmatched = append(report.Unmatched, row)
				continue
			}
			delete(byID, ref)
			entry := treasurytypes.ReconciliationEntry{
				Row:        row,
				TransferID: transfer.ID,
				Expected:   transfer.Amount,
			}
			if row.Amount == transfer.Amount {
				report.Matched = append(report.Matched, entry)
			} else {
				report.AmountMismatches = append(report.AmountMismatches, entry)
			}

		case treasurytypes.DirectionCredit:
			expectation, ok := byAccount[row.Account]
			if !ok {
				report.Unmatched = append(report.Unmatched, row)
				continue
			}
			delete(byAccount, row.Account)
			entry := treasurytypes.ReconciliationEntry{
				Row:      row,
				Expected: expectation.Amount,
			}
			if row.Amount == expectation.Amount {
				report.Matched = append(report.Matched, entry)
			} else {
				report.AmountMismatches = append(report.AmountMismatches, entry)
			}

		default:
			report.Unmatched = append(report.Unmatched, row)
		}
	}

	return report
}
