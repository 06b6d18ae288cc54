package clubapi

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

const (
	sheetSummary   = "Summary"
	sheetMembers   = "Members"
	sheetTransfers = "Transfers"
)

// BuildStatementWorkbook assembles the club ledger export: a summary sheet,
// the member roster with contribution and withdrawal records, and the
// treasury transfer instructions.
func BuildStatementWorkbook(snap *clubtypes.ClubSnapshot, transfers []treasurytypes.TransferInstruction) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, snap); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetMembers); err != nil {
		return nil, fmt.Errorf("failed to create members sheet: %w", err)
	}
	if err := writeMembersSheet(f, snap); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetTransfers); err != nil {
		return nil, fmt.Errorf("failed to create transfers sheet: %w", err)
	}
	if err := writeTransfersSheet(f, transfers); err != nil {
		return nil, err
	}

	return f, nil
}

func writeSummarySheet(f *excelize.File, snap *clubtypes.ClubSnapshot) error {
	rows := [][]interface{}{
		{"Club ID", snap.ClubID.String()},
		{"Name", snap.Name},
		{"Phase", snap.Phase},
		{"Creator", string(snap.Creator)},
		{"Contribution Amount", int64(snap.ContributionAmount)},
		{"Penalty Amount", int64(snap.PenaltyAmount)},
		{"Max Members", snap.MaxMembers},
		{"Start Time", formatTime(snap.StartTime)},
		{"End Time", formatTime(snap.EndTime)},
		{"Total Contributions", int64(snap.TotalContributions)},
		{"Penalty Pool", int64(snap.PenaltyPool)},
		{"Current Cycle", snap.CurrentCycle},
		{"Withdrawal Phase Started", snap.WithdrawalPhaseStarted},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeMembersSheet(f *excelize.File, snap *clubtypes.ClubSnapshot) error {
	header := []interface{}{"Account", "Admission Index", "Joined At", "Contributed At", "Contribution", "Withdrawn At"}
	if err := f.SetSheetRow(sheetMembers, "A1", &header); err != nil {
		return fmt.Errorf("failed to write members header: %w", err)
	}

	for i, m := range snap.Members {
		contribution := int64(0)
		if m.HasContributed {
			contribution = int64(snap.ContributionAmount)
		}
		row := []interface{}{
			string(m.Account),
			m.AdmissionIndex,
			formatTime(m.JoinedAt),
			formatTimePtr(m.ContributedAt),
			contribution,
			formatTimePtr(m.WithdrawnAt),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetMembers, cell, &row); err != nil {
			return fmt.Errorf("failed to write member row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeTransfersSheet(f *excelize.File, transfers []treasurytypes.TransferInstruction) error {
	header := []interface{}{"Transfer ID", "Destination", "Amount", "Kind", "Cycle", "Issued At", "Status"}
	if err := f.SetSheetRow(sheetTransfers, "A1", &header); err != nil {
		return fmt.Errorf("failed to write transfers header: %w", err)
	}

	for i, t := range transfers {
		row := []interface{}{
			t.ID.String(),
			string(t.Destination),
			int64(t.Amount),
			string(t.Kind),
			t.Cycle,
			formatTime(t.IssuedAt),
			string(t.Status),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetTransfers, cell, &row); err != nil {
			return fmt.Errorf("failed to write transfer row %d: %w", i+2, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
