// Package statements parses uploaded bank statements into normalized rows.
//
// Both supported formats share one tabular layout: a header row of
// reference, account, amount, direction, posted_at, description followed by
// one row per booking. Amounts are integer minor units, posted_at is RFC 3339
// and direction is credit or debit from the pool account's point of view.
package statements

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// Parser extracts statement rows from one file format.
type Parser interface {
	Parse(r io.Reader) ([]treasurytypes.StatementRow, error)
}

// ForFormat returns the parser for a normalized format name.
func ForFormat(format string) (Parser, error) {
	switch format {
	case "xlsx":
		return &XLSXParser{}, nil
	case "csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", treasurydomain.ErrUnknownFormat, format)
	}
}

// DetectFormat normalizes the explicit hint when present and falls back to
// the filename extension otherwise.
func DetectFormat(filename, hint string) string {
	if hint != "" {
		return strings.ToLower(strings.TrimPrefix(hint, "."))
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

const numColumns = 6

var headerColumns = [numColumns]string{"reference", "account", "amount", "direction", "posted_at", "description"}

// validateHeader checks the first record against the expected column names.
// The description column is optional.
func validateHeader(record []string) error {
	if len(record) < numColumns-1 {
		return fmt.Errorf("%w: header has %d columns, want at least %d", treasurydomain.ErrMalformedStatement, len(record), numColumns-1)
	}
	for i := 0; i < numColumns-1; i++ {
		if !strings.EqualFold(strings.TrimSpace(record[i]), headerColumns[i]) {
			return fmt.Errorf("%w: header column %d is %q, want %q", treasurydomain.ErrMalformedStatement, i+1, record[i], headerColumns[i])
		}
	}
	return nil
}

// rowFromRecord converts one data record. line is the 1-based position in the
// file, used in error detail.
func rowFromRecord(record []string, line int) (treasurytypes.StatementRow, error) {
	// Spreadsheet readers drop trailing empty cells.
	for len(record) < numColumns {
		record = append(record, "")
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	if record[0] == "" {
		return treasurytypes.StatementRow{}, fmt.Errorf("%w: line %d: missing reference", treasurydomain.ErrMalformedStatement, line)
	}
	if record[1] == "" {
		return treasurytypes.StatementRow{}, fmt.Errorf("%w: line %d: missing account", treasurydomain.ErrMalformedStatement, line)
	}

	amount, err := strconv.ParseInt(record[2], 10, 64)
	if err != nil {
		return treasurytypes.StatementRow{}, fmt.Errorf("%w: line %d: bad amount %q", treasurydomain.ErrMalformedStatement, line, record[2])
	}

	direction := strings.ToLower(record[3])
	if direction != treasurytypes.DirectionCredit && direction != treasurytypes.DirectionDebit {
		return treasurytypes.StatementRow{}, fmt.Errorf("%w: line %d: bad direction %q", treasurydomain.ErrMalformedStatement, line, record[3])
	}

	postedAt, err := time.Parse(time.RFC3339, record[4])
	if err != nil {
		return treasurytypes.StatementRow{}, fmt.Errorf("%w: line %d: bad posted_at %q", treasurydomain.ErrMalformedStatement, line, record[4])
	}

	return treasurytypes.StatementRow{
		Reference:   record[0],
		Account:     sharedtypes.AccountID(record[1]),
		Amount:      sharedtypes.Amount(amount),
		Direction:   direction,
		PostedAt:    postedAt,
		Description: record[5],
	}, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
