package statements

import (
	"encoding/csv"
	"fmt"
	"io"

	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// CSVParser reads comma-separated statements.
type CSVParser struct{}

// Parse reads every record, validates the header, and converts the rest.
func (p *CSVParser) Parse(r io.Reader) ([]treasurytypes.StatementRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", treasurydomain.ErrMalformedStatement, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := validateHeader(records[0]); err != nil {
		return nil, err
	}

	rows := make([]treasurytypes.StatementRow, 0, len(records)-1)
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row, err := rowFromRecord(record, i+2)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
