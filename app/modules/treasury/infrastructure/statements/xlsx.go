package statements

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// XLSXParser reads spreadsheet statements. Only the first sheet is consulted.
type XLSXParser struct{}

// Parse opens the workbook and converts the first sheet's rows.
func (p *XLSXParser) Parse(r io.Reader) ([]treasurytypes.StatementRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", treasurydomain.ErrMalformedStatement, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", treasurydomain.ErrMalformedStatement)
	}

	records, err := f.GetRows(sheet)
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
