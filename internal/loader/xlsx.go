package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// readXLSX returns the rows of the first worksheet, numbered by sheet row. Raw
// cell values are used so numeric cells are not rendered through the
// workbook's number formats.
func readXLSX(r io.Reader) (table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return table{}, &LoadError{Kind: KindMalformed, Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, &LoadError{Kind: KindMalformed, Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return table{}, &LoadError{Kind: KindMalformed, Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	// GetRows keeps empty rows in place, so the index is the sheet row.
	t := table{rows: rows, lines: make([]int, len(rows))}
	for i := range rows {
		t.lines[i] = i + 1
	}
	return t, nil
}
