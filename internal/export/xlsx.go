package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
)

const sheetName = "ODP"

// WriteXLSX writes the same table as WriteCSV into a single-sheet workbook.
// Dates are stored as dd/mm/yyyy text so the file loads back unchanged.
func WriteXLSX(w io.Writer, records domain.RecordSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range byDate(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.Area,
			r.SubArea,
			r.Classification.SourceLabel(),
			r.InstalledOn.Format(domain.DisplayDateLayout),
			r.Latitude,
			r.Longitude,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", r.Row, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
