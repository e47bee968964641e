package mockdata

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
)

// WriteSourceXLSX writes records in the source layout with numeric date and
// coordinate cells, as a spreadsheet export would store them.
func WriteSourceXLSX(w io.Writer, records domain.RecordSet) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(SourceColumns))
	for i, c := range SourceColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.Area, r.SubArea, r.Classification.SourceLabel(),
			r.InstalledOn.Year(), int(r.InstalledOn.Month()), r.InstalledOn.Day(),
			r.Latitude, r.Longitude,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r.Row, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}
