package mockdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
)

// SourceColumns is the header of an inventory file as field teams produce it.
var SourceColumns = []string{"kecamatan", "kelurahan", "jenis_odp", "tahun", "bulan", "tanggal", "latitude", "longitude"}

// SourceRow renders r in the source layout with the date split into parts.
func SourceRow(r domain.Record) []string {
	return []string{
		r.Area,
		r.SubArea,
		r.Classification.SourceLabel(),
		strconv.Itoa(r.InstalledOn.Year()),
		strconv.Itoa(int(r.InstalledOn.Month())),
		strconv.Itoa(r.InstalledOn.Day()),
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
	}
}

// WriteSourceCSV writes records in the source input layout, in slice order.
func WriteSourceCSV(w io.Writer, records domain.RecordSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SourceColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(SourceRow(r)); err != nil {
			return fmt.Errorf("write row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
