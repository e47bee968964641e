// Package export writes the filtered detail table back out as CSV or XLSX in a
// layout the loader accepts.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseFormat accepts "csv" (the default when empty) or "xlsx".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatXLSX):
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Columns is the header row of every export.
var Columns = []string{"kecamatan", "kelurahan", "jenis_odp", "tanggal_instalasi", "latitude", "longitude"}

// Filename returns odp_data_YYYYMMDD_HHMMSS.<ext> for now.
func Filename(now time.Time, f Format) string {
	return "odp_data_" + now.Format("20060102_150405") + "." + string(f)
}

// Write dispatches to the writer for f.
func Write(w io.Writer, f Format, records domain.RecordSet) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, records)
	default:
		return WriteCSV(w, records)
	}
}

// WriteCSV writes records sorted by install date ascending. Records installed on
// the same day keep their input order.
func WriteCSV(w io.Writer, records domain.RecordSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range byDate(records) {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func byDate(records domain.RecordSet) domain.RecordSet {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.Record) int {
		return a.InstalledOn.Compare(b.InstalledOn)
	})
	return sorted
}

func row(r domain.Record) []string {
	return []string{
		r.Area,
		r.SubArea,
		r.Classification.SourceLabel(),
		r.InstalledOn.Format(domain.DisplayDateLayout),
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
	}
}
