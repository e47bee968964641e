// Package loader parses uploaded ODP inventory files into a normalized record set.
package loader

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
)

// Input column names.
const (
	ColArea           = "kecamatan"
	ColSubArea        = "kelurahan"
	ColClassification = "jenis_odp"
	ColYear           = "tahun"
	ColMonth          = "bulan"
	ColDay            = "tanggal"
	ColLatitude       = "latitude"
	ColLongitude      = "longitude"

	// ColInstalledOn holds a dd/mm/yyyy date in files produced by the export.
	ColInstalledOn = "tanggal_instalasi"
)

// Format is a supported input file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the parser from the file extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", &LoadError{Kind: KindUnsupportedFormat, Value: filepath.Ext(name)}
	}
}

// LoadFile opens path, parses it and closes it on every path.
func LoadFile(path string) (domain.RecordSet, error) {
	if _, err := FormatOf(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return Load(filepath.Base(path), f)
}

// Load parses r according to the extension of name. The result is in file
// order and every record has InstalledOn populated.
func Load(name string, r io.Reader) (domain.RecordSet, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}

	var t table
	switch format {
	case FormatCSV:
		t, err = readCSV(r)
	case FormatXLSX:
		t, err = readXLSX(r)
	}
	if err != nil {
		return nil, err
	}
	return normalize(t)
}

// table is a file's raw rows, header first, with the source line of each row.
type table struct {
	rows  [][]string
	lines []int
}

// normalize maps raw rows to records.
func normalize(t table) (domain.RecordSet, error) {
	if len(t.rows) == 0 {
		return nil, &LoadError{Kind: KindMalformed, Err: fmt.Errorf("file has no header row")}
	}

	cols, err := resolveColumns(t.rows[0])
	if err != nil {
		return nil, err
	}

	records := make(domain.RecordSet, 0, len(t.rows)-1)
	for i := 1; i < len(t.rows); i++ {
		row := t.rows[i]
		if blank(row) {
			continue
		}
		rec, err := cols.record(row, t.lines[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// columns holds header positions. year/month/day are -1 when the file uses the
// exported single-date column instead.
type columns struct {
	area, subArea, class, lat, lon int
	year, month, day, installedOn  int
}

func resolveColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	pos := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		return -1
	}

	cols := columns{
		area:        pos(ColArea),
		subArea:     pos(ColSubArea),
		class:       pos(ColClassification),
		lat:         pos(ColLatitude),
		lon:         pos(ColLongitude),
		year:        pos(ColYear),
		month:       pos(ColMonth),
		day:         pos(ColDay),
		installedOn: pos(ColInstalledOn),
	}

	var missing []string
	for name, i := range map[string]int{
		ColArea: cols.area, ColSubArea: cols.subArea, ColClassification: cols.class,
		ColLatitude: cols.lat, ColLongitude: cols.lon,
	} {
		if i < 0 {
			missing = append(missing, name)
		}
	}
	hasTriple := cols.year >= 0 && cols.month >= 0 && cols.day >= 0
	if !hasTriple && cols.installedOn < 0 {
		for name, i := range map[string]int{ColYear: cols.year, ColMonth: cols.month, ColDay: cols.day} {
			if i < 0 {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		sortColumns(missing)
		return columns{}, &LoadError{Kind: KindMissingColumn, Column: strings.Join(missing, ",")}
	}
	if hasTriple {
		cols.installedOn = -1
	}
	return cols, nil
}

var columnOrder = []string{ColArea, ColSubArea, ColClassification, ColYear, ColMonth, ColDay, ColLatitude, ColLongitude}

// sortColumns orders names by their position in the canonical input layout.
func sortColumns(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(slices.Index(columnOrder, a), slices.Index(columnOrder, b))
	})
}

func (c columns) record(row []string, line int) (domain.Record, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	required := func(i int, name string) (string, error) {
		v := cell(i)
		if v == "" {
			return "", &LoadError{Kind: KindMissingValue, Line: line, Column: name}
		}
		return v, nil
	}

	area, err := required(c.area, ColArea)
	if err != nil {
		return domain.Record{}, err
	}
	subArea, err := required(c.subArea, ColSubArea)
	if err != nil {
		return domain.Record{}, err
	}

	rawClass := cell(c.class)
	class, ok := domain.ParseSourceClassification(rawClass)
	if !ok {
		return domain.Record{}, &LoadError{Kind: KindInvalidClassification, Line: line, Column: ColClassification, Value: rawClass}
	}

	installedOn, err := c.date(cell, line)
	if err != nil {
		return domain.Record{}, err
	}

	lat, err := coordinate(cell(c.lat), ColLatitude, 90, line)
	if err != nil {
		return domain.Record{}, err
	}
	lon, err := coordinate(cell(c.lon), ColLongitude, 180, line)
	if err != nil {
		return domain.Record{}, err
	}

	return domain.Record{
		Row:            line,
		Area:           area,
		SubArea:        subArea,
		Classification: class,
		InstalledOn:    installedOn,
		Latitude:       lat,
		Longitude:      lon,
	}, nil
}

func (c columns) date(cell func(int) string, line int) (time.Time, error) {
	if c.installedOn >= 0 {
		raw := cell(c.installedOn)
		d, err := domain.ParseDisplayDate(raw)
		if err != nil {
			return time.Time{}, &LoadError{Kind: KindInvalidDate, Line: line, Column: ColInstalledOn, Value: raw, Err: err}
		}
		return d, nil
	}

	y, m, d := cell(c.year), cell(c.month), cell(c.day)
	invalid := &LoadError{Kind: KindInvalidDate, Line: line, Column: ColYear + "/" + ColMonth + "/" + ColDay, Value: y + "-" + m + "-" + d}
	year, okY := wholeNumber(y)
	month, okM := wholeNumber(m)
	day, okD := wholeNumber(d)
	if !okY || !okM || !okD {
		return time.Time{}, invalid
	}
	date, ok := domain.CivilDate(year, month, day)
	if !ok {
		return time.Time{}, invalid
	}
	return date, nil
}

// wholeNumber parses "2024" as well as spreadsheet renderings like "2024.0".
func wholeNumber(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func coordinate(raw, column string, limit float64, line int) (float64, error) {
	if raw == "" {
		return 0, &LoadError{Kind: KindMissingValue, Line: line, Column: column}
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, &LoadError{Kind: KindInvalidCoordinate, Line: line, Column: column, Value: raw, Err: err}
	}
	if math.IsNaN(v) || math.Abs(v) > limit {
		return 0, &LoadError{Kind: KindInvalidCoordinate, Line: line, Column: column, Value: raw}
	}
	return v, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
