package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Classification is the tri-state health status of an ODP.
// The zero value is AnyClassification and only appears in filters, never on a Record.
type Classification uint8

const (
	AnyClassification Classification = iota
	Good
	Warning
	Critical
)

// Classifications lists the record-level values in display order.
var Classifications = []Classification{Good, Warning, Critical}

// String returns the English name used in JSON and the API.
func (c Classification) String() string {
	switch c {
	case Good:
		return "Good"
	case Warning:
		return "Warning"
	case Critical:
		return "Critical"
	default:
		return AllLabel
	}
}

// SourceLabel returns the value used in the jenis_odp column of input files.
func (c Classification) SourceLabel() string {
	switch c {
	case Good:
		return "Hijau"
	case Warning:
		return "Kuning"
	case Critical:
		return "Merah"
	default:
		return ""
	}
}

// Color is the marker and chart colour for the classification.
func (c Classification) Color() string {
	switch c {
	case Good:
		return "green"
	case Warning:
		return "orange"
	case Critical:
		return "red"
	default:
		return "gray"
	}
}

// Valid reports whether c is one of the three record-level values.
func (c Classification) Valid() bool {
	return c == Good || c == Warning || c == Critical
}

// ParseSourceClassification maps a jenis_odp cell (Hijau, Kuning, Merah) to a
// Classification. Surrounding whitespace is ignored; anything else is rejected.
func ParseSourceClassification(s string) (Classification, bool) {
	switch strings.TrimSpace(s) {
	case "Hijau":
		return Good, true
	case "Kuning":
		return Warning, true
	case "Merah":
		return Critical, true
	default:
		return AnyClassification, false
	}
}

// ParseClassification accepts either the English name or the source label,
// case-insensitively. "All" and "" parse to AnyClassification.
func ParseClassification(s string) (Classification, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, AllLabel) {
		return AnyClassification, nil
	}
	for _, c := range Classifications {
		if strings.EqualFold(s, c.String()) || strings.EqualFold(s, c.SourceLabel()) {
			return c, nil
		}
	}
	return AnyClassification, fmt.Errorf("unknown classification %q", s)
}

func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Classification) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("classification: %w", err)
	}
	parsed, err := ParseClassification(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Record is one normalized row of the input dataset.
type Record struct {
	Row            int            `json:"row"`
	Area           string         `json:"area"`
	SubArea        string         `json:"sub_area"`
	Classification Classification `json:"classification"`
	InstalledOn    time.Time      `json:"installed_on"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
}

// Point returns the record location.
func (r Record) Point() Point {
	return Point{Lat: r.Latitude, Lon: r.Longitude}
}

// RecordSet is an ordered, read-only slice of records. Order is the load order.
type RecordSet []Record

// CivilDate builds a UTC-midnight date and reports whether the triple is a real
// calendar date (time.Date silently normalizes 2024-02-30 to March 1st).
func CivilDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// DisplayDateLayout is the dd/mm/yyyy format used in the detail table and exports.
const DisplayDateLayout = "02/01/2006"

// ParseDisplayDate parses a dd/mm/yyyy string into a UTC-midnight date.
func ParseDisplayDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DisplayDateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DatasetLoaded describes a successful upload, published to downstream consumers.
type DatasetLoaded struct {
	FileID      string       `json:"file_id"`
	FileName    string       `json:"file_name"`
	RecordCount int          `json:"record_count"`
	Status      StatusCounts `json:"status"`
	Summary     SummaryStats `json:"summary"`
	FirstDate   time.Time    `json:"first_date"`
	LastDate    time.Time    `json:"last_date"`
	LoadedAt    time.Time    `json:"loaded_at"`
}
