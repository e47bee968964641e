package domain

import (
	"testing"
	"time"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", s, err)
	}
	return d
}

func rec(t *testing.T, row int, area, sub string, c Classification, date string, lat, lon float64) Record {
	t.Helper()
	return Record{
		Row:            row,
		Area:           area,
		SubArea:        sub,
		Classification: c,
		InstalledOn:    day(t, date),
		Latitude:       lat,
		Longitude:      lon,
	}
}

// tenRecords spans three areas with Good x6, Warning x3, Critical x1.
func tenRecords(t *testing.T) RecordSet {
	t.Helper()
	return RecordSet{
		rec(t, 1, "Kedaton", "Central Park", Good, "2024-01-02", -5.3100, 105.2100),
		rec(t, 2, "Kedaton", "Sidodadi", Good, "2024-01-02", -5.3200, 105.2200),
		rec(t, 3, "Kedaton", "Surabaya", Warning, "2024-01-05", -5.3300, 105.2300),
		rec(t, 4, "Rajabasa", "Eastside", Good, "2024-01-10", -5.3400, 105.2400),
		rec(t, 5, "Rajabasa", "Gedong Meneng", Good, "2024-01-15", -5.3500, 105.2500),
		rec(t, 6, "Rajabasa", "Gedong Meneng", Warning, "2024-01-15", -5.3600, 105.2600),
		rec(t, 7, "Way Halim", "Perumnas", Good, "2024-01-20", -5.3700, 105.2700),
		rec(t, 8, "Way Halim", "Jagabaya", Critical, "2024-01-25", -5.3800, 105.2800),
		rec(t, 9, "Way Halim", "Jagabaya", Warning, "2024-01-31", -5.3900, 105.2900),
		rec(t, 10, "Way Halim", "Perumnas", Good, "2024-02-01", -5.4000, 105.3000),
	}
}
