// Package mockdata generates reproducible ODP inventories for tests, demos and
// the genmock command.
package mockdata

import (
	"math"
	"math/rand"
	"time"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
)

// BaseDate is the first install date generated.
var BaseDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// area is a district with its sub-districts and an approximate centre.
type area struct {
	name     string
	subAreas []string
	lat, lon float64
}

var areas = []area{
	{"Kedaton", []string{"Sidodadi", "Surabaya", "Kedaton", "Sukamenanti"}, -5.3770, 105.2570},
	{"Rajabasa", []string{"Gedong Meneng", "Rajabasa", "Rajabasa Raya"}, -5.3650, 105.2400},
	{"Way Halim", []string{"Perumnas Way Halim", "Jagabaya II", "Gunung Sulah"}, -5.3830, 105.2730},
	{"Tanjung Karang Pusat", []string{"Durian Payung", "Palapa", "Kaliawi"}, -5.4110, 105.2570},
	{"Sukarame", []string{"Sukarame", "Way Dadi", "Korpri Jaya"}, -5.3810, 105.3000},
}

// Options tunes generation. Zero values pick defaults.
type Options struct {
	Rows int
	Seed int64
	Days int
	// Shares of Good, Warning and Critical; normalized internally.
	Mix [3]float64
}

func (o Options) withDefaults() Options {
	if o.Rows <= 0 {
		o.Rows = 200
	}
	if o.Days <= 0 {
		o.Days = 90
	}
	if o.Mix == [3]float64{} {
		o.Mix = [3]float64{0.7, 0.2, 0.1}
	}
	return o
}

// Generate returns opts.Rows records with Row numbered as source lines
// (the first record is line 2). The same seed always yields the same data.
func Generate(opts Options) domain.RecordSet {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // test data

	total := opts.Mix[0] + opts.Mix[1] + opts.Mix[2]
	records := make(domain.RecordSet, 0, opts.Rows)
	for i := range opts.Rows {
		a := areas[rng.Intn(len(areas))]
		records = append(records, domain.Record{
			Row:            i + 2,
			Area:           a.name,
			SubArea:        a.subAreas[rng.Intn(len(a.subAreas))],
			Classification: pick(rng.Float64()*total, opts.Mix),
			InstalledOn:    BaseDate.AddDate(0, 0, rng.Intn(opts.Days)),
			Latitude:       round6(a.lat + (rng.Float64()-0.5)*0.02),
			Longitude:      round6(a.lon + (rng.Float64()-0.5)*0.02),
		})
	}
	return records
}

func pick(x float64, mix [3]float64) domain.Classification {
	switch {
	case x < mix[0]:
		return domain.Good
	case x < mix[0]+mix[1]:
		return domain.Warning
	default:
		return domain.Critical
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
