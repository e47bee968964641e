package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
)

// PointEpsilon is the per-axis tolerance, in degrees (about 100 m), within
// which a clicked map point resolves to a record.
const PointEpsilon = 1e-3

// Zoom tiers for the map view.
const (
	ZoomSingle = 15
	ZoomArea   = 13
	ZoomWide   = 12
)

// ErrEmptyRecordSet is returned when map parameters are requested for no records.
var ErrEmptyRecordSet = errors.New("empty record set")

// BBox is the bounding box of a set of points.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// MapParams positions the map widget.
type MapParams struct {
	Center Point `json:"center"`
	Zoom   int   `json:"zoom"`
	Bounds BBox  `json:"bounds"`
}

// ComputeMapParams centers the map on the mean coordinate and picks a zoom
// tier: a single record zooms closest, an area filter zooms to medium, and
// everything else gets the wide view.
func ComputeMapParams(records RecordSet, spec FilterSpec) (MapParams, error) {
	if len(records) == 0 {
		return MapParams{}, ErrEmptyRecordSet
	}

	flat := make([]float64, 0, 2*len(records))
	var sumLat, sumLon float64
	for _, r := range records {
		sumLat += r.Latitude
		sumLon += r.Longitude
		flat = append(flat, r.Longitude, r.Latitude)
	}
	n := float64(len(records))

	zoom := ZoomWide
	switch {
	case len(records) == 1:
		zoom = ZoomSingle
	case spec.AreaActive():
		zoom = ZoomArea
	}

	b := geom.NewMultiPointFlat(geom.XY, flat).Bounds()
	return MapParams{
		Center: Point{Lat: sumLat / n, Lon: sumLon / n},
		Zoom:   zoom,
		Bounds: BBox{MinLat: b.Min(1), MinLon: b.Min(0), MaxLat: b.Max(1), MaxLon: b.Max(0)},
	}, nil
}

// within reports whether r lies strictly within PointEpsilon of p on both axes.
func within(r Record, p Point) bool {
	return math.Abs(r.Latitude-p.Lat) < PointEpsilon && math.Abs(r.Longitude-p.Lon) < PointEpsilon
}

// FindByPoint returns the first record, in iteration order, within
// PointEpsilon of (lat, lon) on both axes.
func FindByPoint(records RecordSet, lat, lon float64) (Record, bool) {
	p := Point{Lat: lat, Lon: lon}
	for _, r := range records {
		if within(r, p) {
			return r, true
		}
	}
	return Record{}, false
}

// PointIndex buckets records on a grid of PointEpsilon-sized cells. Lookups
// return the same record FindByPoint would: the lowest-index match.
type PointIndex struct {
	records RecordSet
	cells   map[cellKey][]int
}

type cellKey struct {
	lat, lon int64
}

func keyFor(lat, lon float64) cellKey {
	return cellKey{
		lat: int64(math.Floor(lat / PointEpsilon)),
		lon: int64(math.Floor(lon / PointEpsilon)),
	}
}

// NewPointIndex builds an index over records. The record set must not be
// modified afterwards.
func NewPointIndex(records RecordSet) *PointIndex {
	idx := &PointIndex{
		records: records,
		cells:   make(map[cellKey][]int, len(records)),
	}
	for i, r := range records {
		k := keyFor(r.Latitude, r.Longitude)
		idx.cells[k] = append(idx.cells[k], i)
	}
	return idx
}

// Find returns the lowest-index record within PointEpsilon of (lat, lon).
// Any match lies in the query cell or one of its eight neighbours.
func (idx *PointIndex) Find(lat, lon float64) (Record, bool) {
	p := Point{Lat: lat, Lon: lon}
	center := keyFor(lat, lon)
	best := -1
	for dLat := int64(-1); dLat <= 1; dLat++ {
		for dLon := int64(-1); dLon <= 1; dLon++ {
			for _, i := range idx.cells[cellKey{lat: center.lat + dLat, lon: center.lon + dLon}] {
				if best != -1 && i >= best {
					break
				}
				if within(idx.records[i], p) {
					best = i
					break
				}
			}
		}
	}
	if best == -1 {
		return Record{}, false
	}
	return idx.records[best], true
}

var markerIcons = map[Classification]string{
	Good:     "ok-sign",
	Warning:  "warning-sign",
	Critical: "remove-sign",
}

// Marker is one map pin.
type Marker struct {
	Position       Point          `json:"position"`
	Classification Classification `json:"classification"`
	Color          string         `json:"color"`
	Icon           string         `json:"icon"`
	Tooltip        string         `json:"tooltip"`
	Area           string         `json:"area"`
	SubArea        string         `json:"sub_area"`
	InstalledOn    string         `json:"installed_on"`
}

// Markers builds one pin per record, coloured by classification.
func Markers(records RecordSet) []Marker {
	out := make([]Marker, 0, len(records))
	for _, r := range records {
		out = append(out, Marker{
			Position:       r.Point(),
			Classification: r.Classification,
			Color:          r.Classification.Color(),
			Icon:           markerIcons[r.Classification],
			Tooltip:        fmt.Sprintf("ODP %s - %s", r.Classification.SourceLabel(), r.SubArea),
			Area:           r.Area,
			SubArea:        r.SubArea,
			InstalledOn:    r.InstalledOn.Format(DisplayDateLayout),
		})
	}
	return out
}
