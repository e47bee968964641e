package domain

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMapParams_CenterAndZoom(t *testing.T) {
	records := RecordSet{
		rec(t, 1, "A", "a", Good, "2024-01-01", -5.0, 105.0),
		rec(t, 2, "A", "b", Good, "2024-01-01", -6.0, 106.0),
	}

	wide, err := ComputeMapParams(records, FilterSpec{})
	require.NoError(t, err)
	assert.InDelta(t, -5.5, wide.Center.Lat, 1e-9)
	assert.InDelta(t, 105.5, wide.Center.Lon, 1e-9)
	assert.Equal(t, ZoomWide, wide.Zoom)
	assert.Equal(t, BBox{MinLat: -6.0, MinLon: 105.0, MaxLat: -5.0, MaxLon: 106.0}, wide.Bounds)

	area, err := ComputeMapParams(records, FilterSpec{Area: "A"})
	require.NoError(t, err)
	assert.Equal(t, ZoomArea, area.Zoom)

	single, err := ComputeMapParams(records[:1], FilterSpec{Area: "A"})
	require.NoError(t, err)
	assert.Equal(t, ZoomSingle, single.Zoom, "single record wins over area filter")
	assert.Equal(t, Point{Lat: -5.0, Lon: 105.0}, single.Center)
}

func TestComputeMapParams_Empty(t *testing.T) {
	_, err := ComputeMapParams(nil, FilterSpec{})
	assert.True(t, errors.Is(err, ErrEmptyRecordSet))
}

func TestFindByPoint(t *testing.T) {
	records := tenRecords(t)

	got, ok := FindByPoint(records, -5.3200, 105.2200)
	require.True(t, ok)
	assert.Equal(t, 2, got.Row)

	_, ok = FindByPoint(records, 0, 0)
	assert.False(t, ok)

	_, ok = FindByPoint(records, -5.3200+PointEpsilon*1.5, 105.2200)
	assert.False(t, ok, "beyond epsilon on one axis")
}

func TestFindByPoint_FirstMatchWins(t *testing.T) {
	records := RecordSet{
		rec(t, 1, "A", "far", Good, "2024-01-01", -5.0000, 105.0000),
		rec(t, 2, "A", "first", Good, "2024-01-01", -5.1000, 105.1000),
		rec(t, 3, "A", "closer", Good, "2024-01-01", -5.1004, 105.1004),
	}

	got, ok := FindByPoint(records, -5.1004, 105.1004)
	require.True(t, ok)
	assert.Equal(t, "first", got.SubArea)
}

func TestPointIndex_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	records := make(RecordSet, 0, 500)
	for i := range 500 {
		records = append(records, Record{
			Row:       i + 1,
			Latitude:  -5.40 + rng.Float64()*0.05,
			Longitude: 105.25 + rng.Float64()*0.05,
		})
	}
	idx := NewPointIndex(records)

	for range 2000 {
		lat := -5.41 + rng.Float64()*0.07
		lon := 105.24 + rng.Float64()*0.07

		want, wantOK := FindByPoint(records, lat, lon)
		got, gotOK := idx.Find(lat, lon)

		require.Equal(t, wantOK, gotOK, "lat=%v lon=%v", lat, lon)
		require.Equal(t, want.Row, got.Row, "lat=%v lon=%v", lat, lon)
	}

	for _, r := range records {
		got, ok := idx.Find(r.Latitude, r.Longitude)
		require.True(t, ok)
		want, _ := FindByPoint(records, r.Latitude, r.Longitude)
		require.Equal(t, want.Row, got.Row)
	}
}

func TestPointIndex_NegativeCellBoundary(t *testing.T) {
	records := RecordSet{{Row: 1, Latitude: -0.0004, Longitude: -0.0004}}
	idx := NewPointIndex(records)

	got, ok := idx.Find(0.0004, 0.0004)
	require.True(t, ok)
	assert.Equal(t, 1, got.Row)
}

func TestMarkers(t *testing.T) {
	records := RecordSet{rec(t, 1, "Kedaton", "Sidodadi", Critical, "2024-03-09", -5.38, 105.26)}

	got := Markers(records)

	require.Len(t, got, 1)
	assert.Equal(t, "red", got[0].Color)
	assert.Equal(t, "remove-sign", got[0].Icon)
	assert.Equal(t, "ODP Merah - Sidodadi", got[0].Tooltip)
	assert.Equal(t, "09/03/2024", got[0].InstalledOn)
	assert.Equal(t, Point{Lat: -5.38, Lon: 105.26}, got[0].Position)
}
