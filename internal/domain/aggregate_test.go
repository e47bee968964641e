package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountStatuses_TenRecords(t *testing.T) {
	sc := CountStatuses(tenRecords(t))

	assert.Equal(t, StatusCounts{Good: 6, Warning: 3, Critical: 1, Total: 10}, sc)
	assert.InDelta(t, 60.0, sc.Percent(Good), 1e-9)
	assert.InDelta(t, 30.0, sc.Percent(Warning), 1e-9)
	assert.InDelta(t, 10.0, sc.Percent(Critical), 1e-9)
}

func TestCountStatuses_Empty(t *testing.T) {
	sc := CountStatuses(nil)

	assert.Equal(t, 0, sc.Total)
	for _, c := range Classifications {
		assert.Zero(t, sc.Percent(c))
	}
}

func TestCountStatuses_SumsMatch(t *testing.T) {
	records := tenRecords(t)
	for _, spec := range []FilterSpec{{}, {Area: "Kedaton"}, {Classification: Warning}, {Area: "X"}} {
		subset := Apply(records, spec)
		sc := CountStatuses(subset)

		assert.Equal(t, len(subset), sc.Good+sc.Warning+sc.Critical)

		var total float64
		for _, share := range sc.Shares() {
			total += share
		}
		if len(subset) > 0 {
			assert.InDelta(t, 100.0, total, 1e-9)
		} else {
			assert.Zero(t, total)
		}
	}
}

func TestBreakdownBy_Area(t *testing.T) {
	got := BreakdownBy(tenRecords(t), DimensionArea)

	assert.Equal(t, []BreakdownRow{
		{Key: "Kedaton", Classification: Good, Count: 2},
		{Key: "Kedaton", Classification: Warning, Count: 1},
		{Key: "Rajabasa", Classification: Good, Count: 2},
		{Key: "Rajabasa", Classification: Warning, Count: 1},
		{Key: "Way Halim", Classification: Good, Count: 2},
		{Key: "Way Halim", Classification: Critical, Count: 1},
		{Key: "Way Halim", Classification: Warning, Count: 1},
	}, got)
}

func TestBreakdownBy_CountsSumToLen(t *testing.T) {
	records := tenRecords(t)
	for _, dim := range []Dimension{DimensionArea, DimensionSubArea} {
		var sum int
		for _, row := range BreakdownBy(records, dim) {
			assert.Positive(t, row.Count, "no zero-filled pairs")
			sum += row.Count
		}
		assert.Equal(t, len(records), sum, string(dim))
	}
	assert.Empty(t, BreakdownBy(nil, DimensionArea))
}

func TestDailyTrend(t *testing.T) {
	records := RecordSet{
		rec(t, 1, "A", "a", Warning, "2024-01-05", 0, 0),
		rec(t, 2, "A", "a", Good, "2024-01-02", 0, 0),
		rec(t, 3, "A", "a", Good, "2024-01-05", 0, 0),
		rec(t, 4, "A", "a", Good, "2024-01-02", 0, 0),
	}

	got := DailyTrend(records)

	require.Len(t, got, 3)
	assert.Equal(t, TrendPoint{Date: day(t, "2024-01-02"), Classification: Good, Count: 2}, got[0])
	assert.Equal(t, TrendPoint{Date: day(t, "2024-01-05"), Classification: Good, Count: 1}, got[1])
	assert.Equal(t, TrendPoint{Date: day(t, "2024-01-05"), Classification: Warning, Count: 1}, got[2])
}

func TestSummarize(t *testing.T) {
	got := Summarize(tenRecords(t))

	assert.Equal(t, SummaryStats{DistinctAreas: 3, DistinctSubAreas: 7, DistinctDays: 8}, got)
	assert.Equal(t, SummaryStats{}, Summarize(nil))
}

func TestAreaOptions(t *testing.T) {
	got := AreaOptions(tenRecords(t))

	assert.Equal(t, []Option{
		{Value: AllLabel, Label: AllLabel, Count: 10},
		{Value: "Kedaton", Label: "Kedaton (3)", Count: 3},
		{Value: "Rajabasa", Label: "Rajabasa (3)", Count: 3},
		{Value: "Way Halim", Label: "Way Halim (4)", Count: 4},
	}, got)
}

func TestClassificationOptions_SkipsAbsent(t *testing.T) {
	records := RecordSet{
		rec(t, 1, "A", "a", Good, "2024-01-01", 0, 0),
		rec(t, 2, "A", "a", Critical, "2024-01-01", 0, 0),
	}

	got := ClassificationOptions(records)

	assert.Equal(t, []Option{
		{Value: AllLabel, Label: AllLabel, Count: 2},
		{Value: "Good", Label: "Good (1)", Count: 1},
		{Value: "Critical", Label: "Critical (1)", Count: 1},
	}, got)
}

func TestDateBounds(t *testing.T) {
	first, last, ok := DateBounds(tenRecords(t))
	require.True(t, ok)
	assert.Equal(t, day(t, "2024-01-02"), first)
	assert.Equal(t, day(t, "2024-02-01"), last)

	_, _, ok = DateBounds(nil)
	assert.False(t, ok)
}

func TestComputeInsights(t *testing.T) {
	got := ComputeInsights(tenRecords(t))

	assert.Equal(t, "Way Halim", got.ProblemArea)
	assert.Equal(t, 2, got.ProblemCount)
	assert.Equal(t, 1, got.HighPriority)
	assert.Equal(t, 3, got.MediumPriority)
	assert.False(t, got.Healthy)

	healthy := ComputeInsights(RecordSet{rec(t, 1, "A", "a", Good, "2024-01-01", 0, 0)})
	assert.True(t, healthy.Healthy)
	assert.Empty(t, healthy.ProblemArea)
}
