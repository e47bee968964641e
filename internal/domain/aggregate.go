package domain

import (
	"fmt"
	"sort"
	"time"
)

// StatusCounts tallies records per classification.
type StatusCounts struct {
	Good     int `json:"good"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
	Total    int `json:"total"`
}

// CountStatuses counts records per classification.
func CountStatuses(records RecordSet) StatusCounts {
	var sc StatusCounts
	for _, r := range records {
		switch r.Classification {
		case Good:
			sc.Good++
		case Warning:
			sc.Warning++
		case Critical:
			sc.Critical++
		}
	}
	sc.Total = len(records)
	return sc
}

// Count returns the tally for one classification.
func (sc StatusCounts) Count(c Classification) int {
	switch c {
	case Good:
		return sc.Good
	case Warning:
		return sc.Warning
	case Critical:
		return sc.Critical
	default:
		return sc.Total
	}
}

// Percent returns the share of c in percent. 0/0 is 0.
func (sc StatusCounts) Percent(c Classification) float64 {
	return percent(sc.Count(c), sc.Total)
}

// Shares returns the per-classification percentages keyed by name.
func (sc StatusCounts) Shares() map[string]float64 {
	out := make(map[string]float64, len(Classifications))
	for _, c := range Classifications {
		out[c.String()] = sc.Percent(c)
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Dimension is a grouping key for breakdowns.
type Dimension string

const (
	DimensionArea    Dimension = "area"
	DimensionSubArea Dimension = "sub_area"
)

func (d Dimension) value(r Record) string {
	if d == DimensionSubArea {
		return r.SubArea
	}
	return r.Area
}

// BreakdownRow is the count for one (dimension value, classification) pair.
type BreakdownRow struct {
	Key            string         `json:"key"`
	Classification Classification `json:"classification"`
	Count          int            `json:"count"`
}

// BreakdownBy groups records by (dimension value, classification). Only pairs
// present in the data are returned, in order of first appearance.
func BreakdownBy(records RecordSet, dim Dimension) []BreakdownRow {
	type pair struct {
		key string
		c   Classification
	}
	index := make(map[pair]int)
	var rows []BreakdownRow
	for _, r := range records {
		p := pair{key: dim.value(r), c: r.Classification}
		i, ok := index[p]
		if !ok {
			i = len(rows)
			index[p] = i
			rows = append(rows, BreakdownRow{Key: p.key, Classification: p.c})
		}
		rows[i].Count++
	}
	return rows
}

// TrendPoint is the number of installs on one date for one classification.
type TrendPoint struct {
	Date           time.Time      `json:"date"`
	Classification Classification `json:"classification"`
	Count          int            `json:"count"`
}

// DailyTrend groups records by install date and classification, sorted by date
// ascending and then by classification.
func DailyTrend(records RecordSet) []TrendPoint {
	type pair struct {
		day time.Time
		c   Classification
	}
	index := make(map[pair]int)
	var points []TrendPoint
	for _, r := range records {
		p := pair{day: r.InstalledOn, c: r.Classification}
		i, ok := index[p]
		if !ok {
			i = len(points)
			index[p] = i
			points = append(points, TrendPoint{Date: p.day, Classification: p.c})
		}
		points[i].Count++
	}
	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		return points[i].Classification < points[j].Classification
	})
	return points
}

// SummaryStats holds distinct counts over the record set.
type SummaryStats struct {
	DistinctAreas    int `json:"distinct_areas"`
	DistinctSubAreas int `json:"distinct_sub_areas"`
	DistinctDays     int `json:"distinct_days"`
}

// Summarize counts distinct areas, sub-areas and install days.
func Summarize(records RecordSet) SummaryStats {
	areas := make(map[string]struct{})
	subAreas := make(map[string]struct{})
	days := make(map[time.Time]struct{})
	for _, r := range records {
		areas[r.Area] = struct{}{}
		subAreas[r.SubArea] = struct{}{}
		days[r.InstalledOn] = struct{}{}
	}
	return SummaryStats{
		DistinctAreas:    len(areas),
		DistinctSubAreas: len(subAreas),
		DistinctDays:     len(days),
	}
}

// Option is one entry of a selector, annotated with its record count.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AreaOptions returns "All" followed by every distinct area sorted by name.
func AreaOptions(records RecordSet) []Option {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Area]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]Option, 0, len(names)+1)
	opts = append(opts, Option{Value: AllLabel, Label: AllLabel, Count: len(records)})
	for _, name := range names {
		opts = append(opts, Option{Value: name, Label: optionLabel(name, counts[name]), Count: counts[name]})
	}
	return opts
}

// ClassificationOptions returns "All" followed by the classifications present
// in the data.
func ClassificationOptions(records RecordSet) []Option {
	sc := CountStatuses(records)
	opts := []Option{{Value: AllLabel, Label: AllLabel, Count: sc.Total}}
	for _, c := range Classifications {
		if n := sc.Count(c); n > 0 {
			opts = append(opts, Option{Value: c.String(), Label: optionLabel(c.String(), n), Count: n})
		}
	}
	return opts
}

func optionLabel(name string, n int) string {
	return fmt.Sprintf("%s (%d)", name, n)
}

// DateBounds returns the earliest and latest install dates. ok is false when
// records is empty.
func DateBounds(records RecordSet) (first, last time.Time, ok bool) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = records[0].InstalledOn, records[0].InstalledOn
	for _, r := range records[1:] {
		if r.InstalledOn.Before(first) {
			first = r.InstalledOn
		}
		if r.InstalledOn.After(last) {
			last = r.InstalledOn
		}
	}
	return first, last, true
}

// healthyThreshold is the Good share above which the network counts as healthy.
const healthyThreshold = 80.0

// Insights summarizes where attention is needed.
type Insights struct {
	ProblemArea    string  `json:"problem_area,omitempty"`
	ProblemCount   int     `json:"problem_count"`
	HighPriority   int     `json:"high_priority"`
	MediumPriority int     `json:"medium_priority"`
	GoodPercent    float64 `json:"good_percent"`
	Healthy        bool    `json:"healthy"`
}

// ComputeInsights finds the area with the most Warning and Critical records
// (ties go to the area seen first) and the priority counts.
func ComputeInsights(records RecordSet) Insights {
	sc := CountStatuses(records)
	ins := Insights{
		HighPriority:   sc.Critical,
		MediumPriority: sc.Warning,
		GoodPercent:    sc.Percent(Good),
	}
	ins.Healthy = ins.GoodPercent > healthyThreshold

	problems := make(map[string]int)
	var order []string
	for _, r := range records {
		if r.Classification != Warning && r.Classification != Critical {
			continue
		}
		if _, seen := problems[r.Area]; !seen {
			order = append(order, r.Area)
		}
		problems[r.Area]++
	}
	for _, area := range order {
		if problems[area] > ins.ProblemCount {
			ins.ProblemArea = area
			ins.ProblemCount = problems[area]
		}
	}
	return ins
}
