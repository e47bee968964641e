// Package pipeline turns a loaded dataset and a filter spec into the derived
// dashboard views.
package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/observability"
)

// Pipeline runs render passes. It holds no per-session state and is safe for
// concurrent use.
type Pipeline struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Pipeline. Pass a nil geocoder to disable address enrichment of
// selected points.
func New(geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Options feeds the filter selectors. It is computed from the whole dataset so
// choices do not disappear as filters narrow the view.
type Options struct {
	Areas           []domain.Option `json:"areas"`
	Classifications []domain.Option `json:"classifications"`
	FirstDate       *time.Time      `json:"first_date,omitempty"`
	LastDate        *time.Time      `json:"last_date,omitempty"`
}

// View is everything the dashboard draws for one filter spec.
type View struct {
	Spec     domain.FilterSpec `json:"spec"`
	Filters  []string          `json:"filters"`
	Total    int               `json:"total"`
	Filtered int               `json:"filtered"`
	Empty    bool              `json:"empty"`

	Status           domain.StatusCounts   `json:"status"`
	StatusPercent    map[string]float64    `json:"status_percent"`
	AreaBreakdown    []domain.BreakdownRow `json:"area_breakdown"`
	SubAreaBreakdown []domain.BreakdownRow `json:"sub_area_breakdown"`
	Trend            []domain.TrendPoint   `json:"trend"`
	Summary          domain.SummaryStats   `json:"summary"`
	Insights         domain.Insights       `json:"insights"`

	Map     *domain.MapParams `json:"map"`
	Markers []domain.Marker   `json:"markers"`

	// Table is the search-filtered subset sorted by install date.
	Table domain.RecordSet `json:"table"`

	Options Options `json:"options"`
}

// BuildOptions computes selector options for records.
func BuildOptions(records domain.RecordSet) Options {
	opts := Options{
		Areas:           domain.AreaOptions(records),
		Classifications: domain.ClassificationOptions(records),
	}
	if first, last, ok := domain.DateBounds(records); ok {
		opts.FirstDate, opts.LastDate = &first, &last
	}
	return opts
}

// Render runs one synchronous filter and aggregation pass. Headline metrics,
// the map and the charts ignore the search text; the table honours it. An
// empty result is reported through View.Empty, never as an error.
func (p *Pipeline) Render(ctx context.Context, records domain.RecordSet, spec domain.FilterSpec) View {
	start := time.Now()
	defer func() {
		p.metrics.Renders.Inc()
		p.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	}()

	filtered := domain.Apply(records, spec.Headline())
	status := domain.CountStatuses(filtered)

	v := View{
		Spec:             spec,
		Filters:          spec.Describe(),
		Total:            len(records),
		Filtered:         len(filtered),
		Empty:            len(filtered) == 0,
		Status:           status,
		StatusPercent:    status.Shares(),
		AreaBreakdown:    domain.BreakdownBy(filtered, domain.DimensionArea),
		SubAreaBreakdown: domain.BreakdownBy(filtered, domain.DimensionSubArea),
		Trend:            domain.DailyTrend(filtered),
		Summary:          domain.Summarize(filtered),
		Insights:         domain.ComputeInsights(filtered),
		Markers:          domain.Markers(filtered),
		Table:            Table(records, spec),
		Options:          BuildOptions(records),
	}

	if v.Empty {
		p.metrics.EmptyResults.Inc()
	} else if mp, err := domain.ComputeMapParams(filtered, spec); err == nil {
		v.Map = &mp
	}

	p.logger.DebugContext(ctx, "render pass",
		"total", v.Total,
		"filtered", v.Filtered,
		"table_rows", len(v.Table),
		"filters", v.Filters,
		"duration", time.Since(start),
	)
	return v
}

// Table returns the records matching every dimension of spec, search
// included, sorted by install date ascending with input order kept for ties.
func Table(records domain.RecordSet, spec domain.FilterSpec) domain.RecordSet {
	rows := domain.Apply(records, spec)
	slices.SortStableFunc(rows, func(a, b domain.Record) int {
		return a.InstalledOn.Compare(b.InstalledOn)
	})
	return rows
}
