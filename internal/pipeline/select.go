package pipeline

import (
	"context"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
)

// Select resolves a map click to the first record within domain.PointEpsilon
// of (lat, lon) among the records visible under spec, then reverse-geocodes it
// when a geocoder is configured. idx may be nil; it is only consulted when
// spec restricts nothing, since it indexes the whole dataset.
func (p *Pipeline) Select(ctx context.Context, records domain.RecordSet, idx *domain.PointIndex, spec domain.FilterSpec, lat, lon float64) (domain.Selection, bool) {
	headline := spec.Headline()

	var (
		rec domain.Record
		ok  bool
	)
	if idx != nil && headline.IsZero() {
		rec, ok = idx.Find(lat, lon)
	} else {
		rec, ok = domain.FindByPoint(domain.Apply(records, headline), lat, lon)
	}
	if !ok {
		p.logger.DebugContext(ctx, "no record at point", "lat", lat, "lon", lon)
		return domain.Selection{}, false
	}

	sel := domain.EnrichSelection(ctx, domain.Selection{Record: rec}, p.geocoder, p.logger)
	return sel, true
}
