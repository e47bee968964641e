package domain

import (
	"context"
	"log/slog"
)

// Selection is the record resolved from a map click, optionally enriched with
// a reverse-geocoded address.
type Selection struct {
	Record           Record  `json:"record"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "reverse", "original", "failed"
}

// EnrichSelection reverse-geocodes the selected record's coordinates. If
// geocoder is nil the selection is returned untouched; lookup failures are
// logged and reported through GeoSource rather than returned.
func EnrichSelection(ctx context.Context, sel Selection, geocoder Geocoder, logger *slog.Logger) Selection {
	if geocoder == nil {
		return sel
	}

	result, err := geocoder.ReverseGeocode(ctx, sel.Record.Latitude, sel.Record.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"row", sel.Record.Row,
			"lat", sel.Record.Latitude,
			"lon", sel.Record.Longitude,
			"error", err,
		)
		sel.GeoSource = "failed"
		return sel
	}
	if result.FormattedAddress == "" {
		sel.GeoSource = "original"
		return sel
	}

	sel.FormattedAddress = result.FormattedAddress
	sel.PlaceName = result.PlaceName
	sel.GeoConfidence = result.Confidence
	sel.GeoSource = "reverse"
	return sel
}
