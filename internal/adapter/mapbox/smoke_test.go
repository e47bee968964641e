//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/odp-dashboard-service/internal/observability"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	c := smokeClient(t)

	// Tugu Adipura, Bandar Lampung.
	result, err := c.ReverseGeocode(context.Background(), -5.4180, 105.2590)
	require.NoError(t, err)

	assert.NotEmpty(t, result.FormattedAddress)
	assert.Contains(t, result.FormattedAddress, "Lampung")
	assert.Greater(t, result.Confidence, 0.0)
}

func TestSmoke_ReverseGeocode_OpenOcean(t *testing.T) {
	c := smokeClient(t)

	// Mapbox may or may not return a feature for open water; either is fine.
	_, err := c.ReverseGeocode(context.Background(), -10.0, 90.0)
	require.NoError(t, err)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.ReverseGeocode(context.Background(), -5.3814, 105.2612)
	require.NoError(t, err)

	r2, err := cached.ReverseGeocode(context.Background(), -5.3814, 105.2612)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
