package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/odp-dashboard-service/internal/adapter/mapbox"
	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/pipeline"
)

func newPointCmd(a *app) *cobra.Command {
	var (
		file     string
		in       domain.FilterInput
		lat, lon float64
	)
	cmd := &cobra.Command{
		Use:   "point",
		Short: "Resolve a map coordinate to the ODP at that spot",
		Long:  "Finds the first record within about 100 m of --lat/--lon among the filtered records. When MAPBOX_ENABLED is set the result carries a reverse-geocoded address.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := in.Spec()
			if err != nil {
				return err
			}
			records, err := a.loadFile(file)
			if err != nil {
				return err
			}

			var geocoder domain.Geocoder
			if a.cfg.MapboxEnabled {
				geocoder = mapbox.NewClient(a.cfg.MapboxToken, a.cfg.MapboxTimeout, a.metrics, a.logger)
			}

			p := pipeline.New(geocoder, a.logger, a.metrics)
			sel, ok := p.Select(cmd.Context(), records, domain.NewPointIndex(records), spec, lat, lon)
			if !ok {
				return errors.New("no ODP at this point")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(sel); err != nil {
				return fmt.Errorf("encode selection: %w", err)
			}
			return nil
		},
	}
	requireFile(cmd, &file)
	filterFlags(cmd, &in)
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the clicked point")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude of the clicked point")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}
