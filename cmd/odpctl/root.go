package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/odp-dashboard-service/internal/config"
	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/loader"
	"github.com/couchcryptid/odp-dashboard-service/internal/observability"
)

// app carries what every subcommand needs once the root pre-run has finished.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "odpctl",
		Short:        "Inspect and produce ODP inventory files",
		Long:         "Summarizes, validates and exports ODP inventory files (CSV or XLSX) and generates mock datasets for testing.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = a.logLevel
			}
			a.cfg = cfg
			a.logger = observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)
			a.metrics = observability.NewMetricsWith(prometheus.NewRegistry())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(
		newSummaryCmd(a),
		newPointCmd(a),
		newExportCmd(a),
		newValidateCmd(a),
		newGenmockCmd(a),
	)
	return root
}

// loadFile parses path and logs how long it took.
func (a *app) loadFile(path string) (domain.RecordSet, error) {
	start := time.Now()
	records, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	a.logger.Info("dataset loaded", "file", path, "records", len(records), "duration", time.Since(start))
	return records, nil
}

// filterFlags binds the filter dimensions shared by the read commands.
func filterFlags(cmd *cobra.Command, in *domain.FilterInput) {
	f := cmd.Flags()
	f.StringVar(&in.Area, "area", "", "restrict to one kecamatan")
	f.StringVar(&in.Classification, "status", "", "restrict to Good, Warning or Critical (Hijau, Kuning, Merah also accepted)")
	f.StringVar(&in.From, "from", "", "first install date, YYYY-MM-DD")
	f.StringVar(&in.To, "to", "", "last install date, YYYY-MM-DD")
	f.StringVar(&in.Search, "search", "", "case-insensitive text matched against kecamatan and kelurahan")
}

func requireFile(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVar(path, "file", "", "input file (.csv or .xlsx)")
	_ = cmd.MarkFlagRequired("file")
}
