package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/export"
	"github.com/couchcryptid/odp-dashboard-service/internal/pipeline"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		file, out, format string
		in                domain.FilterInput
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered table to CSV or XLSX",
		Long:  "Applies the filters, search included, and writes the matching records sorted by install date. Without --out the file is named odp_data_<timestamp>.<format>.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			spec, err := in.Spec()
			if err != nil {
				return err
			}
			records, err := a.loadFile(file)
			if err != nil {
				return err
			}

			if out == "" {
				out = export.Filename(domain.Now(), f)
			}
			rows := pipeline.Table(records, spec)
			err = writeFile(out, func(w io.Writer) error {
				return export.Write(w, f, rows)
			})
			if err != nil {
				return err
			}
			a.metrics.Exports.WithLabelValues(string(f)).Inc()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(rows), out)
			return nil
		},
	}
	requireFile(cmd, &file)
	filterFlags(cmd, &in)
	cmd.Flags().StringVar(&out, "out", "", "output path")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or xlsx")
	return cmd
}

// writeFile creates path and fills it with write. A failed write leaves no
// partial file behind.
func writeFile(path string, write func(io.Writer) error) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	err = write(dst)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
