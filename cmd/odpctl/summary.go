package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/pipeline"
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		file   string
		in     domain.FilterInput
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print status counts, breakdowns and insights for a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := in.Spec()
			if err != nil {
				return err
			}
			records, err := a.loadFile(file)
			if err != nil {
				return err
			}

			view := pipeline.New(nil, a.logger, a.metrics).Render(cmd.Context(), records, spec)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			writeSummary(cmd.OutOrStdout(), file, view)
			return nil
		},
	}
	requireFile(cmd, &file)
	filterFlags(cmd, &in)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full dashboard view as JSON")
	return cmd
}

func writeSummary(out io.Writer, file string, v pipeline.View) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "File:\t%s (%d records)\n", file, v.Total)

	filters := "none"
	if len(v.Filters) > 0 {
		filters = strings.Join(v.Filters, ", ")
	}
	_, _ = fmt.Fprintf(w, "Filters:\t%s\n", filters)
	_, _ = fmt.Fprintf(w, "Matching:\t%d\n", v.Filtered)
	_, _ = fmt.Fprintf(w, "Table rows:\t%d\n", len(v.Table))
	_ = w.Flush()

	if v.Empty {
		_, _ = fmt.Fprintln(out, "\nNo ODP matches the selected filters.")
		return
	}

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range domain.Classifications {
		_, _ = fmt.Fprintf(w, "%s:\t%d\t(%.1f%%)\n", c, v.Status.Count(c), v.Status.Percent(c))
	}
	_, _ = fmt.Fprintf(w, "Areas:\t%d\n", v.Summary.DistinctAreas)
	_, _ = fmt.Fprintf(w, "Sub-areas:\t%d\n", v.Summary.DistinctSubAreas)
	_, _ = fmt.Fprintf(w, "Install days:\t%d\n", v.Summary.DistinctDays)
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	writeAreaTable(out, v.AreaBreakdown)

	_, _ = fmt.Fprintln(out)
	ins := v.Insights
	if ins.ProblemArea != "" {
		_, _ = fmt.Fprintf(out, "Most problems: %s (%d Warning or Critical)\n", ins.ProblemArea, ins.ProblemCount)
	}
	_, _ = fmt.Fprintf(out, "High priority: %d, medium priority: %d\n", ins.HighPriority, ins.MediumPriority)
	if ins.Healthy {
		_, _ = fmt.Fprintf(out, "Network healthy: %.1f%% Good\n", ins.GoodPercent)
	} else {
		_, _ = fmt.Fprintf(out, "Network needs attention: %.1f%% Good\n", ins.GoodPercent)
	}
}

// writeAreaTable pivots the (area, classification) breakdown into one row per area.
func writeAreaTable(out io.Writer, rows []domain.BreakdownRow) {
	counts := make(map[string]map[domain.Classification]int)
	var order []string
	for _, r := range rows {
		if _, ok := counts[r.Key]; !ok {
			counts[r.Key] = make(map[domain.Classification]int)
			order = append(order, r.Key)
		}
		counts[r.Key][r.Classification] += r.Count
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "AREA\tGOOD\tWARNING\tCRITICAL")
	_, _ = fmt.Fprintln(w, "----\t----\t-------\t--------")
	for _, area := range order {
		c := counts[area]
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", area, c[domain.Good], c[domain.Warning], c[domain.Critical])
	}
	_ = w.Flush()
}
