package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/mockdata"
)

func newGenmockCmd(a *app) *cobra.Command {
	var (
		out  string
		opts mockdata.Options
	)
	cmd := &cobra.Command{
		Use:   "genmock",
		Short: "Generate a deterministic mock inventory file",
		Long:  "Writes a CSV or XLSX file in the upload layout, then prints the counts test assertions depend on. The same --seed always produces the same file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records := mockdata.Generate(opts)
			if err := writeMock(out, records); err != nil {
				return err
			}
			a.logger.Info("mock dataset written", "out", out, "records", len(records), "seed", opts.Seed)

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), out)
			printStats(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output path (.csv or .xlsx)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().IntVar(&opts.Rows, "rows", 200, "number of records")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&opts.Days, "days", 90, "spread install dates over this many days from "+mockdata.BaseDate.Format(domain.DateLayout))
	return cmd
}

func writeMock(path string, records domain.RecordSet) error {
	write := mockdata.WriteSourceCSV
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
	case ".xlsx":
		write = mockdata.WriteSourceXLSX
	default:
		return fmt.Errorf("unsupported output extension %q: want .csv or .xlsx", filepath.Ext(path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		return write(w, records)
	})
}

type areaCount struct {
	area  string
	count int
}

// printStats reports the figures tests usually assert on.
func printStats(out io.Writer, records domain.RecordSet) {
	sc := domain.CountStatuses(records)
	first, last, _ := domain.DateBounds(records)

	_, _ = fmt.Fprintln(out, "\n=== Stats for updating test assertions ===")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total:\t%d\n", sc.Total)
	_, _ = fmt.Fprintf(w, "By status:\tgood=%d, warning=%d, critical=%d\n", sc.Good, sc.Warning, sc.Critical)
	_, _ = fmt.Fprintf(w, "Install dates:\t%s to %s\n", first.Format(domain.DateLayout), last.Format(domain.DateLayout))
	_ = w.Flush()

	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Area]++
	}
	ac := make([]areaCount, 0, len(counts))
	for a, c := range counts {
		ac = append(ac, areaCount{a, c})
	}
	sort.Slice(ac, func(i, j int) bool {
		if ac[i].count != ac[j].count {
			return ac[i].count > ac[j].count
		}
		return ac[i].area < ac[j].area
	})
	_, _ = fmt.Fprintf(out, "Areas (%d): ", len(ac))
	for _, a := range ac {
		_, _ = fmt.Fprintf(out, "%s=%d ", a.area, a.count)
	}
	_, _ = fmt.Fprintln(out)

	if ins := domain.ComputeInsights(records); ins.ProblemArea != "" {
		_, _ = fmt.Fprintf(out, "Problem area: %s (%d)\n", ins.ProblemArea, ins.ProblemCount)
	}
}
