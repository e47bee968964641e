package main

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/export"
	"github.com/couchcryptid/odp-dashboard-service/internal/loader"
	"github.com/couchcryptid/odp-dashboard-service/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxReported caps the errors listed per phase.
const maxReported = 20

func newValidateCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an inventory file before uploading it",
		Long:  "Parses the file, then checks for records sharing coordinates, future install dates and that an export of the data loads back unchanged.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "=== ODP Inventory Validation ===")

			records, err := a.loadFile(file)
			if err != nil {
				return err
			}

			phases := []*phase{
				validateUniqueLocations(records),
				validateInstallDates(records),
				validateExportRoundTrip(records),
			}
			if !report(out, len(records), phases) {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
	requireFile(cmd, &file)
	return cmd
}

func report(out io.Writer, n int, phases []*phase) bool {
	_, _ = fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		_, _ = fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}
	_, _ = fmt.Fprintf(out, "\nRecords: %d\n", n)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				_, _ = fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			_, _ = fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		_, _ = fmt.Fprintln(out, "\nAll validations passed.")
	} else {
		_, _ = fmt.Fprintln(out, "\nValidation FAILED.")
	}
	return allPassed
}

// validateUniqueLocations flags records sharing exact coordinates: a map click
// always resolves to the first of them.
func validateUniqueLocations(records domain.RecordSet) *phase {
	p := &phase{name: "Distinct map locations"}
	seen := make(map[domain.Point]int, len(records))
	for _, r := range records {
		if first, dup := seen[r.Point()]; dup {
			p.errorf("line %d (%s, %s) has the same coordinates as line %d", r.Row, r.Area, r.SubArea, first)
			continue
		}
		seen[r.Point()] = r.Row
	}
	return p
}

func validateInstallDates(records domain.RecordSet) *phase {
	p := &phase{name: "Install dates not in the future"}
	today := domain.Now().Truncate(24 * time.Hour)
	for _, r := range records {
		if r.InstalledOn.After(today) {
			p.errorf("line %d installed on %s", r.Row, r.InstalledOn.Format(domain.DateLayout))
		}
	}
	return p
}

// validateExportRoundTrip exports the records and loads them back, which is
// what happens when a user re-uploads a downloaded file.
func validateExportRoundTrip(records domain.RecordSet) *phase {
	p := &phase{name: "Export round trip"}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		p.errorf("export: %v", err)
		return p
	}
	back, err := loader.Load("roundtrip.csv", &buf)
	if err != nil {
		p.errorf("reload: %v", err)
		return p
	}

	want := pipeline.Table(records, domain.FilterSpec{})
	if diff := cmp.Diff(want, back, cmpopts.IgnoreFields(domain.Record{}, "Row")); diff != "" {
		p.errorf("reloaded records differ (-want +got):\n%s", diff)
	}
	return p
}
