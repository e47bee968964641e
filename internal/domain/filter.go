package domain

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// AllLabel is the selector value meaning "no restriction on this dimension".
const AllLabel = "All"

// DateLayout is the ISO date format accepted by filters.
const DateLayout = "2006-01-02"

// DateRange is an inclusive [Start, End] interval of install dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the range, both ends inclusive.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// FilterSpec selects a subset of records. Zero values mean "no restriction".
type FilterSpec struct {
	Area           string         `json:"area,omitempty"`
	Classification Classification `json:"classification"`
	DateRange      *DateRange     `json:"date_range,omitempty"`
	SearchText     string         `json:"search,omitempty"`
}

// AreaActive reports whether the area dimension restricts anything.
func (s FilterSpec) AreaActive() bool {
	return s.Area != "" && s.Area != AllLabel
}

// Headline returns the filter used for metrics, map and charts: search applies
// to the detail table only.
func (s FilterSpec) Headline() FilterSpec {
	s.SearchText = ""
	return s
}

// QuickAction is a one-click filter shortcut.
type QuickAction string

const (
	QuickCriticalOnly QuickAction = "critical_only"
	QuickReset        QuickAction = "reset"
)

// WithQuick returns the filter produced by applying a quick action to s.
func (s FilterSpec) WithQuick(action QuickAction) (FilterSpec, error) {
	switch action {
	case QuickCriticalOnly:
		s.Classification = Critical
		return s, nil
	case QuickReset:
		return FilterSpec{}, nil
	default:
		return s, fmt.Errorf("unknown quick filter %q", action)
	}
}

// Describe lists the active dimensions as human-readable labels.
func (s FilterSpec) Describe() []string {
	var out []string
	if s.AreaActive() {
		out = append(out, "Area: "+s.Area)
	}
	if s.Classification.Valid() {
		out = append(out, "Status: "+s.Classification.String())
	}
	if s.DateRange != nil {
		out = append(out, fmt.Sprintf("Date: %s - %s",
			s.DateRange.Start.Format(DateLayout), s.DateRange.End.Format(DateLayout)))
	}
	if q := strings.TrimSpace(s.SearchText); q != "" {
		out = append(out, "Search: "+q)
	}
	return out
}

// Apply returns the records that satisfy every active dimension of spec,
// in their original order. An empty result is not an error.
func Apply(records RecordSet, spec FilterSpec) RecordSet {
	m := newMatcher(spec)
	out := make(RecordSet, 0, len(records))
	for _, r := range records {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

type matcher struct {
	spec   FilterSpec
	fold   cases.Caser
	needle string
}

func newMatcher(spec FilterSpec) *matcher {
	m := &matcher{spec: spec}
	if q := strings.TrimSpace(spec.SearchText); q != "" {
		m.fold = cases.Fold()
		m.needle = m.fold.String(q)
	}
	return m
}

func (m *matcher) match(r Record) bool {
	if m.spec.AreaActive() && r.Area != m.spec.Area {
		return false
	}
	if m.spec.Classification.Valid() && r.Classification != m.spec.Classification {
		return false
	}
	if m.spec.DateRange != nil && !m.spec.DateRange.Contains(r.InstalledOn) {
		return false
	}
	if m.needle != "" {
		return strings.Contains(m.fold.String(r.SubArea), m.needle) ||
			strings.Contains(m.fold.String(r.Area), m.needle)
	}
	return true
}

// FilterInput is the raw, string-typed form of a FilterSpec as it arrives from
// query parameters or command-line flags.
type FilterInput struct {
	Area           string
	Classification string
	From, To       string
	Search         string
}

// Spec validates in and converts it to a FilterSpec. A date range needs both
// ends; a missing end defaults to the other one.
func (in FilterInput) Spec() (FilterSpec, error) {
	var spec FilterSpec
	if a := strings.TrimSpace(in.Area); a != AllLabel {
		spec.Area = a
	}

	c, err := ParseClassification(in.Classification)
	if err != nil {
		return FilterSpec{}, err
	}
	spec.Classification = c

	from, to := strings.TrimSpace(in.From), strings.TrimSpace(in.To)
	if from != "" || to != "" {
		if from == "" {
			from = to
		}
		if to == "" {
			to = from
		}
		start, err := time.Parse(DateLayout, from)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("invalid start date %q: want YYYY-MM-DD", from)
		}
		end, err := time.Parse(DateLayout, to)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("invalid end date %q: want YYYY-MM-DD", to)
		}
		if end.Before(start) {
			return FilterSpec{}, fmt.Errorf("date range end %s is before start %s", to, from)
		}
		spec.DateRange = &DateRange{Start: start, End: end}
	}

	spec.SearchText = strings.TrimSpace(in.Search)
	return spec, nil
}

// IsZero reports whether spec restricts nothing.
func (s FilterSpec) IsZero() bool {
	return !s.AreaActive() && !s.Classification.Valid() && s.DateRange == nil && strings.TrimSpace(s.SearchText) == ""
}
