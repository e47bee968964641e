package loader

import (
	"fmt"
	"strings"
)

// ErrorKind classifies why a load failed.
type ErrorKind string

const (
	KindUnsupportedFormat     ErrorKind = "unsupported_format"
	KindMalformed             ErrorKind = "malformed"
	KindMissingColumn         ErrorKind = "missing_column"
	KindMissingValue          ErrorKind = "missing_value"
	KindInvalidClassification ErrorKind = "invalid_classification"
	KindInvalidDate           ErrorKind = "invalid_date"
	KindInvalidCoordinate     ErrorKind = "invalid_coordinate"
)

// LoadError is returned for every structural problem in an input file. No
// partial dataset accompanies it.
type LoadError struct {
	Kind   ErrorKind `json:"kind"`
	Line   int       `json:"line,omitempty"`
	Column string    `json:"column,omitempty"`
	Value  string    `json:"value,omitempty"`
	Err    error     `json:"-"`
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load: ")
	b.WriteString(strings.ReplaceAll(string(e.Kind), "_", " "))
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " in column %s", e.Column)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
