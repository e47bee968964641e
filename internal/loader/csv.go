package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV returns all rows of a comma or semicolon separated file with the
// line each starts on. A leading UTF-8 or UTF-16 byte order mark is honoured
// and stripped.
func readCSV(r io.Reader) (table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(decoded)
	if err != nil {
		return table{}, &LoadError{Kind: KindMalformed, Err: fmt.Errorf("read csv: %w", err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return table{}, &LoadError{Kind: KindMalformed, Err: errors.New("file is empty")}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var t table
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return table{}, &LoadError{Kind: KindMalformed, Line: perr.Line, Err: perr.Err}
			}
			return table{}, &LoadError{Kind: KindMalformed, Err: err}
		}
		// Blank lines and quoted line breaks mean records and lines diverge.
		line, _ := cr.FieldPos(0)
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

// sniffDelimiter picks ';' when the header line has more semicolons than commas,
// which is how spreadsheet tools in comma-decimal locales save CSV.
func sniffDelimiter(data []byte) rune {
	header, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}
