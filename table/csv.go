package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoHeader is returned when CSV input has no header record.
var ErrNoHeader = errors.New("csv: missing header")

// ReadCSV builds a table from CSV input. The first record names the
// columns; fields are trimmed and surrounding single quotes removed, the
// way INSERT values are.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	t, err := New(name, header)
	if err != nil {
		return nil, err
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		for i := range rec {
			rec[i] = CleanValue(rec[i])
		}
		if err := t.Insert(rec...); err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
	}

	return t, nil
}

// CleanValue trims whitespace and one pair of surrounding single quotes.
func CleanValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		v = v[1 : len(v)-1]
	}
	return v
}
