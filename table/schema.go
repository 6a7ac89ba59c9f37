package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownColumn is returned when a column name is not in a schema.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrDuplicateColumn is returned when a schema names a column twice.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrEmptyColumn is returned for a blank column name.
	ErrEmptyColumn = errors.New("empty column name")
	// ErrRowWidth is returned when a row does not match its schema width.
	ErrRowWidth = errors.New("row width mismatch")
)

// ColumnError attaches a column name to a schema error.
type ColumnError struct {
	Column string
	cause  error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: %q", e.cause, e.Column)
}

func (e *ColumnError) Unwrap() error { return e.cause }

// Row is one record: raw field values aligned to a Schema.
type Row []string

// Source exposes a table's columns and rows.
type Source interface {
	Columns() []string
	Rows() []Row
}

// Schema is an ordered set of unique, lower-cased column names.
// A Schema is immutable.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema normalizes columns (trim, lower-case) and validates uniqueness.
func NewSchema(columns []string) (*Schema, error) {
	s := &Schema{
		names: make([]string, len(columns)),
		index: make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		name := NormalizeColumn(c)
		if name == "" {
			return nil, &ColumnError{Column: c, cause: ErrEmptyColumn}
		}
		if _, dup := s.index[name]; dup {
			return nil, &ColumnError{Column: name, cause: ErrDuplicateColumn}
		}
		s.names[i] = name
		s.index[name] = i
	}
	return s, nil
}

// NormalizeColumn returns the canonical spelling of a column name.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Columns returns a copy of the column names.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.names) }

// Index returns the position of name, matched case-insensitively.
func (s *Schema) Index(name string) (int, error) {
	i, ok := s.index[NormalizeColumn(name)]
	if !ok {
		return -1, &ColumnError{Column: NormalizeColumn(name), cause: ErrUnknownColumn}
	}
	return i, nil
}

// Equal reports whether both schemas list the same columns in order.
func (s *Schema) Equal(other *Schema) bool {
	if len(s.names) != len(other.names) {
		return false
	}
	for i := range s.names {
		if s.names[i] != other.names[i] {
			return false
		}
	}
	return true
}

// CheckRow verifies that row has one field per column.
func (s *Schema) CheckRow(row Row) error {
	if len(row) != len(s.names) {
		return fmt.Errorf("%w: expected %d fields, got %d", ErrRowWidth, len(s.names), len(row))
	}
	return nil
}
