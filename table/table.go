package table

import (
	"sync"
)

// Table is an in-memory, append-only table.
// It is safe for concurrent use.
type Table struct {
	name   string
	schema *Schema

	mu   sync.RWMutex
	rows []Row
}

var _ Source = (*Table)(nil)

// New creates an empty table.
func New(name string, columns []string) (*Table, error) {
	schema, err := NewSchema(columns)
	if err != nil {
		return nil, err
	}
	return &Table{name: name, schema: schema}, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Schema returns the table schema.
func (t *Table) Schema() *Schema { return t.schema }

// Columns implements Source.
func (t *Table) Columns() []string { return t.schema.Columns() }

// Insert appends a row. The values are copied.
func (t *Table) Insert(values ...string) error {
	row := make(Row, len(values))
	copy(row, values)
	if err := t.schema.CheckRow(row); err != nil {
		return err
	}

	t.mu.Lock()
	t.rows = append(t.rows, row)
	t.mu.Unlock()
	return nil
}

// Rows implements Source. The returned slice is a snapshot; rows inserted
// later are not visible through it.
func (t *Table) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows[:len(t.rows):len(t.rows)]
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
