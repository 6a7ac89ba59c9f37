package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDatabaseExists is returned when creating a database twice.
	ErrDatabaseExists = errors.New("database already exists")
	// ErrNoDatabase is returned for an unknown database.
	ErrNoDatabase = errors.New("no such database")
	// ErrTableExists is returned when creating a table twice.
	ErrTableExists = errors.New("table already exists")
	// ErrNoTable is returned for an unknown table.
	ErrNoTable = errors.New("no such table")
)

// Catalog is a set of named databases. Callers hold a Catalog explicitly;
// there is no process-wide current database.
type Catalog struct {
	mu  sync.RWMutex
	dbs map[string]*Database
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{dbs: make(map[string]*Database)}
}

// CreateDatabase adds an empty database.
func (c *Catalog) CreateDatabase(name string) (*Database, error) {
	key := strings.ToLower(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.dbs[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseExists, name)
	}
	db := &Database{name: name, tables: make(map[string]*Table)}
	c.dbs[key] = db
	return db, nil
}

// Database returns the named database.
func (c *Catalog) Database(name string) (*Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	db, ok := c.dbs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDatabase, name)
	}
	return db, nil
}

// Databases returns the database names in sorted order.
func (c *Catalog) Databases() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.dbs))
	for _, db := range c.dbs {
		names = append(names, db.name)
	}
	sort.Strings(names)
	return names
}

// Database is a set of named tables.
type Database struct {
	name string

	mu     sync.RWMutex
	tables map[string]*Table
}

// Name returns the database name.
func (d *Database) Name() string { return d.name }

// CreateTable adds an empty table.
func (d *Database) CreateTable(name string, columns []string) (*Table, error) {
	t, err := New(name, columns)
	if err != nil {
		return nil, err
	}
	if err := d.Attach(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Attach registers an existing table, e.g. one loaded from CSV.
func (d *Database) Attach(t *Table) error {
	key := strings.ToLower(t.Name())

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.tables[key]; ok {
		return fmt.Errorf("%w: %s", ErrTableExists, t.Name())
	}
	d.tables[key] = t
	return nil
}

// Table returns the named table.
func (d *Database) Table(name string) (*Table, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.tables[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTable, name)
	}
	return t, nil
}

// Tables returns the table names in sorted order.
func (d *Database) Tables() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.tables))
	for _, t := range d.tables {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}
