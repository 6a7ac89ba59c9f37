package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hupe1980/qsql"
	"github.com/hupe1980/qsql/render"
	"github.com/hupe1980/qsql/resource"
	"github.com/hupe1980/qsql/source"
	"github.com/hupe1980/qsql/table"
)

var (
	// ErrSyntax is returned for statements the shell does not understand.
	ErrSyntax = errors.New("syntax error")
	// ErrNoDatabaseSelected is returned for table statements before USE.
	ErrNoDatabaseSelected = errors.New("no database selected")
)

var (
	reCreateDatabase = regexp.MustCompile(`(?is)^create\s+database\s+(\w+)$`)
	reUse            = regexp.MustCompile(`(?is)^use\s+(\w+)$`)
	reCreateTable    = regexp.MustCompile(`(?is)^create\s+table\s+(\w+)\s*\((.*)\)$`)
	reInsert         = regexp.MustCompile(`(?is)^insert\s+into\s+(\w+)\s+values\s*(\(.*\))$`)
	reSelect         = regexp.MustCompile(`(?is)^select\s+\*\s+from\s+(\w+)(?:\s+where\s+(.+))?$`)
	reLoad           = regexp.MustCompile(`(?is)^load\s+(\w+)\s+from\s+(\S+)$`)
	reShow           = regexp.MustCompile(`(?is)^show\s+(databases|tables)$`)
)

// StoreResolver returns the store and object name for a parsed location.
type StoreResolver func(ctx context.Context, loc source.Location) (source.Store, string, error)

// interpreter executes shell statements against a catalog. CREATE TABLE
// without a prior USE creates and selects a "default" database.
type interpreter struct {
	catalog *table.Catalog
	db      *table.Database

	opts    []qsql.Option
	rc      *resource.Controller
	resolve StoreResolver

	out   io.Writer
	limit int
	json  bool
}

func newInterpreter(out io.Writer, limit int, resolve StoreResolver, rc *resource.Controller, opts ...qsql.Option) *interpreter {
	return &interpreter{
		catalog: table.NewCatalog(),
		opts:    opts,
		rc:      rc,
		resolve: resolve,
		out:     out,
		limit:   limit,
	}
}

// Exec runs one statement. A trailing semicolon is ignored.
func (in *interpreter) Exec(ctx context.Context, stmt string) error {
	stmt = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
	if stmt == "" {
		return nil
	}

	if m := reCreateDatabase.FindStringSubmatch(stmt); m != nil {
		return in.createDatabase(m[1])
	}
	if m := reUse.FindStringSubmatch(stmt); m != nil {
		return in.use(m[1])
	}
	if m := reCreateTable.FindStringSubmatch(stmt); m != nil {
		return in.createTable(m[1], m[2])
	}
	if m := reInsert.FindStringSubmatch(stmt); m != nil {
		return in.insert(m[1], m[2])
	}
	if m := reSelect.FindStringSubmatch(stmt); m != nil {
		return in.selectRows(ctx, m[1], m[2])
	}
	if m := reLoad.FindStringSubmatch(stmt); m != nil {
		return in.load(ctx, m[1], m[2])
	}
	if m := reShow.FindStringSubmatch(stmt); m != nil {
		return in.show(strings.ToLower(m[1]))
	}

	return fmt.Errorf("%w: %q", ErrSyntax, stmt)
}

func (in *interpreter) createDatabase(name string) error {
	db, err := in.catalog.CreateDatabase(name)
	if err != nil {
		return err
	}
	in.db = db
	fmt.Fprintf(in.out, "Database %q created.\n", db.Name())
	return nil
}

func (in *interpreter) use(name string) error {
	db, err := in.catalog.Database(name)
	if err != nil {
		return err
	}
	in.db = db
	fmt.Fprintf(in.out, "Using database %q.\n", db.Name())
	return nil
}

func (in *interpreter) current(create bool) (*table.Database, error) {
	if in.db != nil {
		return in.db, nil
	}
	if !create {
		return nil, ErrNoDatabaseSelected
	}
	db, err := in.catalog.CreateDatabase("default")
	if err != nil {
		return nil, err
	}
	in.db = db
	return db, nil
}

func (in *interpreter) createTable(name, cols string) error {
	db, err := in.current(true)
	if err != nil {
		return err
	}

	columns := splitValues(cols)
	t, err := db.CreateTable(name, columns)
	if err != nil {
		return err
	}
	fmt.Fprintf(in.out, "Table %q created with columns %s.\n", t.Name(), strings.Join(t.Columns(), ", "))
	return nil
}

func (in *interpreter) table(name string) (*table.Table, error) {
	db, err := in.current(false)
	if err != nil {
		return nil, err
	}
	return db.Table(name)
}

func (in *interpreter) insert(name, tuples string) error {
	t, err := in.table(name)
	if err != nil {
		return err
	}

	groups, err := splitTuples(tuples)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := t.Insert(splitValues(g)...); err != nil {
			return err
		}
	}
	fmt.Fprintf(in.out, "%d row(s) inserted into %q.\n", len(groups), t.Name())
	return nil
}

func (in *interpreter) selectRows(ctx context.Context, name, cond string) error {
	t, err := in.table(name)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cond) == "" {
		render.Rows(in.out, t.Columns(), t.Rows(), in.limit)
		return nil
	}

	eng, err := qsql.New(t.Columns(), in.opts...)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	res, err := eng.RunTable(ctx, t, cond)
	if err != nil {
		return err
	}
	for _, d := range res.Dropped {
		fmt.Fprintf(in.out, "warning: ignored %q at %d\n", d.Char, d.Pos)
	}
	if in.json {
		return render.JSON(in.out, t.Columns(), res)
	}
	render.Table(in.out, t.Columns(), res, in.limit)
	return nil
}

func (in *interpreter) load(ctx context.Context, name, uri string) error {
	if in.resolve == nil {
		return errors.New("load: no store resolver configured")
	}

	db, err := in.current(true)
	if err != nil {
		return err
	}

	loc, err := source.ParseURI(uri)
	if err != nil {
		return err
	}
	store, key, err := in.resolve(ctx, loc)
	if err != nil {
		return err
	}

	t, err := source.LoadTable(ctx, store, key, name, source.WithThrottle(in.rc))
	if err != nil {
		return err
	}
	if err := db.Attach(t); err != nil {
		return err
	}
	fmt.Fprintf(in.out, "Loaded %d row(s) into %q from %s.\n", t.Len(), t.Name(), loc)
	return nil
}

func (in *interpreter) show(what string) error {
	var names []string
	switch what {
	case "databases":
		names = in.catalog.Databases()
	default:
		db, err := in.current(false)
		if err != nil {
			return err
		}
		names = db.Tables()
	}
	for _, n := range names {
		fmt.Fprintln(in.out, n)
	}
	return nil
}

// splitValues splits a comma separated list, ignoring commas inside single
// quotes. Each value is cleaned like a CSV field.
func splitValues(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote bool
	)
	for _, r := range s {
		switch {
		case r == '\'':
			quote = !quote
			cur.WriteRune(r)
		case r == ',' && !quote:
			out = append(out, table.CleanValue(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, table.CleanValue(cur.String()))
}

// splitTuples splits "(a, b), (c, d)" into the contents of each group.
func splitTuples(s string) ([]string, error) {
	var (
		out   []string
		start = -1
		quote bool
	)
	for i, r := range s {
		switch {
		case r == '\'':
			quote = !quote
		case quote:
		case r == '(':
			if start >= 0 {
				return nil, fmt.Errorf("%w: nested parenthesis in VALUES", ErrSyntax)
			}
			start = i + 1
		case r == ')':
			if start < 0 {
				return nil, fmt.Errorf("%w: unbalanced parenthesis in VALUES", ErrSyntax)
			}
			out = append(out, s[start:i])
			start = -1
		case r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
		default:
			if start < 0 {
				return nil, fmt.Errorf("%w: unexpected %q in VALUES", ErrSyntax, r)
			}
		}
	}
	if start >= 0 || quote {
		return nil, fmt.Errorf("%w: unterminated VALUES", ErrSyntax)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty VALUES", ErrSyntax)
	}
	return out, nil
}
