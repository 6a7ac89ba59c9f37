package source

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/qsql/resource"
	"github.com/hupe1980/qsql/table"
)

// LoadOption configures LoadTable.
type LoadOption func(*loadOptions)

type loadOptions struct {
	rc *resource.Controller
}

// WithThrottle paces reads through the controller's load limiter.
func WithThrottle(rc *resource.Controller) LoadOption {
	return func(o *loadOptions) {
		o.rc = rc
	}
}

// LoadTable reads the CSV object name from store into a table called
// tableName. An empty tableName derives one from the object name.
func LoadTable(ctx context.Context, store Store, name, tableName string, optFns ...LoadOption) (*table.Table, error) {
	var o loadOptions
	for _, fn := range optFns {
		fn(&o)
	}

	if tableName == "" {
		tableName = TableName(name)
	}

	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	r, closeFn, err := Decompress(name, resource.NewThrottledReader(ctx, rc, o.rc))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer closeFn()

	t, err := table.ReadCSV(tableName, r)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return t, nil
}

// Request names one table to load.
type Request struct {
	Store Store
	Name  string
	Table string
}

// LoadTables loads every request in parallel. The returned tables are in
// request order. The first failure cancels the remaining loads.
func LoadTables(ctx context.Context, reqs []Request, optFns ...LoadOption) ([]*table.Table, error) {
	out := make([]*table.Table, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, req := range reqs {
		g.Go(func() error {
			t, err := LoadTable(ctx, req.Store, req.Name, req.Table, optFns...)
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Decompress wraps r according to the extension of name: ".zst" and ".lz4"
// are decoded, anything else is returned as is. The returned func releases
// decoder resources.
func Decompress(name string, r io.Reader) (io.Reader, func(), error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case ".lz4":
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}

// TableName derives a table name from an object name by stripping the
// directory and every extension: "data/patients.csv.zst" becomes
// "patients".
func TableName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return strings.ToLower(base)
}
