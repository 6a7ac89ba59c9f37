package qsql

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/qsql/cluster"
	"github.com/hupe1980/qsql/expr"
	"github.com/hupe1980/qsql/scoring"
	"github.com/hupe1980/qsql/table"
)

var errNoColumns = errors.New("engine needs at least one column")

// Engine evaluates filter conditions over rows sharing one column schema.
//
// An Engine is safe for concurrent use. All queries share one worker pool
// that lives until Close.
type Engine struct {
	schema  *table.Schema
	opts    options
	workers int
	pool    *cluster.WorkerPool
	logger  *Logger
	metrics MetricsCollector

	queries atomic.Uint64
	closed  atomic.Bool
}

// New creates an Engine for rows with the given columns.
//
// Column names are matched case-insensitively. Empty or duplicate names
// fail with a SchemaError.
func New(columns []string, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)

	if len(columns) == 0 {
		return nil, &SchemaError{cause: errNoColumns}
	}

	schema, err := table.NewSchema(columns)
	if err != nil {
		return nil, translateError(err)
	}

	if o.mode > scoring.ModeSparse {
		return nil, &ConfigError{Option: "mode", cause: fmt.Errorf("%w: %v", scoring.ErrMode, o.mode)}
	}

	workers := max(1, min(o.workers, cluster.MaxWorkers))

	return &Engine{
		schema:  schema,
		opts:    o,
		workers: workers,
		pool:    cluster.NewWorkerPool(workers),
		logger:  o.logger,
		metrics: o.metricsCollector,
	}, nil
}

// Columns returns the engine's normalized column names.
func (e *Engine) Columns() []string { return e.schema.Columns() }

// Schema returns the engine's column schema.
func (e *Engine) Schema() *table.Schema { return e.schema }

// Workers returns the number of batches a query is split into.
func (e *Engine) Workers() int { return e.workers }

// Close stops the worker pool. Close is idempotent; queries issued after
// Close fail with ErrClosed.
func (e *Engine) Close() error {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.pool.Close()
	return nil
}

// RunTable evaluates cond over every row of src. The source columns must
// equal the engine columns.
func (e *Engine) RunTable(ctx context.Context, src table.Source, cond string) (*Result, error) {
	other, err := table.NewSchema(src.Columns())
	if err != nil {
		return nil, translateError(err)
	}
	if !other.Equal(e.Schema()) {
		return nil, &SchemaError{cause: fmt.Errorf("source columns %v do not match engine columns %v", other.Columns(), e.schema.Columns())}
	}
	return e.RunQuery(ctx, src.Rows(), cond)
}

// RunQuery evaluates cond over rows and returns the scored result.
//
// Validation happens before any batch is scheduled: empty input and rows
// of the wrong width fail with an InputError, a malformed condition with a
// ParseError, and an unknown column with a SchemaError. A field that
// cannot be read as its leaf type aborts the query with an InputError
// naming the row.
func (e *Engine) RunQuery(ctx context.Context, rows []table.Row, cond string) (*Result, error) {
	start := time.Now()
	log := e.logger.WithQuery(e.queries.Add(1))

	res, err := e.run(ctx, log, rows, cond)
	err = translateError(err)

	mode, matches, threshold := "", 0, 0.0
	if res != nil {
		mode, matches, threshold = res.Mode.String(), len(res.Indices), res.Threshold
		res.Elapsed = time.Since(start)
	}

	e.metrics.RecordQuery(mode, len(rows), matches, time.Since(start), err)
	log.LogQuery(ctx, mode, len(rows), matches, threshold, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) run(ctx context.Context, log *Logger, rows []table.Row, cond string) (*Result, error) {
	if e.closed.Load() {
		return nil, &ResourceError{Msg: "engine closed", cause: ErrClosed}
	}

	if len(rows) == 0 {
		return nil, &InputError{Row: -1, Msg: "no rows"}
	}

	compiled, err := expr.Compile(cond, e.opts.strict)
	if err != nil {
		log.LogCompile(ctx, cond, "", "", 0, err)
		return nil, err
	}
	log.LogCompile(ctx, cond, compiled.Normalized, expr.Dump(compiled.Root), len(compiled.Dropped), nil)

	plan, err := scoring.NewPlan(compiled, e.schema)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		if err := e.schema.CheckRow(row); err != nil {
			return nil, &InputError{Row: i, Msg: err.Error(), cause: err}
		}
	}

	mode, pinned := e.opts.mode, e.opts.mode != scoring.ModeAuto
	if !pinned {
		mode = scoring.SelectMode(len(rows), e.opts.budget, e.opts.probe)
	}
	log.LogMode(ctx, mode.String(), len(rows), plan.Units(), pinned)

	scorer, err := scoring.New(mode, plan, scoring.Config{
		Seed:      e.opts.seed,
		Resources: e.opts.resources,
		MaxUnits:  e.opts.maxUnits,
	})
	if err != nil {
		return nil, err
	}

	if err := e.opts.resources.AcquireQuery(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ResourceError{Msg: "query not admitted: " + err.Error(), cause: err}
	}
	defer e.opts.resources.ReleaseQuery()

	batches := cluster.Partition(rows, e.workers)
	log.LogBatches(ctx, len(batches), e.workers)

	modeName := mode.String()
	results, err := cluster.Execute(ctx, e.pool, scorer, batches, func(b cluster.Batch, d time.Duration, err error) {
		e.metrics.RecordBatch(modeName, b.Len(), d, err)
		log.LogBatch(ctx, b.ID, b.Len(), b.Qubits, d, err)
	})
	if err != nil {
		return nil, err
	}

	var hits []int
	if mode == scoring.ModeDeterministic {
		hits = collectHits(results)
	}

	agg := cluster.Merge(results, len(rows))
	return newResult(rows, agg, hits, mode, len(batches), compiled), nil
}

// collectHits returns the rows scored exactly 1 before normalization.
func collectHits(results []cluster.Result) []int {
	var hits []int
	for _, r := range results {
		for i, s := range r.Scores {
			if s == 1 {
				hits = append(hits, r.Offset+i)
			}
		}
	}
	return hits
}
