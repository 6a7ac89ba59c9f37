package qsql

import (
	"log/slog"

	"github.com/hupe1980/qsql/resource"
	"github.com/hupe1980/qsql/scoring"
)

// Default engine settings.
const (
	DefaultWorkers  = 4
	DefaultMaxUnits = 16
)

type options struct {
	mode             scoring.Mode
	workers          int
	budget           scoring.Budget
	maxUnits         int
	seed             uint64
	strict           bool
	probe            scoring.Probe
	resources        *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Engine.
type Option func(*options)

// WithMode pins the scoring mode. scoring.ModeAuto, the default, selects a
// mode per query from the row count and the budget.
func WithMode(mode scoring.Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithWorkers sets the number of batches a query is split into and the
// size of the worker pool. Values are clamped to [1, cluster.MaxWorkers].
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBudget sets the register budget that decides between exact
// simulation and the sparse fallback.
func WithBudget(b scoring.Budget) Option {
	return func(o *options) {
		o.budget = b
	}
}

// WithMaxUnits bounds the number of leaf tests a simulated condition may
// contain. Wider conditions fail with a ResourceError.
func WithMaxUnits(n int) Option {
	return func(o *options) {
		o.maxUnits = n
	}
}

// WithSeed seeds the sparse fallback. Queries with equal seeds and inputs
// return equal scores.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithStrictLexing rejects conditions containing characters the tokenizer
// does not recognize instead of skipping them.
func WithStrictLexing(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithProbe replaces the hardware probe consulted by automatic mode
// selection.
func WithProbe(p scoring.Probe) Option {
	return func(o *options) {
		o.probe = p
	}
}

// WithResourceController enforces query admission and memory limits.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentQueries: 4,
//	    MemoryLimitBytes:     64 << 20,
//	})
//	eng, _ := qsql.New(columns, qsql.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &qsql.BasicMetricsCollector{}
//	eng, _ := qsql.New(columns, qsql.WithMetricsCollector(metrics))
//	// ... run queries ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := qsql.NewJSONLogger(slog.LevelDebug)
//	eng, _ := qsql.New(columns, qsql.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		mode:             scoring.ModeAuto,
		workers:          DefaultWorkers,
		budget:           scoring.DefaultBudget,
		maxUnits:         DefaultMaxUnits,
		probe:            scoring.DefaultProbe,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
