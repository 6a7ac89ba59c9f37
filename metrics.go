package qsql

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational metrics from an Engine.
// Implement this interface to integrate with monitoring systems; see
// package prommetrics for a Prometheus implementation.
type MetricsCollector interface {
	// RecordQuery is called after each query. matches is zero on error.
	RecordQuery(mode string, rows, matches int, duration time.Duration, err error)

	// RecordBatch is called after each batch a query scored.
	RecordBatch(mode string, rows int, duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuery(string, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(string, int, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	RowsScored      atomic.Int64
	RowsMatched     atomic.Int64
	BatchCount      atomic.Int64
	BatchErrors     atomic.Int64
	BatchTotalNanos atomic.Int64
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, rows, matches int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	b.RowsScored.Add(int64(rows))
	b.RowsMatched.Add(int64(matches))
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(_ string, _ int, duration time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BatchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		QueryCount:    b.QueryCount.Load(),
		QueryErrors:   b.QueryErrors.Load(),
		QueryAvgNanos: avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		RowsScored:    b.RowsScored.Load(),
		RowsMatched:   b.RowsMatched.Load(),
		BatchCount:    b.BatchCount.Load(),
		BatchErrors:   b.BatchErrors.Load(),
		BatchAvgNanos: avg(b.BatchTotalNanos.Load(), b.BatchCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	QueryCount    int64
	QueryErrors   int64
	QueryAvgNanos int64
	RowsScored    int64
	RowsMatched   int64
	BatchCount    int64
	BatchErrors   int64
	BatchAvgNanos int64
}
