// Package prommetrics exports engine metrics to Prometheus.
package prommetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/qsql"
)

const namespace = "qsql"

var _ qsql.MetricsCollector = (*Collector)(nil)

// Collector implements qsql.MetricsCollector with Prometheus counters and
// histograms.
type Collector struct {
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	rows          *prometheus.CounterVec
	matches       *prometheus.CounterVec
	batches       *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
}

// New registers the collector's metrics on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of queries by scoring mode and status",
		}, []string{"mode", "status"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}, []string{"mode"}),
		rows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_scored_total",
			Help:      "Total number of rows scored",
		}, []string{"mode"}),
		matches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_matched_total",
			Help:      "Total number of rows above the match threshold",
		}, []string{"mode"}),
		batches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Total number of scored batches by status",
		}, []string{"mode", "status"}),
		batchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Batch scoring latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"mode"}),
	}
}

// RecordQuery implements qsql.MetricsCollector.
func (c *Collector) RecordQuery(mode string, rows, matches int, d time.Duration, err error) {
	mode = modeLabel(mode)
	c.queries.WithLabelValues(mode, status(err)).Inc()
	c.queryDuration.WithLabelValues(mode).Observe(d.Seconds())
	if err != nil {
		return
	}
	c.rows.WithLabelValues(mode).Add(float64(rows))
	c.matches.WithLabelValues(mode).Add(float64(matches))
}

// RecordBatch implements qsql.MetricsCollector.
func (c *Collector) RecordBatch(mode string, _ int, d time.Duration, err error) {
	mode = modeLabel(mode)
	c.batches.WithLabelValues(mode, status(err)).Inc()
	c.batchDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// Handler serves the metrics of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func modeLabel(mode string) string {
	if mode == "" {
		return "none"
	}
	return mode
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
