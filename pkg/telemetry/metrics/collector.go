package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for the exports counter.
const (
	ResultCommitted = "committed"
	ResultFailed    = "failed"
	ResultSkipped   = "skipped"
)

// Collector holds the engine's Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	exportsTotal   *prometheus.CounterVec
	exportDuration prometheus.Histogram
	runsTotal      prometheus.Counter
	ledgerEntries  prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with a fresh
// registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meshport_exports_total",
			Help: "Export actions by result (committed, failed, skipped).",
		}, []string{"result"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meshport_export_duration_seconds",
			Help:    "Duration of individual host export calls.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meshport_runs_total",
			Help: "Completed export runs.",
		}),
		ledgerEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meshport_ledger_entries",
			Help: "Entries in the version ledger after the last run.",
		}),
	}

	registry.MustRegister(c.exportsTotal, c.exportDuration, c.runsTotal, c.ledgerEntries)
	return c
}

// RecordExport counts one export action outcome and its duration.
func (c *Collector) RecordExport(result string, d time.Duration) {
	if c == nil {
		return
	}
	c.exportsTotal.WithLabelValues(result).Inc()
	if result != ResultSkipped {
		c.exportDuration.Observe(d.Seconds())
	}
}

// RecordRun counts one completed run and updates the ledger gauge.
func (c *Collector) RecordRun(ledgerEntries int) {
	if c == nil {
		return
	}
	c.runsTotal.Inc()
	c.ledgerEntries.Set(float64(ledgerEntries))
}

// Handler returns an HTTP handler serving the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
