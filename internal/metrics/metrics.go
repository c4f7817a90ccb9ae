// Package metrics holds the Prometheus collectors for layout runs and the
// layout cache. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coviz"

// Metrics is a registry plus the collectors registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	LayoutDuration   *prometheus.HistogramVec
	LayoutResults    *prometheus.CounterVec
	LayoutNodes      prometheus.Histogram
	LayoutIterations prometheus.Histogram
	CacheLookups     *prometheus.CounterVec
}

// New creates a fresh registry with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		LayoutDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "duration_seconds",
			Help:      "Wall-clock time of layout requests by execution mode.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"mode"}),
		LayoutResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "requests_total",
			Help:      "Layout requests by execution mode and outcome.",
		}, []string{"mode", "outcome"}),
		LayoutNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "nodes",
			Help:      "Node count of layout requests.",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 12),
		}),
		LayoutIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "iterations",
			Help:      "Force simulation iterations until convergence or the ceiling.",
			Buckets:   []float64{100, 200, 400, 800, 1500, 2000, 3000},
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout_cache",
			Name:      "lookups_total",
			Help:      "Layout cache lookups by tier and result.",
		}, []string{"tier", "result"}),
	}
}

// ObserveLayout records one settled layout request.
func (m *Metrics) ObserveLayout(mode, outcome string, nodes int, d time.Duration) {
	if m == nil {
		return
	}
	m.LayoutDuration.WithLabelValues(mode).Observe(d.Seconds())
	m.LayoutResults.WithLabelValues(mode, outcome).Inc()
	m.LayoutNodes.Observe(float64(nodes))
}

// ObserveIterations records how many simulation iterations a layout used.
func (m *Metrics) ObserveIterations(n int) {
	if m == nil {
		return
	}
	m.LayoutIterations.Observe(float64(n))
}

// CacheLookup records a cache lookup. tier is "memory" or "store".
func (m *Metrics) CacheLookup(tier string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(tier, result).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
