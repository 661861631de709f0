// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Cycle metrics
	CyclesTotal    *prometheus.CounterVec
	CycleDuration  prometheus.Histogram
	SecurityStatus *prometheus.CounterVec
	WindowSource   *prometheus.CounterVec
	StaleSnapshots prometheus.Counter

	// Fetch metrics
	FetchErrors *prometheus.CounterVec

	// Store metrics
	AvailableDates   prometheus.Gauge
	StoredSecurities prometheus.Gauge
	StoreResets      *prometheus.CounterVec

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rrg_sentinel"
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CyclesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "runs_total",
			Help:      "Total number of computation cycles by result",
		}, []string{"result"}),
		CycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "duration_seconds",
			Help:      "Wall time of a computation cycle",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		SecurityStatus: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "security_status_total",
			Help:      "Per-security cycle outcomes by reason",
		}, []string{"reason"}),
		WindowSource: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "window",
			Name:      "selections_total",
			Help:      "Display windows served by candidate source",
		}, []string{"source"}),
		StaleSnapshots: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "stale_snapshots_total",
			Help:      "Snapshots dropped because a newer cycle already published",
		}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "errors_total",
			Help:      "Failed series fetches by kind",
		}, []string{"kind"}),
		AvailableDates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "available_dates",
			Help:      "Size of the accumulated available date set",
		}),
		StoredSecurities: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "securities",
			Help:      "Securities with a stored trajectory",
		}),
		StoreResets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "resets_total",
			Help:      "Trajectory store resets by reason",
		}, []string{"reason"}),
		LastSuccessfulCycle: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last cycle that published a snapshot",
		}),
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordCycle records a finished cycle.
func (m *Metrics) RecordCycle(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.CyclesTotal.WithLabelValues(result).Inc()
	m.CycleDuration.Observe(d.Seconds())
	if result == "published" {
		m.LastSuccessfulCycle.SetToCurrentTime()
	}
}

// RecordSecurityStatus counts one security outcome; ok securities use reason "ok".
func (m *Metrics) RecordSecurityStatus(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "ok"
	}
	m.SecurityStatus.WithLabelValues(reason).Inc()
}

// RecordWindowSource counts which candidate served a display window.
func (m *Metrics) RecordWindowSource(source string) {
	if m == nil {
		return
	}
	m.WindowSource.WithLabelValues(source).Inc()
}

// RecordStaleSnapshot counts a snapshot superseded before publication.
func (m *Metrics) RecordStaleSnapshot() {
	if m == nil {
		return
	}
	m.StaleSnapshots.Inc()
}

// RecordFetchError counts a failed fetch ("benchmark" or "security").
func (m *Metrics) RecordFetchError(kind string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(kind).Inc()
}

// UpdateStore sets the store gauges.
func (m *Metrics) UpdateStore(dates, securities int) {
	if m == nil {
		return
	}
	m.AvailableDates.Set(float64(dates))
	m.StoredSecurities.Set(float64(securities))
}

// RecordStoreReset counts a store reset.
func (m *Metrics) RecordStoreReset(reason string) {
	if m == nil {
		return
	}
	m.StoreResets.WithLabelValues(reason).Inc()
}
