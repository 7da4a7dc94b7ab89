// Package metrics exposes Prometheus collectors for the scan pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	ScansTotal       *prometheus.CounterVec
	ScanDuration     prometheus.Histogram
	StaleScans       prometheus.Counter
	LastScanApps     prometheus.Gauge
	LastScanRisk     prometheus.Gauge
	RegistryFailures prometheus.Counter
}

// New creates the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "permscope_scans_total",
			Help: "Total number of scans by terminal status",
		}, []string{"status"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "permscope_scan_duration_seconds",
			Help:    "Duration of full registry scans in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		StaleScans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "permscope_scans_stale_total",
			Help: "Scans whose results were discarded because a newer scan superseded them",
		}),
		LastScanApps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "permscope_last_scan_apps",
			Help: "Number of app records in the latest published scan",
		}),
		LastScanRisk: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "permscope_last_scan_genuine_risk",
			Help: "Number of genuine-risk permissions in the latest published scan",
		}),
		RegistryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "permscope_registry_failures_total",
			Help: "Registry operations that failed at the operation level",
		}),
	}

	registry.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.StaleScans,
		m.LastScanApps,
		m.LastScanRisk,
		m.RegistryFailures,
	)
	return m
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
