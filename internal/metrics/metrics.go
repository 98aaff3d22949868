// Package metrics exposes Prometheus instrumentation for the telemetry API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smart_tent"

// Metrics groups the collectors updated by the service.
type Metrics struct {
	Submissions  *prometheus.CounterVec
	SinkFailures *prometheus.CounterVec
	Devices      prometheus.Gauge

	registry *prometheus.Registry
}

// New registers the collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Telemetry submissions by result.",
		}, []string{"result"}),
		SinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_failures_total",
			Help:      "Readings a sink failed to forward.",
		}, []string{"sink"}),
		Devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices",
			Help:      "Devices currently held in the store.",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Submissions, m.SinkFailures, m.Devices)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
