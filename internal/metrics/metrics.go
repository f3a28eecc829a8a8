// Package metrics exposes prometheus collectors for the workflow and the backend gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "futurecustomer"

// Metrics holds the collectors of one process
type Metrics struct {
	registry *prometheus.Registry

	transitions     *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	gatewayRequests *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	sessions        prometheus.Gauge
	toasts          *prometheus.CounterVec
	simulations     *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Applied workflow transitions.",
		}, []string{"event", "from", "to"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_rejections_total",
			Help:      "Workflow actions rejected by kind.",
		}, []string{"action", "reason"}),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Backend requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Backend request latency including retries.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"op"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open workflow sessions.",
		}),
		toasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toasts_total",
			Help:      "Toasts shown by kind.",
		}, []string{"kind"}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulator_responses_total",
			Help:      "Simulated answer batches by responder.",
		}, []string{"responder"}),
	}

	m.registry.MustRegister(
		m.transitions,
		m.rejections,
		m.gatewayRequests,
		m.gatewayLatency,
		m.sessions,
		m.toasts,
		m.simulations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveGateway implements gateway.Observer
func (m *Metrics) ObserveGateway(op, outcome string, elapsed time.Duration) {
	m.gatewayRequests.WithLabelValues(op, outcome).Inc()
	m.gatewayLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveTransition counts an applied workflow transition
func (m *Metrics) ObserveTransition(event, from, to string) {
	m.transitions.WithLabelValues(event, from, to).Inc()
}

// ObserveRejection counts a rejected workflow action
func (m *Metrics) ObserveRejection(action, reason string) {
	m.rejections.WithLabelValues(action, reason).Inc()
}

// ObserveToast counts a shown toast
func (m *Metrics) ObserveToast(kind string) {
	m.toasts.WithLabelValues(kind).Inc()
}

// ObserveSimulation counts one simulated answer batch
func (m *Metrics) ObserveSimulation(responder string) {
	m.simulations.WithLabelValues(responder).Inc()
}

// SessionOpened and SessionClosed track the active session gauge
func (m *Metrics) SessionOpened() { m.sessions.Inc() }

func (m *Metrics) SessionClosed() { m.sessions.Dec() }
