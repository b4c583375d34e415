package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry so tests can
// build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	apiDuration   *prometheus.HistogramVec
	apiInflight   prometheus.Gauge
	opDuration    *prometheus.HistogramVec
	opConflicts   *prometheus.CounterVec
	opRetries     *prometheus.CounterVec
	gateVerdicts  *prometheus.CounterVec
	eventsEmitted *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bidgate",
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bidgate",
			Name:      "api_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bidgate",
			Name:      "aggregate_operation_duration_seconds",
			Help:      "Aggregate write latency by operation and outcome.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"op", "status"}),
		opConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bidgate",
			Name:      "aggregate_conflicts_total",
			Help:      "Compare-and-set conflicts by operation.",
		}, []string{"op"}),
		opRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bidgate",
			Name:      "aggregate_retryable_total",
			Help:      "Retryable aggregate failures by operation.",
		}, []string{"op"}),
		gateVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bidgate",
			Name:      "gate_verdicts_total",
			Help:      "Stage gate checks by gate and outcome.",
		}, []string{"gate", "outcome"}),
		eventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bidgate",
			Name:      "events_published_total",
			Help:      "Domain events published by topic and result.",
		}, []string{"topic", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiDuration, m.apiInflight, m.opDuration, m.opConflicts, m.opRetries, m.gateVerdicts, m.eventsEmitted,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiDuration.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.opDuration.WithLabelValues(strings.TrimSpace(op), strings.TrimSpace(status)).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m != nil {
		m.opConflicts.WithLabelValues(strings.TrimSpace(op)).Inc()
	}
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m != nil {
		m.opRetries.WithLabelValues(strings.TrimSpace(op)).Inc()
	}
}

func (m *Metrics) IncGateVerdict(gate, outcome string) {
	if m != nil {
		m.gateVerdicts.WithLabelValues(gate, outcome).Inc()
	}
}

func (m *Metrics) IncEvent(topic string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsEmitted.WithLabelValues(topic, result).Inc()
}
