// Package metrics exposes Prometheus instruments for the HTTP API and the forecast analysis.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "core1"

// Recorder owns a registry so tests can create isolated instances.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	analysisLatency prometheus.Histogram
	analysisInputs  prometheus.Histogram
	narratives      *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
	scheduleAlerts  *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		analysisLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "analysis_duration_seconds",
				Help:      "Time spent computing a forecast analysis including the narrative",
				Buckets:   []float64{0.005, 0.05, 0.25, 1, 2.5, 5, 10, 30},
			},
		),
		analysisInputs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "analysis_observations",
				Help:      "Number of observations per analysis",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		narratives: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "narratives_total",
				Help:      "Narrative generation outcomes",
			},
			[]string{"outcome"},
		),
		breakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open)",
			},
			[]string{"name"},
		),
		scheduleAlerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "schedule",
				Name:      "alerts_total",
				Help:      "Production schedule status changes that need attention",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (r *Recorder) ObserveAnalysis(duration time.Duration, observations int) {
	r.analysisLatency.Observe(duration.Seconds())
	r.analysisInputs.Observe(float64(observations))
}

func (r *Recorder) RecordNarrative(outcome string) {
	r.narratives.WithLabelValues(outcome).Inc()
}

// SetBreakerState records state as its numeric value.
func (r *Recorder) SetBreakerState(name string, state int) {
	r.breakerState.WithLabelValues(name).Set(float64(state))
}

func (r *Recorder) RecordScheduleAlert(status string) {
	r.scheduleAlerts.WithLabelValues(status).Inc()
}
