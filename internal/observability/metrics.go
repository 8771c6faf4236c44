package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	upstreamRequestsTotal *prometheus.CounterVec
	upstreamDuration      *prometheus.HistogramVec
	conversionsTotal      *prometheus.CounterVec
	conversionDuration    *prometheus.HistogramVec
	generationDuration    *prometheus.HistogramVec
	markerMissing         prometheus.Counter
	contextLength         prometheus.Gauge
	breakerState          prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hanzify_http_requests_total",
				Help: "Total number of HTTP requests handled.",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hanzify_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		upstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hanzify_upstream_requests_total",
				Help: "Total requests sent to the text generation backend.",
			},
			[]string{"endpoint", "status"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hanzify_upstream_request_duration_seconds",
				Help:    "Generation backend request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "status"},
		),
		conversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hanzify_conversions_total",
				Help: "Conversions by outcome (ok, empty_input, invalid_character, generation_failed).",
			},
			[]string{"outcome"},
		),
		conversionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hanzify_conversion_duration_seconds",
				Help:    "End-to-end conversion duration in seconds, including time waiting for the model.",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hanzify_generation_duration_seconds",
				Help:    "Duration of single generation calls in seconds.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"status"},
		),
		markerMissing: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hanzify_marker_missing_total",
				Help: "Generated texts without the answer marker; the full text was used instead.",
			},
		),
		contextLength: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hanzify_context_length_runes",
				Help: "Current length of the conversion context in runes.",
			},
		),
		breakerState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hanzify_generator_breaker_state",
				Help: "Generator circuit breaker state (0 closed, 1 half-open, 2 open).",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.upstreamRequestsTotal,
		m.upstreamDuration,
		m.conversionsTotal,
		m.conversionDuration,
		m.generationDuration,
		m.markerMissing,
		m.contextLength,
		m.breakerState,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	if method == "" {
		method = "UNKNOWN"
	}
	statusLabel := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(route, method, statusLabel).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, statusLabel).Observe(duration.Seconds())
}

func (m *Metrics) ObserveUpstream(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	statusLabel := strconv.Itoa(status)
	m.upstreamRequestsTotal.WithLabelValues(endpoint, statusLabel).Inc()
	m.upstreamDuration.WithLabelValues(endpoint, statusLabel).Observe(duration.Seconds())
}

func (m *Metrics) ObserveConversion(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.conversionsTotal.WithLabelValues(outcome).Inc()
	m.conversionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Metrics) ObserveGeneration(duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.generationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *Metrics) IncMarkerMissing() {
	if m == nil {
		return
	}
	m.markerMissing.Inc()
}

func (m *Metrics) SetContextLength(n int) {
	if m == nil {
		return
	}
	m.contextLength.Set(float64(n))
}

// ObserveBreaker matches gobreaker.Settings.OnStateChange.
func (m *Metrics) ObserveBreaker(_ string, _ gobreaker.State, to gobreaker.State) {
	if m == nil {
		return
	}
	m.breakerState.Set(float64(to))
}
