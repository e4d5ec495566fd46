// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the verification pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sitecheck/internal/domain"
)

const namespace = "sitecheck"

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	verificationsTotal *prometheus.CounterVec
	flagsTotal         *prometheus.CounterVec
	confidence         prometheus.Histogram
	extractionDuration *prometheus.HistogramVec
	extractionTotal    *prometheus.CounterVec
	partialFailures    *prometheus.CounterVec
	notifyFailures     prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "Number of in-flight HTTP requests.",
			},
		),
		verificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "verify",
				Name:      "results_total",
				Help:      "Verification runs by outcome status.",
			},
			[]string{"status"},
		),
		flagsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "verify",
				Name:      "flags_total",
				Help:      "Flags raised by the cross-validation engine.",
			},
			[]string{"flag"},
		),
		confidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "verify",
				Name:      "confidence",
				Help:      "Distribution of verification confidence scores.",
				Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 85, 90, 100},
			},
		),
		extractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "extractor",
				Name:      "duration_seconds",
				Help:      "Extraction latency by document kind.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"kind"},
		),
		extractionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "extractor",
				Name:      "requests_total",
				Help:      "Extractions by document kind and result.",
			},
			[]string{"kind", "result"},
		),
		partialFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "persist",
				Name:      "partial_failures_total",
				Help:      "Best-effort persistence steps that failed, by stage.",
			},
			[]string{"stage"},
		),
		notifyFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notify",
				Name:      "failures_total",
				Help:      "Verdict notifications that could not be delivered.",
			},
		),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.verificationsTotal,
		m.flagsTotal,
		m.confidence,
		m.extractionDuration,
		m.extractionTotal,
		m.partialFailures,
		m.notifyFailures,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count, latency and in-flight requests. The
// route template is used as the path label to bound cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveExtraction matches extractor.Observer.
func (m *Metrics) ObserveExtraction(kind domain.DocumentKind, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.extractionTotal.WithLabelValues(string(kind), result).Inc()
	m.extractionDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// RecordVerification counts a finished verification run.
func (m *Metrics) RecordVerification(result *domain.VerificationResult) {
	if result == nil {
		return
	}
	m.verificationsTotal.WithLabelValues(string(result.Status)).Inc()
	m.confidence.Observe(float64(result.Confidence))
	for _, f := range result.Flags {
		m.flagsTotal.WithLabelValues(string(f)).Inc()
	}
}

// RecordPartialFailure counts a failed best-effort persistence step.
func (m *Metrics) RecordPartialFailure(stage string) {
	m.partialFailures.WithLabelValues(stage).Inc()
}

// RecordNotifyFailure counts an undelivered verdict notification.
func (m *Metrics) RecordNotifyFailure() {
	m.notifyFailures.Inc()
}
