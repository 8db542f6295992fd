package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metric collectors / Contient tous les collecteurs de métriques Prometheus
type Metrics struct {
	// API client metrics
	APIRequestsTotal   *prometheus.CounterVec   // Backend calls by method, resource, status
	APIRequestDuration *prometheus.HistogramVec // Backend call latency in seconds
	ThrottleWaits      prometheus.Histogram     // Time spent waiting on the client-side limiter

	// Validation metrics
	Validations      *prometheus.CounterVec // Validation runs by entity and outcome
	ValidationIssues *prometheus.CounterVec // Findings by entity and severity
	FailOpenChecks   *prometheus.CounterVec // Sub-checks that failed and applied their fallback

	// Service metrics
	NormalizerShapes *prometheus.CounterVec // Envelope matched by the normalizer per resource
	BulkItems        *prometheus.CounterVec // Batch runner items by operation and outcome

	// HTTP server metrics (mock API)
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ActiveConnections   prometheus.Gauge
	RateLimitHits       *prometheus.CounterVec
}

// NewMetrics initializes Metrics instance / Initialise une instance Metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_api_requests_total",
				Help: "Total number of backend API calls by method, resource and status code",
			},
			[]string{"method", "resource", "status_code"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "backoffice_api_request_duration_seconds",
				Help: "Backend API call latency in seconds",
				// Buckets optimized for API response times: 10ms to 10s
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "resource"},
		),

		ThrottleWaits: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "backoffice_api_throttle_wait_seconds",
				Help:    "Time spent waiting for the client-side rate limiter",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),

		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_validations_total",
				Help: "Total number of client-side validations by entity and outcome (valid, invalid)",
			},
			[]string{"entity", "outcome"},
		),

		ValidationIssues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_validation_findings_total",
				Help: "Total number of validation findings by entity and severity",
			},
			[]string{"entity", "severity"},
		),

		FailOpenChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_validation_fail_open_total",
				Help: "Total number of backend sub-checks that failed and applied their permissive fallback",
			},
			[]string{"entity", "check"},
		),

		NormalizerShapes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_normalizer_shapes_total",
				Help: "Total number of list responses by resource and matched envelope",
			},
			[]string{"resource", "shape"},
		),

		BulkItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_bulk_items_total",
				Help: "Total number of bulk items processed by operation and status (success, failure)",
			},
			[]string{"operation", "status"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mockapi",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Requests served by the mock backend by method, chi route and status",
			},
			[]string{"method", "path", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mockapi",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Time to serve a mock backend request",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"method", "path"},
		),

		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mockapi",
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "Requests currently being served by the mock backend",
			},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mockapi",
				Name:      "rate_limited_total",
				Help:      "Requests refused with 429 by route",
			},
			[]string{"endpoint"},
		),
	}

	return m
}

// RecordAPIRequest records a backend call; status 0 means a transport failure.
func (m *Metrics) RecordAPIRequest(method, resource string, status int, duration time.Duration) {
	m.APIRequestsTotal.WithLabelValues(method, resource, statusCodeToString(status)).Inc()
	m.APIRequestDuration.WithLabelValues(method, resource).Observe(duration.Seconds())
}

// RecordThrottleWait records time spent in the client-side limiter.
func (m *Metrics) RecordThrottleWait(wait time.Duration) {
	m.ThrottleWaits.Observe(wait.Seconds())
}

// RecordValidation records a validation run and its finding counts.
func (m *Metrics) RecordValidation(entity string, valid bool, errors, warnings, suggestions int) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.Validations.WithLabelValues(entity, outcome).Inc()
	m.ValidationIssues.WithLabelValues(entity, "error").Add(float64(errors))
	m.ValidationIssues.WithLabelValues(entity, "warning").Add(float64(warnings))
	m.ValidationIssues.WithLabelValues(entity, "suggestion").Add(float64(suggestions))
}

// RecordFailOpen records a sub-check that fell back to its permissive value.
func (m *Metrics) RecordFailOpen(entity, check string) {
	m.FailOpenChecks.WithLabelValues(entity, check).Inc()
}

// RecordNormalizerShape records which envelope a list response matched.
func (m *Metrics) RecordNormalizerShape(resource, shape string) {
	m.NormalizerShapes.WithLabelValues(resource, shape).Inc()
}

// RecordBulkItem records one batch runner item.
func (m *Metrics) RecordBulkItem(operation string, success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.BulkItems.WithLabelValues(operation, status).Inc()
}

// RecordHTTPRequest records an HTTP request with method, path, and status code.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(statusCode)).Inc()
}

// RecordHTTPDuration records the duration of an HTTP request.
func (m *Metrics) RecordHTTPDuration(method, path string, duration time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementActiveConnections increments the active connections gauge.
func (m *Metrics) IncrementActiveConnections() {
	m.ActiveConnections.Inc()
}

// DecrementActiveConnections decrements the active connections gauge.
func (m *Metrics) DecrementActiveConnections() {
	m.ActiveConnections.Dec()
}

// RecordRateLimitHit records a rate limit violation for a specific endpoint.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}

// trackedCodes keep their own label value, the rest is folded into its class
var trackedCodes = map[int]bool{
	200: true, 201: true, 204: true,
	400: true, 401: true, 403: true, 404: true, 409: true, 422: true, 429: true,
	500: true, 501: true, 503: true,
}

// statusCodeToString bounds label cardinality / Limite la cardinalité des labels
func statusCodeToString(code int) string {
	switch {
	case code == 0:
		return "error"
	case trackedCodes[code]:
		return strconv.Itoa(code)
	case code >= 200 && code < 600:
		return strconv.Itoa(code/100) + "xx"
	}
	return "unknown"
}
