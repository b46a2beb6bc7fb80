package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "rollbook"

// Metrics holds the Prometheus collectors for one server. Each instance owns
// its registry so servers and tests never share collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight *prometheus.GaugeVec

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	recordsTotal        prometheus.Gauge
	recordsAverageMarks prometheus.Gauge
	skippedLinesTotal   prometheus.Counter

	authRequests *prometheus.CounterVec
	healthChecks *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	counterVec := func(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: subsystem, Name: name, Help: help,
		}, labels)
	}
	histogramVec := func(subsystem, name, help string, labels ...string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: subsystem, Name: name, Help: help,
			Buckets: prometheus.DefBuckets,
		}, labels)
	}

	return &Metrics{
		registry: reg,

		httpRequests: counterVec("http", "requests_total", "HTTP requests by route and status code", "method", "endpoint", "status_code"),
		httpDuration: histogramVec("http", "request_duration_seconds", "HTTP request latency", "method", "endpoint"),
		httpInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "http", Name: "requests_in_flight",
			Help: "HTTP requests currently being served",
		}, []string{"method", "endpoint"}),

		operations:        counterVec("record", "operations_total", "Roll book operations by outcome", "operation", "status"),
		operationDuration: histogramVec("record", "operation_duration_seconds", "Roll book operation latency, save included", "operation"),

		recordsTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "records", Name: "total",
			Help: "Student records held in memory",
		}),
		recordsAverageMarks: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "records", Name: "average_marks",
			Help: "Average marks across all student records",
		}),
		skippedLinesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "skipped_lines_total",
			Help: "Malformed record lines skipped while loading",
		}),

		authRequests: counterVec("", "auth_requests_total", "API key checks by outcome", "status"),
		healthChecks: counterVec("", "health_checks_total", "Health checks by outcome", "status"),
	}
}

// Registry exposes the registry for the /metrics handler
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// RecordHTTPRequest counts one served request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordOperation counts a dispatched roll book operation
func (m *Metrics) RecordOperation(operation string, success bool, duration time.Duration) {
	m.operations.WithLabelValues(operation, outcome(success)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateRecordStats sets the record gauges
func (m *Metrics) UpdateRecordStats(records int, averageMarks float64) {
	m.recordsTotal.Set(float64(records))
	m.recordsAverageMarks.Set(averageMarks)
}

// RecordSkippedLines counts malformed lines dropped by a reload
func (m *Metrics) RecordSkippedLines(n int) {
	m.skippedLinesTotal.Add(float64(n))
}

// RecordAuthRequest counts one API key check
func (m *Metrics) RecordAuthRequest(success bool) {
	m.authRequests.WithLabelValues(outcome(success)).Inc()
}

// RecordHealthCheck counts one health probe
func (m *Metrics) RecordHealthCheck(success bool) {
	m.healthChecks.WithLabelValues(outcome(success)).Inc()
}

// InstrumentHandler wraps a route handler with request metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		inFlight := m.httpInFlight.WithLabelValues(method, endpoint)
		inFlight.Inc()
		defer inFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		handler(sw, r)

		m.RecordHTTPRequest(method, endpoint, sw.status, time.Since(start))
	}
}

// InstrumentAuthMiddleware counts the outcome of requests that carry a key
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		wrapped := next(h)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-API-Key") == "" {
				wrapped.ServeHTTP(w, r)
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			wrapped.ServeHTTP(sw, r)
			m.RecordAuthRequest(sw.status != http.StatusUnauthorized)
		})
	}
}

// statusWriter remembers the status code written by a handler
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
