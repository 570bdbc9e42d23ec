package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Business metrics
	TasksCreated       *prometheus.CounterVec
	TaskTransitions    *prometheus.CounterVec
	TaskCompletionErrs *prometheus.CounterVec
	RoutesOptimized    *prometheus.CounterVec
	ItemsAllocated     *prometheus.CounterVec

	// Document client metrics
	DocumentRequests        *prometheus.CounterVec
	DocumentRequestDuration *prometheus.HistogramVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "wms",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	// Register standard Go metrics
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.TasksCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "tasks_created_total",
			Help:      "Total number of warehouse tasks created",
		},
		[]string{"service", "task_type"},
	)

	m.TaskTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "task_transitions_total",
			Help:      "Total number of task status transitions",
		},
		[]string{"service", "task_type", "transition"},
	)

	m.TaskCompletionErrs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "task_completion_errors_total",
			Help:      "Completions that finished with a non-empty error log",
		},
		[]string{"service", "task_type"},
	)

	m.RoutesOptimized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "routes_optimized_total",
			Help:      "Total number of pick routes optimized",
		},
		[]string{"service", "mode"},
	)

	m.ItemsAllocated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "items_allocated_total",
			Help:      "Line items processed by the bin allocator",
		},
		[]string{"service", "outcome"},
	)

	m.DocumentRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "document_requests_total",
			Help:      "Stock document creation requests",
		},
		[]string{"service", "document_type", "status"},
	)

	m.DocumentRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "document_request_duration_seconds",
			Help:      "Stock document creation duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "document_type"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.TasksCreated,
		m.TaskTransitions,
		m.TaskCompletionErrs,
		m.RoutesOptimized,
		m.ItemsAllocated,
		m.DocumentRequests,
		m.DocumentRequestDuration,
	)

	return m
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordTaskCreated records a task creation
func (m *Metrics) RecordTaskCreated(taskType string) {
	m.TasksCreated.WithLabelValues(m.serviceName, taskType).Inc()
}

// RecordTaskTransition records a task status transition
func (m *Metrics) RecordTaskTransition(taskType, transition string) {
	m.TaskTransitions.WithLabelValues(m.serviceName, taskType, transition).Inc()
}

// RecordTaskCompletionErrors records a degraded completion
func (m *Metrics) RecordTaskCompletionErrors(taskType string) {
	m.TaskCompletionErrs.WithLabelValues(m.serviceName, taskType).Inc()
}

// RecordRouteOptimized records a route optimization pass
func (m *Metrics) RecordRouteOptimized(mode string) {
	m.RoutesOptimized.WithLabelValues(m.serviceName, mode).Inc()
}

// RecordItemAllocated records an allocator outcome per item
func (m *Metrics) RecordItemAllocated(outcome string) {
	m.ItemsAllocated.WithLabelValues(m.serviceName, outcome).Inc()
}

// RecordDocumentRequest records a document creation attempt
func (m *Metrics) RecordDocumentRequest(documentType, status string, duration time.Duration) {
	m.DocumentRequests.WithLabelValues(m.serviceName, documentType, status).Inc()
	m.DocumentRequestDuration.WithLabelValues(m.serviceName, documentType).Observe(duration.Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
