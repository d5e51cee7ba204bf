// Package metrics provides Prometheus metrics for the assigner service.
package metrics

import (
	"slices"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assignment outcomes used as label values.
const (
	OutcomeAssigned     = "assigned"
	OutcomeInvalidTask  = "invalid_task"
	OutcomeNoCandidates = "no_candidates"
	OutcomeScoringError = "scoring_error"
	OutcomeError        = "error"
)

// Manager manages all Prometheus metrics for the assigner service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Assignment metrics
	assignments          *prometheus.CounterVec
	candidatesPerRequest prometheus.Histogram
	bulkRequestSize      prometheus.Histogram
	assignmentLatency    prometheus.Histogram

	// Scorer metrics
	scoringLatency  *prometheus.HistogramVec
	scoringErrors   *prometheus.CounterVec
	scoreCacheHits  prometheus.Counter
	scoreCacheMiss  prometheus.Counter
	scoreCacheError prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Process-wide manager and the registry served at /metrics.
var (
	globalManager  atomic.Pointer[Manager]             //nolint:gochecknoglobals // singleton metrics manager
	globalRegistry atomic.Pointer[prometheus.Registry] //nolint:gochecknoglobals // custom registry without default Go metrics
)

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Setup()
}

// Setup replaces the process-wide manager with one built from opts on a
// fresh registry and returns it. Call it at startup, before routes are
// registered, so /metrics serves the new registry.
func Setup(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	m := NewManager(append(slices.Clip(opts), WithPrometheusRegistry(reg))...)
	globalRegistry.Store(reg)
	globalManager.Store(m)
	return m
}

// active returns the global manager, or nil while recording is disabled.
func active() *Manager {
	m := globalManager.Load()
	if !m.enabled.Load() {
		return nil
	}
	return m
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "assigner",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.NewRegistry(),
	}

	m.enabled.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.assignments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("assignments_total"),
		Help:        "Total number of assignment requests by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.candidatesPerRequest = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("candidates_per_request"),
		Help:        "Number of candidates submitted per assignment request",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		ConstLabels: labels,
	})

	m.bulkRequestSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("bulk_request_size"),
		Help:        "Number of assignment requests per bulk call",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		ConstLabels: labels,
	})

	m.assignmentLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("assignment_latency_milliseconds"),
		Help:        "End-to-end latency of feature building plus ranking",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.scoringLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scoring_latency_milliseconds"),
		Help:        "Latency of a batched scorer call in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"scorer"})

	m.scoringErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scoring_errors_total"),
		Help:        "Total number of failed scorer calls",
		ConstLabels: labels,
	}, []string{"scorer"})

	m.scoreCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("score_cache_hits_total"),
		Help:        "Feature vectors whose score was served from cache",
		ConstLabels: labels,
	})

	m.scoreCacheMiss = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("score_cache_misses_total"),
		Help:        "Feature vectors that had to be scored by the model",
		ConstLabels: labels,
	})

	m.scoreCacheError = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("score_cache_errors_total"),
		Help:        "Score cache operations that failed and fell back to the model",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_in_flight_requests"),
		Help:        "Number of HTTP requests currently being served",
		ConstLabels: labels,
	})

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Total number of errors by type",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("error_latency_milliseconds"),
			Help:        "Latency of operations that resulted in errors",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordAssignment increments the assignment counter for an outcome.
func RecordAssignment(outcome string) {
	m := active()
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(outcome).Inc()
}

// RecordCandidatesPerRequest observes the candidate count of one request.
func RecordCandidatesPerRequest(n int) {
	m := active()
	if m == nil {
		return
	}
	m.candidatesPerRequest.Observe(float64(n))
}

// RecordBulkRequestSize observes the number of items in a bulk call.
func RecordBulkRequestSize(n int) {
	m := active()
	if m == nil {
		return
	}
	m.bulkRequestSize.Observe(float64(n))
}

// RecordAssignmentLatency records end-to-end assignment latency.
func RecordAssignmentLatency(latencyMs float64) {
	m := active()
	if m == nil {
		return
	}
	m.assignmentLatency.Observe(latencyMs)
}

// RecordScoringLatency records the latency of one batched scorer call.
func RecordScoringLatency(scorer string, latencyMs float64) {
	m := active()
	if m == nil {
		return
	}
	m.scoringLatency.WithLabelValues(scorer).Observe(latencyMs)
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError(scorer string) {
	m := active()
	if m == nil {
		return
	}
	m.scoringErrors.WithLabelValues(scorer).Inc()
}

// RecordScoreCacheHits adds n cache hits.
func RecordScoreCacheHits(n int) {
	m := active()
	if m == nil || n <= 0 {
		return
	}
	m.scoreCacheHits.Add(float64(n))
}

// RecordScoreCacheMisses adds n cache misses.
func RecordScoreCacheMisses(n int) {
	m := active()
	if m == nil || n <= 0 {
		return
	}
	m.scoreCacheMiss.Add(float64(n))
}

// RecordScoreCacheError increments the cache error counter.
func RecordScoreCacheError() {
	m := active()
	if m == nil {
		return
	}
	m.scoreCacheError.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	m := active()
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	m := active()
	if m == nil {
		return
	}
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// AddHTTPInFlight adjusts the in-flight request gauge by delta.
func AddHTTPInFlight(delta int) {
	m := active()
	if m == nil {
		return
	}
	m.httpInFlight.Add(float64(delta))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	m := active()
	if m == nil {
		return
	}
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	m := active()
	if m == nil {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	m := active()
	if m == nil {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	m := active()
	if m == nil {
		return
	}
	m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.Load().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.Load().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.Load().systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return globalRegistry.Load()
}
