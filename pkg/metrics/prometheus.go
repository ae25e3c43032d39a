// Package metrics provides Prometheus metrics for the perception service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Latency buckets in milliseconds. Search and generation calls are slow
// network round trips, so the range goes well past the default buckets.
var defaultLatencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000}

// Manager manages all Prometheus metrics for the perception service.
type Manager struct {
	namespace       string
	subsystem       string
	latencyBuckets  []float64
	refreshInterval time.Duration
	constLabels     map[string]string
	registry        prometheus.Registerer

	// Report pipeline
	reportsTotal      *prometheus.CounterVec
	reportLatency     *prometheus.HistogramVec
	sectionsDefaulted *prometheus.CounterVec

	// Evidence gathering
	searchRequests *prometheus.CounterVec
	searchLatency  *prometheus.HistogramVec
	evidenceItems  prometheus.Histogram

	// Generation
	generationLatency *prometheus.HistogramVec
	generationErrors  *prometheus.CounterVec
	promptTokens      prometheus.Histogram

	// Auth
	loginAttempts  *prometheus.CounterVec
	activeSessions prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "perception",
		subsystem:       "analyzer",
		latencyBuckets:  defaultLatencyBuckets,
		refreshInterval: defaultRefreshInterval,
		registry:        prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// Install makes m the target of the package-level Record/Update functions.
func Install(m *Manager) error {
	if m == nil {
		return ErrNotInitialized
	}
	globalManager = m
	return nil
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) latencyVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.latencyBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.reportsTotal = m.counterVec("reports_total",
		"Total number of report requests by style and outcome", "style", "outcome")
	m.reportLatency = m.latencyVec("report_latency_milliseconds",
		"End-to-end report latency in milliseconds", "style")
	m.sectionsDefaulted = m.counterVec("sections_defaulted_total",
		"Sections filled from defaults because the model omitted or malformed them", "style", "section")

	m.searchRequests = m.counterVec("search_requests_total",
		"Search provider requests by category and HTTP status", "category", "status")
	m.searchLatency = m.latencyVec("search_latency_milliseconds",
		"Search provider latency in milliseconds", "category")
	m.evidenceItems = m.histogram("evidence_items",
		"Number of evidence items gathered per report", []float64{0, 1, 2, 4, 6, 8, 10, 15, 20, 40})

	m.generationLatency = m.latencyVec("generation_latency_milliseconds",
		"Generator latency in milliseconds", "provider")
	m.generationErrors = m.counterVec("generation_errors_total",
		"Generator failures by provider", "provider")
	m.promptTokens = m.histogram("prompt_tokens",
		"Estimated prompt size in tokens", prometheus.ExponentialBuckets(128, 2, 10))

	m.loginAttempts = m.counterVec("login_attempts_total",
		"Login attempts by outcome", "outcome")
	m.activeSessions = m.gauge("active_sessions", "Number of live dashboard sessions")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.latencyVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordReport counts one report request.
func RecordReport(style, outcome string) {
	globalManager.reportsTotal.WithLabelValues(style, outcome).Inc()
}

// RecordReportLatency records end-to-end report latency.
func RecordReportLatency(style string, latencyMs float64) {
	globalManager.reportLatency.WithLabelValues(style).Observe(latencyMs)
}

// RecordSectionDefaulted counts a section that fell back to its default.
func RecordSectionDefaulted(style, section string) {
	globalManager.sectionsDefaulted.WithLabelValues(style, section).Inc()
}

// RecordSearchRequest counts a search call; status is the HTTP status or "error".
func RecordSearchRequest(category, status string) {
	globalManager.searchRequests.WithLabelValues(category, status).Inc()
}

// RecordSearchLatency records one search call's latency.
func RecordSearchLatency(category string, latencyMs float64) {
	globalManager.searchLatency.WithLabelValues(category).Observe(latencyMs)
}

// RecordEvidenceItems records how many items a gather produced.
func RecordEvidenceItems(n int) {
	globalManager.evidenceItems.Observe(float64(n))
}

// RecordGenerationLatency records one generator call's latency.
func RecordGenerationLatency(provider string, latencyMs float64) {
	globalManager.generationLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordGenerationError counts a failed generator call.
func RecordGenerationError(provider string) {
	globalManager.generationErrors.WithLabelValues(provider).Inc()
}

// RecordPromptTokens records the token estimate of a prompt.
func RecordPromptTokens(n int) {
	globalManager.promptTokens.Observe(float64(n))
}

// RecordLoginAttempt counts a login attempt; outcome is success, failure or limited.
func RecordLoginAttempt(outcome string) {
	globalManager.loginAttempts.WithLabelValues(outcome).Inc()
}

// UpdateActiveSessions sets the live session count.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RunSystemCollector samples runtime gauges every refresh interval until
// ctx is done.
func (m *Manager) RunSystemCollector(ctx context.Context) {
	t := time.NewTicker(m.refreshInterval)
	defer t.Stop()
	for {
		sampleRuntime(m)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// RunSystemCollector runs the collector of the installed manager.
func RunSystemCollector(ctx context.Context) {
	globalManager.RunSystemCollector(ctx)
}

func sampleRuntime(m *Manager) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapInuse))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
