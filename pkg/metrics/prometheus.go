package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Allocation metrics
	allocationRuns    *prometheus.CounterVec
	slotOutcomes      *prometheus.CounterVec
	allocationLatency prometheus.Histogram
	lastAllocation    prometheus.Gauge

	// Roster metrics
	rosterSize    prometheus.Gauge
	rosterChanges *prometheus.CounterVec

	// Storage metrics
	storeOperations *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec

	// Idempotency metrics
	idempotencyEntries prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dutyrota",
		subsystem:        "rotation",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
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

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}, labels)
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
	m.allocationRuns = m.counterVec("allocation_runs_total",
		"Allocation runs by outcome (applied, replayed, rejected)", "outcome")
	m.slotOutcomes = m.counterVec("slot_outcomes_total",
		"Per-slot allocation outcomes by selection rule", "slot", "rule")
	m.allocationLatency = m.histogram("allocation_latency_milliseconds",
		"Time to load, allocate and persist one run in milliseconds", m.histogramBuckets)
	m.lastAllocation = m.gauge("last_allocation_timestamp_seconds",
		"Unix time of the last applied allocation run")

	m.rosterSize = m.gauge("roster_size", "Number of people on the roster")
	m.rosterChanges = m.counterVec("roster_changes_total",
		"Roster mutations by operation (add, update, rename, delete, reset)", "operation")

	m.storeOperations = m.counterVec("store_operations_total",
		"State store operations by driver, operation and result", "driver", "operation", "result")
	m.storeLatency = m.histogramVec("store_latency_milliseconds",
		"State store operation latency in milliseconds", m.histogramBuckets, "driver", "operation")

	m.idempotencyEntries = m.gauge("idempotency_entries",
		"Number of remembered allocation request ids")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("http_errors_total",
		"HTTP error responses by endpoint, method and error type", "endpoint", "method", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total",
		"Errors by type and severity", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordAllocationRun counts an allocation run with its outcome.
func RecordAllocationRun(outcome string) {
	globalManager.allocationRuns.WithLabelValues(outcome).Inc()
}

// RecordSlotOutcome counts the rule that decided a slot.
func RecordSlotOutcome(slot, rule string) {
	globalManager.slotOutcomes.WithLabelValues(slot, rule).Inc()
}

// RecordAllocationLatency records the duration of one run in milliseconds.
func RecordAllocationLatency(latencyMs float64) {
	globalManager.allocationLatency.Observe(latencyMs)
}

// UpdateLastAllocation sets the time of the last applied run.
func UpdateLastAllocation(unixSeconds float64) {
	globalManager.lastAllocation.Set(unixSeconds)
}

// UpdateRosterSize sets the roster size gauge.
func UpdateRosterSize(count int) {
	globalManager.rosterSize.Set(float64(count))
}

// RecordRosterChange counts a roster mutation.
func RecordRosterChange(operation string) {
	globalManager.rosterChanges.WithLabelValues(operation).Inc()
}

// RecordStoreOperation counts a store call and observes its latency.
func RecordStoreOperation(driver, operation string, latencyMs float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	globalManager.storeOperations.WithLabelValues(driver, operation, result).Inc()
	globalManager.storeLatency.WithLabelValues(driver, operation).Observe(latencyMs)
}

// UpdateIdempotencyEntries sets the number of remembered request ids.
func UpdateIdempotencyEntries(count int64) {
	globalManager.idempotencyEntries.Set(float64(count))
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an error response for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the package-level metrics live on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
