// Package metrics provides Prometheus metrics for the comptrack service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the comptrack service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - record ingestion and summary generation
	recordsUpserted  *prometheus.CounterVec
	recordsEdited    prometheus.Counter
	recordsReplaced  prometheus.Counter
	parseSkips       prometheus.Counter
	summariesBuilt   *prometheus.CounterVec
	gamesRecorded    prometheus.Counter

	// Reminder Ledger Metrics
	remindersDispatched prometheus.Counter
	remindersRolledOver prometheus.Counter
	ledgerEvents        prometheus.Gauge

	// Store Metrics - substrate health
	envelopesScanned   prometheus.Counter
	storeAppendLatency prometheus.Histogram
	storeScanLatency   prometheus.Histogram
	channelCount       prometheus.Gauge
	envelopeCount      prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Tracking Metrics
	errorsByEndpoint *prometheus.CounterVec
	errorsByType     *prometheus.CounterVec
	errorLatency     *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "comptrack",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.recordsUpserted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_upserted_total",
			Help:      "Total number of records written by the upsert engine, by record kind",
		},
		[]string{"kind"},
	)

	m.recordsEdited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_edited_total",
		Help:      "Total number of records updated in place (message identity preserved)",
	})

	m.recordsReplaced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_replaced_total",
		Help:      "Total number of records replaced by delete-then-append",
	})

	m.parseSkips = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "parse_skips_total",
		Help:      "Total number of rows skipped during aggregation because a required field failed to parse",
	})

	m.summariesBuilt = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "summaries_built_total",
			Help:      "Total number of summary reports built, by summary kind",
		},
		[]string{"kind"},
	)

	m.gamesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_recorded_total",
		Help:      "Total number of game entries appended to the shared log",
	})

	// Reminder Ledger Metrics
	m.remindersDispatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reminders_dispatched_total",
		Help:      "Total number of reminder events surfaced in a daily checklist",
	})

	m.remindersRolledOver = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reminders_rolled_over_total",
		Help:      "Total number of past-due reminder events carried forward to the next day",
	})

	m.ledgerEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_events",
		Help:      "Current number of events in the reminder ledger",
	})

	// Store Metrics
	m.envelopesScanned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "envelopes_scanned_total",
		Help:      "Total number of envelopes read by bounded history scans",
	})

	m.storeAppendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_append_latency_milliseconds",
		Help:      "Store append operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeScanLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_scan_latency_milliseconds",
		Help:      "Store scan operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.channelCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_channels",
		Help:      "Current number of channels across all categories",
	})

	m.envelopeCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_envelopes",
		Help:      "Current number of stored envelopes",
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error Tracking Metrics
	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint and method",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorsByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of failed operations in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current system memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Garbage collection pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Business Metrics Functions.

// RecordUpsert increments the upsert counter for a record kind.
func RecordUpsert(kind string) {
	globalManager.recordsUpserted.WithLabelValues(kind).Inc()
}

// RecordEdit increments the in-place edit counter.
func RecordEdit() {
	globalManager.recordsEdited.Inc()
}

// RecordReplace increments the delete-then-append counter.
func RecordReplace() {
	globalManager.recordsReplaced.Inc()
}

// RecordParseSkip increments the aggregation parse-skip counter.
func RecordParseSkip() {
	globalManager.parseSkips.Inc()
}

// RecordSummary increments the summary counter for a summary kind.
func RecordSummary(kind string) {
	globalManager.summariesBuilt.WithLabelValues(kind).Inc()
}

// RecordGame increments the game log counter.
func RecordGame() {
	globalManager.gamesRecorded.Inc()
}

// Reminder Ledger Metrics Functions.

// RecordReminderDispatch increments the dispatched reminders counter.
func RecordReminderDispatch() {
	globalManager.remindersDispatched.Inc()
}

// RecordReminderRollover increments the rolled-over reminders counter.
func RecordReminderRollover() {
	globalManager.remindersRolledOver.Inc()
}

// UpdateLedgerEvents sets the current ledger event count.
func UpdateLedgerEvents(count int) {
	globalManager.ledgerEvents.Set(float64(count))
}

// Store Metrics Functions.

// RecordEnvelopesScanned adds to the scanned envelope counter.
func RecordEnvelopesScanned(n int) {
	globalManager.envelopesScanned.Add(float64(n))
}

// RecordStoreAppendLatency records store append latency.
func RecordStoreAppendLatency(latencyMs float64) {
	globalManager.storeAppendLatency.Observe(latencyMs)
}

// RecordStoreScanLatency records store scan latency.
func RecordStoreScanLatency(latencyMs float64) {
	globalManager.storeScanLatency.Observe(latencyMs)
}

// UpdateChannelCount sets the current channel count.
func UpdateChannelCount(count int) {
	globalManager.channelCount.Set(float64(count))
}

// UpdateEnvelopeCount sets the current envelope count.
func UpdateEnvelopeCount(count int) {
	globalManager.envelopeCount.Set(float64(count))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Tracking Metrics Functions.

// RecordErrorByEndpoint increments the per-endpoint error counter.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType increments the per-type error counter.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorLatency records how long a failed operation took.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
