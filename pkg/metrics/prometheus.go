// Package metrics provides Prometheus metrics for the lumo analytics engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Ingestion metrics
	eventsAppended   prometheus.Counter
	eventsDropped    prometheus.Counter
	researchAppended prometheus.Counter

	// Gamification metrics
	activitiesRecorded prometheus.Counter
	badgesAwarded      prometheus.Counter
	levelUps           prometheus.Counter

	// Reporting metrics
	reportsGenerated prometheus.Counter
	reportDuration   prometheus.Histogram

	// Store metrics
	eventLogAppendLatency prometheus.Histogram
	eventLogQueryLatency  prometheus.Histogram
	progressWriteLatency  prometheus.Histogram
	learnersTotal         prometheus.Gauge
	sessionsTracked       prometheus.Gauge

	// Queue and worker metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueEnqueueErrs prometheus.Counter
	workerCount      prometheus.Gauge
	workerLatency    prometheus.Histogram
	workerErrors     prometheus.Counter

	// Error tracking
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lumo",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_appended_total",
		Help:      "Total number of analytics events appended to the log",
	})
	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_dropped_total",
		Help:      "Total number of analytics events dropped (best-effort contract)",
	})
	m.researchAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "research_events_appended_total",
		Help:      "Total number of research events appended to the log",
	})

	m.activitiesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "activities_recorded_total",
		Help:      "Total number of gamified activity submissions processed",
	})
	m.badgesAwarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "badges_awarded_total",
		Help:      "Total number of badges awarded",
	})
	m.levelUps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "level_ups_total",
		Help:      "Total number of level increases",
	})

	m.reportsGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_generated_total",
		Help:      "Total number of research reports generated",
	})
	m.reportDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_generation_duration_ms",
		Help:      "Report generation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.eventLogAppendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "eventlog_append_latency_ms",
		Help:      "Event log append latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.eventLogQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "eventlog_query_latency_ms",
		Help:      "Event log range query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.progressWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "progress_write_latency_ms",
		Help:      "Progress store write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.learnersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "learners_total",
		Help:      "Number of learners with a persisted progress record",
	})
	m.sessionsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_tracked",
		Help:      "Number of sessions currently held by the session tracker",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued tracking events",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured tracking queue capacity",
	})
	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Tracking queue utilization ratio (0-1)",
	})
	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of successful enqueues",
	})
	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of dequeued events",
	})
	m.queueEnqueueErrs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of failed enqueues (full or closed queue)",
	})
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of ingestion workers",
	})
	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_ms",
		Help:      "Per-event ingestion processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of ingestion worker errors",
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Total errors by component and kind",
	}, []string{"component", "kind"})
}

// Handler returns an HTTP handler exposing the manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package-level helpers over the global manager.

// Handler exposes the global registry for a /metrics endpoint.
func Handler() http.Handler { return globalManager.Handler() }

// RecordEventAppended increments the appended events counter.
func RecordEventAppended() {
	globalManager.eventsAppended.Inc()
}

// RecordEventDropped increments the dropped events counter.
func RecordEventDropped() {
	globalManager.eventsDropped.Inc()
}

// RecordResearchEventAppended increments the research events counter.
func RecordResearchEventAppended() {
	globalManager.researchAppended.Inc()
}

// RecordActivityRecorded increments the learning activities counter.
func RecordActivityRecorded() {
	globalManager.activitiesRecorded.Inc()
}

// RecordBadgeAwarded increments the awarded badges counter.
func RecordBadgeAwarded() {
	globalManager.badgesAwarded.Inc()
}

// RecordLevelUp increments the level-ups counter.
func RecordLevelUp() {
	globalManager.levelUps.Inc()
}

// RecordReportGenerated increments the generated reports counter.
func RecordReportGenerated() {
	globalManager.reportsGenerated.Inc()
}

// RecordReportDuration records how long a report took to build.
func RecordReportDuration(latencyMs float64) {
	globalManager.reportDuration.Observe(latencyMs)
}

// RecordEventLogAppendLatency records an event log append latency.
func RecordEventLogAppendLatency(latencyMs float64) {
	globalManager.eventLogAppendLatency.Observe(latencyMs)
}

// RecordEventLogQueryLatency records an event log range query latency.
func RecordEventLogQueryLatency(latencyMs float64) {
	globalManager.eventLogQueryLatency.Observe(latencyMs)
}

// RecordProgressWriteLatency records a progress store write latency.
func RecordProgressWriteLatency(latencyMs float64) {
	globalManager.progressWriteLatency.Observe(latencyMs)
}

// UpdateLearnersTotal sets the number of learners with stored progress.
func UpdateLearnersTotal(count int) {
	globalManager.learnersTotal.Set(float64(count))
}

// UpdateSessionsTracked sets the number of sessions in the tracker cache.
func UpdateSessionsTracked(count int64) {
	globalManager.sessionsTracked.Set(float64(count))
}

// UpdateQueueSize sets the current ingestion queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the ingestion queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the ingestion queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrs.Inc()
}

// UpdateWorkerCount sets the number of running ingestion workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records a worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker errors counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordErrorByComponent tracks an error for a component with a kind label.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}
