package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for document fetches.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Load pipeline
	documentsFetched   *prometheus.CounterVec
	fetchLatency       *prometheus.HistogramVec
	revisionsDiscarded *prometheus.CounterVec
	parseFailures      *prometheus.CounterVec
	playersLoaded      prometheus.Gauge
	entriesTotal       *prometheus.GaugeVec
	loadDuration       prometheus.Histogram
	loadFailures       prometheus.Counter
	lastLoadUnix       prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hcp",
		subsystem:        "handicap",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.documentsFetched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "documents_fetched_total",
		Help:        "Player documents fetched by source kind and outcome",
		ConstLabels: m.constLabels,
	}, []string{"source", "outcome"})

	m.fetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "document_fetch_latency_milliseconds",
		Help:        "Latency of a single player document fetch",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.revisionsDiscarded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "revisions_discarded_total",
		Help:        "Raw revisions dropped during normalization by reason",
		ConstLabels: m.constLabels,
	}, []string{"player", "reason"})

	m.parseFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "document_parse_failures_total",
		Help:        "Fetched documents rejected by the normalizer",
		ConstLabels: m.constLabels,
	}, []string{"player"})

	m.playersLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "players_loaded",
		Help:        "Players present in the current snapshot",
		ConstLabels: m.constLabels,
	})

	m.entriesTotal = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "entries",
		Help:        "Normalized handicap entries per player",
		ConstLabels: m.constLabels,
	}, []string{"player"})

	m.loadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "load_duration_milliseconds",
		Help:        "Duration of a full load cycle (fetch, normalize, aggregate)",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.loadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "load_failures_total",
		Help:        "Load cycles that failed",
		ConstLabels: m.constLabels,
	})

	m.lastLoadUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_load_timestamp_seconds",
		Help:        "Unix time of the last successful load",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP requests by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_errors_total",
		Help:        "HTTP error responses by endpoint and error type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Allocated heap bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})
}

// RecordDocumentFetch counts one document fetch.
func (m *Manager) RecordDocumentFetch(source, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.documentsFetched.WithLabelValues(source, outcome).Inc()
	m.fetchLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordRevisionsDiscarded adds n dropped revisions for player.
func (m *Manager) RecordRevisionsDiscarded(player, reason string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.revisionsDiscarded.WithLabelValues(player, reason).Add(float64(n))
}

// RecordParseFailure counts a fetched document of player that failed to normalize. The
// fetch itself was already counted by the source.
func (m *Manager) RecordParseFailure(player string) {
	if !m.enabled {
		return
	}
	m.parseFailures.WithLabelValues(player).Inc()
}

// RecordLoad records a finished load cycle.
func (m *Manager) RecordLoad(durationMs float64, unix int64, entriesByPlayer map[string]int) {
	if !m.enabled {
		return
	}
	m.loadDuration.Observe(durationMs)
	m.lastLoadUnix.Set(float64(unix))
	m.playersLoaded.Set(float64(len(entriesByPlayer)))
	for player, n := range entriesByPlayer {
		m.entriesTotal.WithLabelValues(player).Set(float64(n))
	}
}

// RecordLoadFailure counts a failed load cycle.
func (m *Manager) RecordLoadFailure(durationMs float64) {
	if !m.enabled {
		return
	}
	m.loadFailures.Inc()
	m.loadDuration.Observe(durationMs)
}

// RecordHTTPRequest records a served request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an error response.
func (m *Manager) RecordHTTPError(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystem sets the process gauges.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// Default returns the package-level manager registered on GetRegistry.
func Default() *Manager {
	return globalManager
}

// RecordDocumentFetch counts one document fetch on the global manager.
func RecordDocumentFetch(source, outcome string, latencyMs float64) {
	globalManager.RecordDocumentFetch(source, outcome, latencyMs)
}

// RecordRevisionsDiscarded adds dropped revisions on the global manager.
func RecordRevisionsDiscarded(player, reason string, n int) {
	globalManager.RecordRevisionsDiscarded(player, reason, n)
}

// RecordParseFailure counts a rejected document on the global manager.
func RecordParseFailure(player string) {
	globalManager.RecordParseFailure(player)
}

// RecordLoad records a finished load cycle on the global manager.
func RecordLoad(durationMs float64, unix int64, entriesByPlayer map[string]int) {
	globalManager.RecordLoad(durationMs, unix, entriesByPlayer)
}

// RecordLoadFailure counts a failed load on the global manager.
func RecordLoadFailure(durationMs float64) {
	globalManager.RecordLoadFailure(durationMs)
}

// RecordHTTPRequest records a served request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError records an error response on the global manager.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.RecordHTTPError(endpoint, method, errorType)
}

// UpdateSystem sets the process gauges on the global manager.
func UpdateSystem(memBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memBytes, goroutines)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
