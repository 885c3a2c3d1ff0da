// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Load metrics
	RecordsLoaded  *prometheus.CounterVec
	LoadErrors     *prometheus.CounterVec
	RecordsDropped *prometheus.CounterVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Analysis metrics
	DecompositionsComputed *prometheus.CounterVec
	InsufficientDataTotal  prometheus.Counter
	CorrelationsComputed   *prometheus.CounterVec
	ExportsGenerated       *prometheus.CounterVec

	// Latency metrics
	StoreQueryDuration *prometheus.HistogramVec
	RequestDuration    *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulLoad prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "traffic_analytics"
	}

	return &Metrics{
		// Load metrics
		RecordsLoaded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "records_loaded_total",
			Help:      "Total number of records loaded and standardized by backend",
		}, []string{"backend"}),
		LoadErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "errors_total",
			Help:      "Total number of load errors by backend",
		}, []string{"backend"}),
		RecordsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "records_dropped_total",
			Help:      "Total number of records dropped during standardization by reason",
		}, []string{"reason"}),

		// Cache metrics
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of month cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of month cache misses",
		}),

		// Analysis metrics
		DecompositionsComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "decompositions_total",
			Help:      "Total number of decompositions computed by method",
		}, []string{"method"}),
		InsufficientDataTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "insufficient_data_total",
			Help:      "Total number of decomposition requests rejected for short series",
		}),
		CorrelationsComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "correlations_total",
			Help:      "Total number of correlation analyses computed by method",
		}, []string{"method"}),
		ExportsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "exports_total",
			Help:      "Total number of CSV exports generated by kind",
		}, []string{"kind"}),

		// Latency metrics
		StoreQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Record store query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),

		// Health metrics
		LastSuccessfulLoad: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_load_timestamp",
			Help:      "Unix timestamp of last successful month load",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordLoad records a successful month load.
func RecordLoad(backend string, records int) {
	DefaultMetrics.RecordsLoaded.WithLabelValues(backend).Add(float64(records))
}

// RecordLoadError increments the load error counter for a backend.
func RecordLoadError(backend string) {
	DefaultMetrics.LoadErrors.WithLabelValues(backend).Inc()
}

// RecordDropped records records dropped during standardization.
func RecordDropped(reason string, count int) {
	if count > 0 {
		DefaultMetrics.RecordsDropped.WithLabelValues(reason).Add(float64(count))
	}
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	DefaultMetrics.CacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	DefaultMetrics.CacheMisses.Inc()
}

// RecordDecomposition increments the decomposition counter for a method.
func RecordDecomposition(method string) {
	DefaultMetrics.DecompositionsComputed.WithLabelValues(method).Inc()
}

// RecordInsufficientData increments the short-series rejection counter.
func RecordInsufficientData() {
	DefaultMetrics.InsufficientDataTotal.Inc()
}

// RecordCorrelation increments the correlation counter for a method.
func RecordCorrelation(method string) {
	DefaultMetrics.CorrelationsComputed.WithLabelValues(method).Inc()
}

// RecordExport increments the export counter for a kind.
func RecordExport(kind string) {
	DefaultMetrics.ExportsGenerated.WithLabelValues(kind).Inc()
}

// RecordStoreQuery records record store query latency.
func RecordStoreQuery(backend, operation string, seconds float64) {
	DefaultMetrics.StoreQueryDuration.WithLabelValues(backend, operation).Observe(seconds)
}
