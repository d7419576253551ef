package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/melking/melking-bfa-go/internal/domain"
)

// Cache names used as metric labels.
const (
	CacheLedger = "ledger"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	externalErrors     *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	exportedRows       *prometheus.CounterVec
	allocationFailures prometheus.Counter
	fallbacks          *prometheus.CounterVec
	requestsTotal      *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. A private registry lets tests build as many
// Metrics as they like.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "melking_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "melking_external_errors_total",
				Help: "Total errors from backend services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "melking_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "melking_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		exportedRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "melking_export_rows_total",
				Help: "Rows written to Excel exports.",
			},
			[]string{"export"},
		),
		allocationFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "melking_allocation_fetch_failures_total",
				Help: "Shared-bill allocation fetches that failed during export.",
			},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "melking_fallbacks_total",
				Help: "Degraded responses served instead of the primary result.",
			},
			[]string{"kind"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "melking_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// AddExportedRows counts rows written by an export.
func (m *Metrics) AddExportedRows(export string, rows int) {
	m.exportedRows.WithLabelValues(export).Add(float64(rows))
}

// IncrAllocationFailure counts one failed allocation fetch.
func (m *Metrics) IncrAllocationFailure() {
	m.allocationFailures.Inc()
}

// IncrFallback counts a degraded response ("own_unit", "legal_ai").
func (m *Metrics) IncrFallback(kind string) {
	m.fallbacks.WithLabelValues(kind).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// Snapshot returns the finance counters for GET /v1/metrics/finance.
func (m *Metrics) Snapshot() *domain.FinanceMetrics {
	success := counterValue(m.requestsTotal.WithLabelValues("success"))
	failed := counterValue(m.requestsTotal.WithLabelValues("error"))
	hits := counterValue(m.cacheHits.WithLabelValues(CacheLedger))
	misses := counterValue(m.cacheMisses.WithLabelValues(CacheLedger))

	total := success + failed
	errorRate, hitRate := 0.0, 0.0
	if total > 0 {
		errorRate = failed / total
	}
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	rows := counterValue(m.exportedRows.WithLabelValues("transactions")) +
		counterValue(m.exportedRows.WithLabelValues("debt_credit"))

	return &domain.FinanceMetrics{
		TotalRequests:      int64(total),
		ErrorRate:          errorRate,
		ExportedRows:       int64(rows),
		AllocationFailures: int64(counterValue(m.allocationFailures)),
		OwnUnitFallbacks:   int64(counterValue(m.fallbacks.WithLabelValues("own_unit"))),
		LegalAIFallbacks:   int64(counterValue(m.fallbacks.WithLabelValues("legal_ai"))),
		CacheHitRate:       hitRate,
		Period:             "all_time",
	}
}

// counterValue reads the current value of a counter.
func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
