package observability

import (
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the disclosure API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	recordsFetched  *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "disclosure_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disclosure_upstream_errors_total",
				Help: "Total errors from the open-data portal.",
			},
			[]string{"dataset"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disclosure_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disclosure_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		recordsFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disclosure_records_fetched_total",
				Help: "Total raw records pulled from the portal.",
			},
			[]string{"dataset"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disclosure_requests_total",
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

// IncrUpstreamError increments the upstream error counter for a dataset.
func (m *Metrics) IncrUpstreamError(dataset string) {
	m.upstreamErrors.WithLabelValues(dataset).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// AddRecordsFetched counts raw records pulled from a dataset.
func (m *Metrics) AddRecordsFetched(dataset string, n int) {
	m.recordsFetched.WithLabelValues(dataset).Add(float64(n))
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// Snapshot returns current service counters for the status endpoint.
func (m *Metrics) Snapshot() *domain.ServiceStats {
	// Prometheus counters expose cumulative values.
	success := getCounterValue(m.requestsTotal, "success")
	failure := getCounterValue(m.requestsTotal, "error")
	total := success + failure

	hits := getCounterValue(m.cacheHits, "index") +
		getCounterValue(m.cacheHits, "transactions") +
		getCounterValue(m.cacheHits, "metadata")
	misses := getCounterValue(m.cacheMisses, "index") +
		getCounterValue(m.cacheMisses, "transactions") +
		getCounterValue(m.cacheMisses, "metadata")

	upstream := getCounterValue(m.upstreamErrors, "committees") +
		getCounterValue(m.upstreamErrors, "contributions") +
		getCounterValue(m.upstreamErrors, "expenditures")

	stats := &domain.ServiceStats{
		TotalRequests:  int64(total),
		UpstreamErrors: int64(upstream),
	}
	if total > 0 {
		stats.ErrorRate = failure / total
	}
	if hits+misses > 0 {
		stats.CacheHitRate = hits / (hits + misses)
	}
	return stats
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
