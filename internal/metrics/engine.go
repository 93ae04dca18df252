package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine Prometheus metrics.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopdex",
			Name:      "engine_requests_total",
			Help:      "Total number of engine operations",
		},
		[]string{"operation", "status"},
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopdex",
			Name:      "engine_request_duration_seconds",
			Help:      "Engine operation duration in seconds, catalog fetch included",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	EngineResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopdex",
			Name:      "engine_results",
			Help:      "Number of ranked results returned per operation",
			Buckets:   []float64{0, 1, 2, 5, 10, 20},
		},
		[]string{"operation"},
	)

	RecommendStrategyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopdex",
			Name:      "recommend_strategy_total",
			Help:      "Recommendations served per strategy",
		},
		[]string{"strategy"},
	)

	SnapshotCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopdex",
			Name:      "snapshot_cache_total",
			Help:      "Catalog snapshot cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CatalogBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "shopdex",
			Name:      "catalog_breaker_state",
			Help:      "Catalog circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers Prometheus engine and HTTP metrics on the
// default registry. Must be called from main; repeated calls are no-ops.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestsInFlight)
	prometheus.MustRegister(EngineRequestsTotal)
	prometheus.MustRegister(EngineRequestDuration)
	prometheus.MustRegister(EngineResults)
	prometheus.MustRegister(RecommendStrategyTotal)
	prometheus.MustRegister(SnapshotCacheTotal)
	prometheus.MustRegister(CatalogBreakerState)
	engineMetricsRegistered = true
}
