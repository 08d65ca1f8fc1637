package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search-path Prometheus metrics.
var (
	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trawl",
			Name:      "query_cache_total",
			Help:      "Query result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	QueryCacheWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trawl",
			Name:      "query_cache_write_failures_total",
			Help:      "Cache entries that could not be persisted",
		},
	)

	BackendQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trawl",
			Name:      "backend_query_duration_seconds",
			Help:      "Search backend query duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryCacheTotal)
	prometheus.MustRegister(QueryCacheWriteFailures)
	prometheus.MustRegister(BackendQueryDuration)
	searchMetricsRegistered = true
}
