package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	QueryResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsage",
			Name:      "query_resolutions_total",
			Help:      "Resolved queries by terminal pipeline stage",
		},
		[]string{"stage"}, // "faq" / "preset" / "generative" / "degraded"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsage",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimsage",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsage",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsage",
			Name:      "generation_requests_total",
			Help:      "Total number of completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimsage",
			Name:      "generation_request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	AdmissionRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "claimsage",
			Name:      "admission_rejections_total",
			Help:      "Requests rejected by the rate governor",
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers pipeline metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryResolutionsTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(AdmissionRejectionsTotal)
	queryMetricsRegistered = true
}
