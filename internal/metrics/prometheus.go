package metrics

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_chat_requests_total",
			Help: "Chat requests by derived intent and outcome",
		},
		[]string{"intent", "status"},
	)

	ChatDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coach_chat_duration_seconds",
			Help:    "Chat request handling duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	RetrievalChunks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coach_retrieval_chunks",
			Help:    "Number of passages retrieved per general-intent request",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8},
		},
	)

	LLMTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_llm_tokens_total",
			Help: "Tokens consumed by completion calls",
		},
		[]string{"model", "type"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coach_cache_hits_total",
			Help: "Reply cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coach_cache_misses_total",
			Help: "Reply cache misses",
		},
	)
)

// MetricsHandler exposes the default prometheus registry on a fiber route.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
