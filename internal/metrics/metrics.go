// Package metrics defines Prometheus metrics for the deal engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "deals"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Health probe gauges, set by middleware on each probe.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last liveness probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last readiness probe succeeded, 0 otherwise.",
	})
)

// Scoring metrics.
var (
	ScoringDistribution = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scoring_distribution",
		Help:      "Distribution of computed deal scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11), // 0, 10, 20, ..., 100
	}, []string{"category"})

	ScoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scoring_duration_seconds",
		Help:      "Duration of single-listing scoring calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	ScoringErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scoring_errors_total",
		Help:      "Total number of scoring failures.",
	})
)

// Market price metrics.
var (
	MarketQueryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "market_query_failures_total",
		Help:      "Total number of failed market comparable queries.",
	})

	MarketNoDataTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "market_no_data_total",
		Help:      "Total number of scoring calls with no usable market comparables.",
	})

	MarketFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "market_fallback_total",
		Help:      "Total number of market estimates served by the brand-only fallback window.",
	})

	MarketQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "market_query_duration_seconds",
		Help:      "Duration of market comparable queries in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Deal of the day metrics.
var (
	DealCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deal_cache_hits_total",
		Help:      "Total number of deal-of-the-day requests served from cache.",
	})

	DealCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deal_cache_misses_total",
		Help:      "Total number of deal-of-the-day requests that recomputed the selection.",
	})
)

// Batch rescore metrics.
var (
	RescoreListingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rescore_listings_total",
		Help:      "Total number of listings processed by batch rescoring.",
	})

	RescoreErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rescore_errors_total",
		Help:      "Total number of listing failures during batch rescoring.",
	})

	RescoreDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rescore_duration_seconds",
		Help:      "Duration of batch rescore runs in seconds.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
)

// Enhancer metrics.
var (
	EnhanceCallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enhance_calls_total",
		Help:      "Total cumulative demand enhancer calls.",
	})

	EnhanceFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enhance_failures_total",
		Help:      "Total number of demand enhancer failures.",
	})

	EnhanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "enhance_duration_seconds",
		Help:      "Duration of demand enhancer calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Notification metrics.
var (
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of deal notifications sent.",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})
)
