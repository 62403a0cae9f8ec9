// Package metrics defines Prometheus metrics for rental-gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rgw"

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

// Token broker metrics.
var (
	TokenCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_cache_hits_total",
		Help:      "Token requests served from the in-process cache.",
	}, []string{"scope"})

	TokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Successful upstream token refreshes.",
	}, []string{"scope"})

	TokenRefreshFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_failures_total",
		Help:      "Failed upstream token refreshes by HTTP status (0 for transport errors).",
	}, []string{"scope", "status"})

	TokenBackoffRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_backoff_rejections_total",
		Help:      "Token requests rejected without an upstream call during a 429 cooldown.",
	}, []string{"scope"})
)

// Upstream pricing metrics.
var (
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Upstream pricing requests by source and HTTP status (0 for transport errors).",
	}, []string{"source", "status"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of upstream pricing requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	UpstreamRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_retries_total",
		Help:      "Upstream pricing requests retried after a network failure.",
	}, []string{"source"})

	UpstreamQuotaUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "upstream_quota_usage",
		Help:      "Upstream pricing calls made in the current 24-hour window.",
	})

	UpstreamQuotaExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_quota_exhausted_total",
		Help:      "Total number of times the daily upstream quota was reached.",
	})
)

// Pricing outcome metrics.
var (
	PricingOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pricing_outcomes_total",
		Help:      "Pricing lookups by rendered outcome status.",
	}, []string{"status"})

	PricingShapesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pricing_shapes_total",
		Help:      "Normalized pricing results by detected upstream response shape.",
	}, []string{"shape"})
)

// Reviews metrics.
var (
	ReviewsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_requests_total",
		Help:      "Reviews provider requests by result (ok, error).",
	}, []string{"result"})
)

// Scheduler metrics.
var (
	SchedulerJobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_job_runs_total",
		Help:      "Scheduled job runs by task and result (ok, error).",
	}, []string{"task", "result"})

	SchedulerNextRunTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_next_run_timestamp",
		Help:      "Unix timestamp of the next scheduled run of each task.",
	}, []string{"task"})
)

// Notification metrics.
var (
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Alert notifications sent by severity and result (ok, error).",
	}, []string{"severity", "result"})

	NotificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of alert webhook deliveries in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)
