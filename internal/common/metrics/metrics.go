// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_score",
			Help:    "Distribution of investor/campaign match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	RankingCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_ranking_candidates",
			Help:    "Candidates evaluated and returned per ranking",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		},
		[]string{"stage"},
	)

	MetricsFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_normalized_fields_total",
			Help: "Normalized metrics fields by mapping outcome",
		},
		[]string{"source", "outcome"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by cache name and result",
		},
		[]string{"cache", "result"},
	)
)

// Ranking stages.
const (
	StageEvaluated = "evaluated"
	StageReturned  = "returned"
)

// Cache results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

func ObserveRanking(evaluated, returned int) {
	RankingCandidates.WithLabelValues(StageEvaluated).Observe(float64(evaluated))
	RankingCandidates.WithLabelValues(StageReturned).Observe(float64(returned))
}

func RecordCache(cache, result string) {
	CacheRequests.WithLabelValues(cache, result).Inc()
}

func RecordFields(source string, mapped, unmapped int) {
	if source == "" {
		source = "unknown"
	}
	MetricsFields.WithLabelValues(source, "mapped").Add(float64(mapped))
	MetricsFields.WithLabelValues(source, "unmapped").Add(float64(unmapped))
}
