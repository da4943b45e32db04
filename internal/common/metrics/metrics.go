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

	PrequalDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prequal_decisions_total",
			Help: "Pre-qualification decisions by outcome",
		},
		[]string{"decision"},
	)

	PrequalConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prequal_confidence_score",
			Help:    "Distribution of pre-qualification confidence scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	PrequalCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prequal_cache_lookups_total",
			Help: "Pre-qualification result cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications delivered by channel",
		},
		[]string{"channel"},
	)
)

func RecordJobCompleted(taskType string) {
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}

func RecordJobFailed(taskType, errorCode string) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

func RecordDecision(decision string, confidence int) {
	PrequalDecisions.WithLabelValues(decision).Inc()
	PrequalConfidence.Observe(float64(confidence))
}

func RecordCacheLookup(result string) {
	PrequalCacheLookups.WithLabelValues(result).Inc()
}
