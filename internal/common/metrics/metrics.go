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

	// outcome: computed | cached | empty_area | directory_error | invalid
	AreaAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traffic_area_analyses_total",
			Help: "Area analyses by outcome",
		},
		[]string{"outcome"},
	)

	AreaAnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "traffic_area_analysis_duration_seconds",
			Help:    "Time to produce an area analysis, cache hits included",
			Buckets: prometheus.DefBuckets,
		},
	)

	// provenance: measured | estimated
	VisitStatsResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traffic_visit_stats_resolutions_total",
			Help: "Per-venue visit statistics resolutions by provenance",
		},
		[]string{"provenance"},
	)

	// op: read | write
	AnalysisCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traffic_analysis_cache_errors_total",
			Help: "Swallowed analysis cache failures",
		},
		[]string{"op"},
	)

	OpportunityAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traffic_opportunity_alerts_total",
			Help: "Opportunity alerts published to SNS",
		},
		[]string{"status"},
	)
)
