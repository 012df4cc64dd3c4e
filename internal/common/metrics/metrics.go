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

	// IntentParseTotal counts parser outcomes: parsed, no_json, invalid, completion_error.
	IntentParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_parse_total",
			Help: "Intent parse attempts by outcome",
		},
		[]string{"outcome"},
	)

	// StatsQueryTotal counts query builder outcomes per template:
	// success, no_template, error.
	StatsQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_query_total",
			Help: "Stats queries by template and outcome",
		},
		[]string{"template", "outcome"},
	)

	StatsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stats_query_duration_seconds",
			Help:    "Stats query execution time in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"template"},
	)

	SeasonResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "season_resolve_total",
			Help: "Current-season lookups by source: override, cache, database, calendar",
		},
		[]string{"source"},
	)
)
