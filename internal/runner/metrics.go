package runner

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evald_jobs_submitted_total",
			Help: "Total number of jobs accepted for execution.",
		},
	)

	jobsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evald_jobs_completed_total",
			Help: "Total number of jobs reaching a terminal state.",
		},
		[]string{"outcome"},
	)

	jobsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "evald_jobs_in_flight",
			Help: "Number of workflow executions currently running.",
		},
	)

	workflowDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evald_workflow_duration_seconds",
			Help:    "Wall-clock duration of workflow executions.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(jobsSubmitted)
	prometheus.MustRegister(jobsCompleted)
	prometheus.MustRegister(jobsInFlight)
	prometheus.MustRegister(workflowDuration)
}
