// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	PipelineTest    = "test"
	PipelineSatTest = "sat_test"
)

var (
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testhall_submissions_total",
			Help: "Submissions by pipeline and outcome",
		},
		[]string{"pipeline", "outcome"},
	)

	EligibilityDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testhall_eligibility_denials_total",
			Help: "Requests refused by the eligibility gate, by reason",
		},
		[]string{"pipeline", "reason"},
	)

	Suspends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testhall_suspends_total",
			Help: "Suspend requests by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "testhall_submission_duration_seconds",
			Help:    "Time spent grading and persisting a submission",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pipeline"},
	)
)

// Outcome labels a finished request for the counters above.
func Outcome(err error) string {
	if err != nil {
		return "rejected"
	}
	return "accepted"
}
