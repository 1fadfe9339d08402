package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	ResultsSubmitted   prometheus.Counter
	VotesCast          prometheus.Counter
	ResultsFinalized   prometheus.Counter
	TallyConflicts     prometheus.Counter
	SubmissionDuration prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Counter keys for the db-backed counter store.
const (
	CounterResultsSubmitted = "results_submitted"
	CounterVotesCast        = "votes_cast"
	CounterResultsFinalized = "results_finalized"
)
