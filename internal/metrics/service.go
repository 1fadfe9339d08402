package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ResultsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squad_results_submitted_total",
			Help: "The total number of game results submitted for approval.",
		}),
		VotesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squad_votes_cast_total",
			Help: "The total number of approval votes cast.",
		}),
		ResultsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squad_results_finalized_total",
			Help: "The total number of results that reached the approval threshold.",
		}),
		TallyConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squad_tally_conflicts_total",
			Help: "The total number of lost compare-and-swap attempts while recomputing a record status.",
		}),
		SubmissionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "squad_result_submission_duration_seconds",
			Help:    "The duration of individual result submissions.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squad_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squad_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "squad_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ResultsSubmitted,
		s.VotesCast,
		s.ResultsFinalized,
		s.TallyConflicts,
		s.SubmissionDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncResultsSubmitted() {
	s.ResultsSubmitted.Inc()
}

func (s *Service) IncVotesCast() {
	s.VotesCast.Inc()
}

func (s *Service) IncResultsFinalized() {
	s.ResultsFinalized.Inc()
}

func (s *Service) IncTallyConflicts() {
	s.TallyConflicts.Inc()
}

func (s *Service) ObserveSubmissionDuration(duration float64) {
	s.SubmissionDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
