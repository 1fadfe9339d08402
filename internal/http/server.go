package http

import (
	"net/http"

	"github.com/sundaysquad/sundaysquad/internal/config"
	"github.com/sundaysquad/sundaysquad/internal/coordinator"
	"github.com/sundaysquad/sundaysquad/internal/league"
	"github.com/sundaysquad/sundaysquad/internal/metrics"
	"github.com/sundaysquad/sundaysquad/internal/notifier"
	"github.com/sundaysquad/sundaysquad/internal/pubsub"
)

func NewServer(store league.LeagueStore, coord *coordinator.Coordinator, metricsSvc metrics.Metrics, metricsHandler http.Handler, counters metrics.CounterStore, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Coordinator:    coord,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/members", Chain(s.ListMembersHandler(), paramsMiddleware))
	s.Router.Handle("/games", Chain(s.ListGamesHandler(), paramsMiddleware))
	s.Router.Handle("/submit-result", Chain(s.SubmitResultHandler(), paramsMiddleware))
	s.Router.Handle("/cast-vote", Chain(s.CastVoteHandler(), paramsMiddleware))
	s.Router.Handle("/pending-approvals", Chain(s.PendingApprovalsHandler(), paramsMiddleware))
	s.Router.Handle("/result-status", Chain(s.ResultStatusHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/stats", Chain(s.StatsHandler(), paramsMiddleware))
	s.Router.Handle("/events/result-submitted", Chain(s.ResultSubmittedEventHandler(), paramsMiddleware))
	s.Router.Handle("/events/result-finalized", Chain(s.ResultFinalizedEventHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/pending-approvals", Chain(s.PendingApprovalsCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
