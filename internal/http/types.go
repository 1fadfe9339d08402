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

type Server struct {
	Store          league.LeagueStore
	Coordinator    *coordinator.Coordinator
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Counters       metrics.CounterStore
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
