package http

import (
	"net/http"

	"github.com/mauv0809/cricket-ladder/internal/config"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/notifier"
	"github.com/mauv0809/cricket-ladder/internal/processor"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
)

func NewServer(engine *league.Engine, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor) *Server {
	server := &Server{
		Engine:         engine,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("GET /state", Chain(s.StateHandler(), paramsMiddleware))
	s.Router.Handle("GET /teams", Chain(s.ListTeamsHandler(), paramsMiddleware))
	s.Router.Handle("POST /teams", Chain(s.AddTeamHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /teams/{id}", Chain(s.DeleteTeamHandler(), paramsMiddleware))
	s.Router.Handle("POST /teams/reorder", Chain(s.ReorderHandler(), paramsMiddleware))
	s.Router.Handle("PUT /games-played", Chain(s.GamesPlayedHandler(), paramsMiddleware))

	s.Router.Handle("POST /schedule/auto", Chain(s.AutoScheduleHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches", Chain(s.AddMatchHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /matches/{id}", Chain(s.RemoveMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/winner", Chain(s.SelectWinnerHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}/prediction", Chain(s.PredictHandler(), paramsMiddleware))

	s.Router.Handle("POST /periods/navigate", Chain(s.NavigateHandler(), paramsMiddleware))
	s.Router.Handle("PUT /periods/current", Chain(s.SetPeriodHandler(), paramsMiddleware))
	s.Router.Handle("POST /periods/finalize", Chain(s.FinalizeHandler(), paramsMiddleware))

	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("GET /history", Chain(s.HistoryHandler(), paramsMiddleware))

	s.Router.Handle("POST /pubsub/period-finalized", Chain(s.PushHandler(pubsub.EventPeriodFinalized), paramsMiddleware))
	s.Router.Handle("POST /pubsub/match-applied", Chain(s.PushHandler(pubsub.EventMatchApplied), paramsMiddleware))
	s.Router.Handle("POST /slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware, slackVerifier(s.Cfg.Slack.SigningSecret)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
