package http

import (
	"net/http"

	"github.com/mauv0809/storm-standings/internal/config"
	"github.com/mauv0809/storm-standings/internal/http/handlers"
	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/notifier"
	"github.com/mauv0809/storm-standings/internal/processor"
	"github.com/mauv0809/storm-standings/internal/pubsub"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/mauv0809/storm-standings/internal/storage"
	"github.com/mauv0809/storm-standings/internal/tracker"
)

func NewServer(store storage.Store, svc *tracker.Service, proc *processor.Processor, notifier notifier.Notifier, counters metrics.MetricsStore, metricsHandler http.Handler, cfg config.Config, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Tracker:        svc,
		Processor:      proc,
		Notifier:       notifier,
		Counters:       counters,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Slash commands additionally verify the Slack request signature.
	verified := []Middleware{paramsMiddleware, slackVerificationMiddleware(s.Cfg.Slack.SigningSecret)}

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(handlers.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/members", Chain(handlers.ListMembersHandler(s.Store), paramsMiddleware))
	s.Router.Handle("/counters", Chain(handlers.CountersHandler(s.Counters), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(handlers.LeaderboardHandler(s.Tracker), paramsMiddleware))
	s.Router.Handle("/cycle", Chain(handlers.CycleHandler(s.Processor, s.Cfg.DryRun), paramsMiddleware))
	s.Router.Handle("/refresh", Chain(handlers.RefreshHandler(s.Tracker), paramsMiddleware))
	if s.pubsub != nil {
		s.Router.Handle("/pubsub/refresh-stats", Chain(handlers.RefreshPlayerStatsHandler(s.Tracker, s.pubsub), paramsMiddleware))
	}

	s.Router.Handle("/slack/command/register", Chain(handlers.RegisterCommandHandler(s.Tracker, s.Notifier), verified...))
	s.Router.Handle("/slack/command/unregister", Chain(handlers.UnregisterCommandHandler(s.Tracker, s.Notifier), verified...))
	s.Router.Handle("/slack/command/leaderboard", Chain(handlers.LeaderboardCommandHandler(s.Tracker, s.Notifier), verified...))
	s.Router.Handle("/slack/command/leaderboard-channel", Chain(handlers.LeaderboardChannelCommandHandler(s.Tracker, s.Notifier), verified...))
	s.Router.Handle("/slack/command/rank", Chain(handlers.RankCommandHandler(s.Tracker, s.Notifier, ""), verified...))
	s.Router.Handle("/slack/command/rank-br", Chain(handlers.RankCommandHandler(s.Tracker, s.Notifier, standings.StatBRRank), verified...))
	s.Router.Handle("/slack/command/rank-zb", Chain(handlers.RankCommandHandler(s.Tracker, s.Notifier, standings.StatZBRank), verified...))
	s.Router.Handle("/slack/command/player-stats", Chain(handlers.PlayerStatsCommandHandler(s.Tracker, s.Notifier), verified...))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
