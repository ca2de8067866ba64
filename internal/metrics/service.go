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
		CyclesRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "standings_cycles_total",
			Help: "The total number of leaderboard update cycles started.",
		}),
		PeriodFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "standings_period_failures_total",
			Help: "The total number of periods whose update failed within a cycle.",
		}, []string{"period"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "standings_cycle_duration_seconds",
			Help:    "The duration of a full leaderboard update cycle.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		PostsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "standings_leaderboard_posts_total",
			Help: "The total number of leaderboard posts created or edited.",
		}, []string{"action"}),
		PostFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "standings_leaderboard_post_failures_total",
			Help: "The total number of leaderboard posts that failed to publish.",
		}),
		RoleActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "standings_role_actions_total",
			Help: "The total number of tier role grants and revokes applied.",
		}, []string{"kind"}),
		RoleActionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "standings_role_action_failures_total",
			Help: "The total number of tier role grants and revokes that failed.",
		}, []string{"kind"}),
		StatsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "standings_stats_fetched_total",
			Help: "The total number of successful stats provider lookups.",
		}),
		StatsFetchFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "standings_stats_fetch_failures_total",
			Help: "The total number of failed stats provider lookups.",
		}),
		RegisteredPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "standings_registered_players",
			Help: "The number of members currently registered.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "standings_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.CyclesRun,
		s.PeriodFailures,
		s.CycleDuration,
		s.PostsPublished,
		s.PostFailures,
		s.RoleActions,
		s.RoleActionFailures,
		s.StatsFetched,
		s.StatsFetchFailed,
		s.RegisteredPlayers,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncCyclesRun() {
	s.CyclesRun.Inc()
}

func (s *Service) IncPeriodFailures(period string) {
	s.PeriodFailures.WithLabelValues(period).Inc()
}

func (s *Service) ObserveCycleDuration(duration float64) {
	s.CycleDuration.Observe(duration)
}

func (s *Service) IncPostsPublished(action string) {
	s.PostsPublished.WithLabelValues(action).Inc()
}

func (s *Service) IncPostFailures() {
	s.PostFailures.Inc()
}

func (s *Service) IncRoleActions(kind string) {
	s.RoleActions.WithLabelValues(kind).Inc()
}

func (s *Service) IncRoleActionFailures(kind string) {
	s.RoleActionFailures.WithLabelValues(kind).Inc()
}

func (s *Service) IncStatsFetched() {
	s.StatsFetched.Inc()
}

func (s *Service) IncStatsFetchFailed() {
	s.StatsFetchFailed.Inc()
}

func (s *Service) SetRegisteredPlayers(count int) {
	s.RegisteredPlayers.Set(float64(count))
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
