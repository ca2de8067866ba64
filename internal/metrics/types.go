package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	CyclesRun          prometheus.Counter
	PeriodFailures     *prometheus.CounterVec
	CycleDuration      prometheus.Histogram
	PostsPublished     *prometheus.CounterVec
	PostFailures       prometheus.Counter
	RoleActions        *prometheus.CounterVec
	RoleActionFailures *prometheus.CounterVec
	StatsFetched       prometheus.Counter
	StatsFetchFailed   prometheus.Counter
	RegisteredPlayers  prometheus.Gauge
	StartupTimeSeconds prometheus.Gauge
}

// Durable counter keys written to the MetricsStore.
const (
	KeyCyclesCompleted = "cycles_completed"
	KeyPostsCreated    = "leaderboard_posts_created"
	KeyPostsEdited     = "leaderboard_posts_edited"
	KeyRegistrations   = "registrations"
	KeyRemovals        = "removals"
)
