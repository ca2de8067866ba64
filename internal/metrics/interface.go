package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncCyclesRun()
	IncPeriodFailures(period string)
	ObserveCycleDuration(duration float64)
	IncPostsPublished(action string)
	IncPostFailures()
	IncRoleActions(kind string)
	IncRoleActionFailures(kind string)
	IncStatsFetched()
	IncStatsFetchFailed()
	SetRegisteredPlayers(count int)
	SetStartupTime(duration float64)
}

// MetricsStore keeps counters that survive restarts.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
