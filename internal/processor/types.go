package processor

import (
	"sync"

	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/notifier"
	"github.com/mauv0809/storm-standings/internal/roles"
	"github.com/mauv0809/storm-standings/internal/standings"
)

// Processor runs leaderboard cycles: rank, publish and synchronize roles for
// every period with a leaderboard channel.
type Processor struct {
	// mu serializes whole cycles so a manual trigger and the scheduler never
	// publish the same period at the same time.
	mu        sync.Mutex
	store     Store
	resolver  IdentityResolver
	notifier  notifier.Notifier
	roles     roles.Synchronizer
	metrics   metrics.Metrics
	counters  metrics.MetricsStore
	postLimit int
}

// CycleReport summarizes one cycle.
type CycleReport struct {
	RunID   string         `json:"run_id"`
	DryRun  bool           `json:"dry_run"`
	Periods []PeriodReport `json:"periods"`
}

// Failed returns the number of periods that did not complete cleanly.
func (r CycleReport) Failed() int {
	n := 0
	for _, p := range r.Periods {
		if p.Error != "" {
			n++
		}
	}
	return n
}

// PeriodReport is what happened to one period in a cycle.
type PeriodReport struct {
	Period       standings.Period       `json:"period"`
	Skipped      bool                   `json:"skipped,omitempty"`
	Entries      int                    `json:"entries"`
	Post         standings.PostRef      `json:"post"`
	PostAction   notifier.PublishAction `json:"post_action,omitempty"`
	RolesApplied int                    `json:"roles_applied"`
	RolesFailed  int                    `json:"roles_failed"`
	Error        string                 `json:"error,omitempty"`
}
