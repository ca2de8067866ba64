package roles

import (
	"errors"

	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/ranking"
	"github.com/mauv0809/storm-standings/internal/standings"
)

// ErrLastHolder is returned by a Directory when a revoke would leave a role
// without holders and the platform does not allow that. Synchronize retries
// such a revoke once the role's grants are applied.
var ErrLastHolder = errors.New("role cannot be left without holders")

// Config maps a period and tier to the role ID granted to its members.
// Tiers without a role ID are not synchronized.
type Config map[standings.Period]map[ranking.Tier]string

// RoleIDs returns the tier roles of one period.
func (c Config) RoleIDs(p standings.Period) map[ranking.Tier]string {
	return c[p]
}

// ActionKind is either a grant or a revoke.
type ActionKind string

const (
	Grant  ActionKind = "grant"
	Revoke ActionKind = "revoke"
)

// Action is a single role change.
type Action struct {
	Kind      ActionKind
	Tier      ranking.Tier
	RoleID    string
	MemberKey string
}

// Result reports what a synchronization did.
type Result struct {
	Planned []Action
	Applied []Action
	Failed  []Action
	// Skipped lists tiers whose current holders could not be read.
	Skipped []ranking.Tier
}

type synchronizer struct {
	directory Directory
	config    Config
	sizes     ranking.TierSizes
	metrics   metrics.Metrics
}
