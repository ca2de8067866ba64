package roles

import (
	"context"

	"github.com/mauv0809/storm-standings/internal/standings"
)

// Directory is the chat platform's view of members and roles.
type Directory interface {
	// ResolveIdentity returns false for members that no longer exist or
	// cannot be shown on a leaderboard, and an error when it cannot tell.
	ResolveIdentity(ctx context.Context, memberKey string) (standings.Identity, bool, error)
	CurrentHolders(ctx context.Context, roleID string) ([]string, error)
	GrantRole(ctx context.Context, roleID, memberKey string) error
	RevokeRole(ctx context.Context, roleID, memberKey string) error
}

// Synchronizer makes the holders of each tier role match a ranking.
type Synchronizer interface {
	Synchronize(ctx context.Context, period standings.Period, entries []standings.LeaderboardEntry, dryRun bool) Result
}
