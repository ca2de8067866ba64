package stats

import "context"

// Client fetches player statistics from the stats provider.
// This allows for mock implementations to be used in tests.
type Client interface {
	FetchStats(ctx context.Context, username string) (PlayerStats, error)
}
