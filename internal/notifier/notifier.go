package notifier

import (
	"context"

	"github.com/mauv0809/storm-standings/internal/standings"
)

// Notifier publishes leaderboards and renders command responses. It keeps the
// rest of the application independent of the chat platform.
type Notifier interface {
	// PublishLeaderboard makes sure the channel shows exactly one up to date
	// leaderboard post for the period, editing an existing post when one is
	// known or can be found.
	PublishLeaderboard(ctx context.Context, req PublishRequest, dryRun bool) (PublishResult, error)

	// For formatting responses for slash commands
	FormatLeaderboardResponse(period standings.Period, entries []standings.LeaderboardEntry) (any, error)
	FormatPlayerStatsResponse(period standings.Period, entry standings.LeaderboardEntry) (any, error)
	FormatRankResponse(entry standings.LeaderboardEntry, field standings.StatField) (any, error)
	FormatTextResponse(text string) (any, error)
}

// PublishRequest describes one leaderboard post.
type PublishRequest struct {
	Period  standings.Period
	Channel string
	Entries []standings.LeaderboardEntry
	// Known is the post stored by the last publish, if any.
	Known standings.PostRef
}

// PublishAction tells how a publish reached its result.
type PublishAction string

const (
	ActionCreated PublishAction = "created"
	ActionEdited  PublishAction = "edited"
	ActionDryRun  PublishAction = "dry_run"
)

// PublishResult is the post the leaderboard now lives in.
type PublishResult struct {
	Ref    standings.PostRef
	Action PublishAction
}
