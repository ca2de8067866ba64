package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/pubsub"
	"github.com/mauv0809/storm-standings/internal/ranking"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/mauv0809/storm-standings/internal/stats"
	"github.com/mauv0809/storm-standings/internal/storage"
)

// New creates a Service. statsClient and pubsubClient may be nil.
func New(store storage.Store, directory Directory, statsClient stats.Client, pubsubClient pubsub.PubSubClient, metrics metrics.Metrics, counters metrics.MetricsStore, adminIDs []string) *Service {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &Service{
		store:     store,
		directory: directory,
		stats:     statsClient,
		pubsub:    pubsubClient,
		metrics:   metrics,
		counters:  counters,
		admins:    admins,
	}
}

// IsPrivileged reports whether member may run administrative commands.
func (s *Service) IsPrivileged(ctx context.Context, member string) bool {
	if _, ok := s.admins[member]; ok {
		return true
	}
	return s.directory.IsAdmin(ctx, member)
}

// Register stores member with username and empty stats in every period. The
// backup is merged in first so entries only the backup still has survive.
func (s *Service) Register(ctx context.Context, member, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	root, err := s.store.MutateMerged(ctx, func(root *standings.RootStore) error {
		if _, err := root.Lookup(standings.Lifetime, member); err == nil {
			log.Info("Updating registered member", "member", member, "username", username)
		} else {
			log.Info("Registering new member", "member", member, "username", username)
		}
		root.Register(member, username)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", member, err)
	}
	s.counters.Increment(metrics.KeyRegistrations)
	s.metrics.SetRegisteredPlayers(len(root.Members()))
	return nil
}

// Unregister deletes member from every period. It returns
// standings.ErrMemberNotFound when the member was not registered.
func (s *Service) Unregister(ctx context.Context, member string) error {
	var found bool
	root, err := s.store.Mutate(ctx, func(root *standings.RootStore) error {
		found = root.Remove(member, time.Now())
		if !found {
			return standings.ErrMemberNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, standings.ErrMemberNotFound) {
			return err
		}
		return fmt.Errorf("failed to unregister %s: %w", member, err)
	}
	log.Info("Member unregistered", "member", member)
	s.counters.Increment(metrics.KeyRemovals)
	s.metrics.SetRegisteredPlayers(len(root.Members()))
	return nil
}

// Leaderboard ranks period. A positive limit keeps only the first limit entries.
func (s *Service) Leaderboard(ctx context.Context, period standings.Period, limit int) ([]standings.LeaderboardEntry, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%q: %w", period, standings.ErrInvalidPeriod)
	}
	entries := s.rank(ctx, period)
	if limit > 0 {
		entries = ranking.Top(entries, limit)
	}
	return entries, nil
}

// SetLeaderboardChannel binds period to channel. A post stored for another
// channel is forgotten so the next cycle creates one in the new channel.
func (s *Service) SetLeaderboardChannel(ctx context.Context, period standings.Period, channel string) error {
	if !period.Valid() {
		return fmt.Errorf("%q: %w", period, standings.ErrInvalidPeriod)
	}
	if channel == "" {
		return ErrEmptyChannel
	}
	_, err := s.store.Mutate(ctx, func(root *standings.RootStore) error {
		root.Channels[period] = channel
		if ref, ok := root.Posts[period]; ok && ref.Channel != channel {
			delete(root.Posts, period)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to bind %s leaderboard channel: %w", period, err)
	}
	log.Info("Leaderboard channel set", "period", period, "channel", channel)
	return nil
}

// RankOf returns member's season entry for a rank field query.
func (s *Service) RankOf(ctx context.Context, member string, field standings.StatField) (standings.LeaderboardEntry, error) {
	if _, err := standings.ParseStatField(string(field)); err != nil {
		return standings.LeaderboardEntry{}, err
	}
	return s.PlayerStats(ctx, member, standings.Season)
}

// PlayerStats returns member's record in period. Rank is the member's
// position on the leaderboard, or 0 when the member is not shown on it.
func (s *Service) PlayerStats(ctx context.Context, member string, period standings.Period) (standings.LeaderboardEntry, error) {
	if !period.Valid() {
		return standings.LeaderboardEntry{}, fmt.Errorf("%q: %w", period, standings.ErrInvalidPeriod)
	}
	root := s.store.Snapshot(ctx)
	rec, err := root.Lookup(period, member)
	if err != nil {
		return standings.LeaderboardEntry{}, err
	}
	entry := standings.LeaderboardEntry{MemberKey: member, Username: rec.Username, Stats: rec.Stats}
	resolve := s.resolver(ctx)
	entry.Identity, _ = resolve(member)
	for _, e := range ranking.Rank(root.Period(period), resolve) {
		if e.MemberKey == member {
			entry.Rank = e.Rank
			break
		}
	}
	return entry, nil
}

func (s *Service) rank(ctx context.Context, period standings.Period) []standings.LeaderboardEntry {
	root := s.store.Snapshot(ctx)
	return ranking.Rank(root.Period(period), s.resolver(ctx))
}

// resolver looks every member up at most once per request. Queries only
// display the ranking, so a member whose lookup failed is still shown, under
// their member key.
func (s *Service) resolver(ctx context.Context) ranking.IdentityResolver {
	return ranking.NewResolver(s.directory.ResolveIdentity).Func(ctx, func(key string, err error) (standings.Identity, bool) {
		log.Warn("Failed to resolve member, showing it unresolved", "member", key, "error", err)
		return standings.Identity{}, true
	})
}
