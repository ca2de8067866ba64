package tracker

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/storm-standings/internal/pubsub"
	"github.com/mauv0809/storm-standings/internal/standings"
)

// ErrStale marks a fetch that no longer applies to the stored member.
var ErrStale = errors.New("member changed while fetching stats")

// RefreshStats fetches fresh stats for every registered member. With a
// pub/sub client the work is queued as one message per member; otherwise the
// members are fetched one after another.
func (s *Service) RefreshStats(ctx context.Context) RefreshReport {
	report := RefreshReport{RunID: uuid.NewString()}
	if s.stats == nil && s.pubsub == nil {
		log.Debug("No stats provider configured, skipping refresh")
		return report
	}

	usernames := s.store.Snapshot(ctx).Usernames()
	report.Members = len(usernames)
	logger := log.With("run_id", report.RunID)
	logger.Info("Refreshing player stats", "members", report.Members)

	for _, member := range sortedKeys(usernames) {
		if ctx.Err() != nil {
			break
		}
		username := usernames[member]
		if s.pubsub != nil {
			report.FannedOut = true
			msg := pubsub.RefreshPlayerMessage{RunID: report.RunID, MemberKey: member, Username: username}
			if err := s.pubsub.SendMessage(ctx, pubsub.EventRefreshPlayerStats, msg); err != nil {
				logger.Error("Failed to queue stats refresh", "member", member, "error", err)
				report.Failed++
				continue
			}
			report.Queued++
			continue
		}
		switch err := s.RefreshPlayer(ctx, member, username); {
		case err == nil:
			report.Updated++
		case errors.Is(err, ErrStale), errors.Is(err, standings.ErrMemberNotFound):
			report.Skipped++
		default:
			report.Failed++
		}
	}
	logger.Info("Stats refresh finished", "queued", report.Queued, "updated", report.Updated, "failed", report.Failed, "skipped", report.Skipped)
	return report
}

// RefreshPlayer fetches username's stats and stores every period the
// provider reported. Nothing is written when the fetch fails, or when the
// member was removed or renamed in the meantime.
func (s *Service) RefreshPlayer(ctx context.Context, member, username string) error {
	if s.stats == nil {
		return errors.New("no stats provider configured")
	}
	fetched, err := s.stats.FetchStats(ctx, username)
	if err != nil {
		s.metrics.IncStatsFetchFailed()
		log.Warn("Failed to fetch player stats, keeping stored values", "member", member, "username", username, "error", err)
		return fmt.Errorf("failed to fetch stats for %s: %w", username, err)
	}
	s.metrics.IncStatsFetched()

	_, err = s.store.Mutate(ctx, func(root *standings.RootStore) error {
		rec, err := root.Lookup(standings.Lifetime, member)
		if err != nil {
			return err
		}
		if rec.Username != username {
			return ErrStale
		}
		for period, st := range fetched.Periods {
			if _, err := root.Lookup(period, member); err != nil {
				continue
			}
			root.SetStats(period, member, st)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStale) || errors.Is(err, standings.ErrMemberNotFound) {
			log.Info("Discarding fetched stats", "member", member, "username", username, "reason", err)
		}
		return err
	}
	log.Debug("Player stats updated", "member", member, "periods", len(fetched.Periods))
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
