package ranking

import (
	"cmp"
	"maps"
	"slices"

	"github.com/mauv0809/storm-standings/internal/standings"
)

// Rank orders the members of one period by wins, eliminations, assists,
// damage and level, all descending. Members that resolve cannot identify are
// left out. Ties keep ascending member key order, so the same input always gives
// the same output. Rank numbers start at 1 and follow the list position.
func Rank(period standings.PeriodStore, resolve IdentityResolver) []standings.LeaderboardEntry {
	keys := slices.Sorted(maps.Keys(period))

	entries := make([]standings.LeaderboardEntry, 0, len(keys))
	for _, key := range keys {
		identity, ok := resolve(key)
		if !ok {
			continue
		}
		rec := period[key]
		entries = append(entries, standings.LeaderboardEntry{
			MemberKey: key,
			Identity:  identity,
			Username:  rec.Username,
			Stats:     rec.Stats,
		})
	}

	slices.SortStableFunc(entries, func(a, b standings.LeaderboardEntry) int {
		return compareStats(b.Stats, a.Stats)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func compareStats(a, b standings.Stats) int {
	return cmp.Or(
		cmp.Compare(a.Wins, b.Wins),
		cmp.Compare(a.Eliminations, b.Eliminations),
		cmp.Compare(a.Assists, b.Assists),
		cmp.Compare(a.Damage, b.Damage),
		cmp.Compare(a.Level, b.Level),
	)
}

// Top returns at most the first n entries.
func Top(entries []standings.LeaderboardEntry, n int) []standings.LeaderboardEntry {
	if n < 0 {
		n = 0
	}
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}

// ResolveTiers maps every tier to the member keys of the first N entries.
// With fewer entries than N the tier holds all of them.
func ResolveTiers(entries []standings.LeaderboardEntry, sizes TierSizes) map[Tier]MemberSet {
	if sizes == nil {
		sizes = DefaultTierSizes
	}
	tiers := make(map[Tier]MemberSet, len(sizes))
	for tier, n := range sizes {
		set := MemberSet{}
		for _, e := range Top(entries, n) {
			set[e.MemberKey] = struct{}{}
		}
		tiers[tier] = set
	}
	return tiers
}
