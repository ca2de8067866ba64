package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/notifier"
	"github.com/mauv0809/storm-standings/internal/ranking"
	"github.com/mauv0809/storm-standings/internal/roles"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/mauv0809/storm-standings/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMetricsStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *mockMetricsStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key]++
}

func (m *mockMetricsStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts, nil
}

type fixture struct {
	store    storage.Store
	dir      *roles.MockDirectory
	notif    *notifier.MockNotifier
	sync     *roles.MockSynchronizer
	metrics  *metrics.Mock
	counters *mockMetricsStore
	p        *Processor
}

func newFixture(t *testing.T, players int) *fixture {
	t.Helper()
	f := &fixture{
		store:    storage.New(storage.NewMockBackend()),
		dir:      roles.NewMockDirectory(),
		notif:    notifier.NewMock(),
		sync:     roles.NewMockSynchronizer(),
		metrics:  metrics.NewMock(),
		counters: &mockMetricsStore{},
	}
	_, err := f.store.Mutate(context.Background(), func(root *standings.RootStore) error {
		for i := 1; i <= players; i++ {
			key := fmt.Sprintf("U%02d", i)
			root.Register(key, "player"+key)
			root.SetStats(standings.Season, key, standings.Stats{Wins: i})
			f.dir.Identities[key] = standings.Identity{DisplayName: "Player " + key}
		}
		root.Channels[standings.Season] = "C-SEASON"
		root.Channels[standings.Daily] = "C-DAILY"
		return nil
	})
	require.NoError(t, err)
	f.p = New(f.store, f.dir, f.notif, f.sync, f.metrics, f.counters)
	return f
}

func TestRunCycle_PublishesBoundPeriods(t *testing.T) {
	f := newFixture(t, 12)

	report := f.p.RunCycle(context.Background(), false)

	require.Len(t, report.Periods, 4)
	assert.NotEmpty(t, report.RunID)
	assert.Zero(t, report.Failed())

	published := f.notif.Published()
	require.Len(t, published, 2, "only daily and season have channels")
	assert.Equal(t, standings.Daily, published[0].Period)
	season := published[1]
	assert.Equal(t, "C-SEASON", season.Channel)
	require.Len(t, season.Entries, 10, "posts show the top 10")
	assert.Equal(t, "U12", season.Entries[0].MemberKey)
	assert.Equal(t, "Player U12", season.Entries[0].Identity.DisplayName)

	require.Equal(t, 2, f.sync.Calls())
	assert.Len(t, f.sync.SynchronizeCalls[1].Entries, 12, "roles see the full ranking")

	root := f.store.Snapshot(context.Background())
	assert.Equal(t, "C-SEASON", root.Posts[standings.Season].Channel)
	assert.NotEmpty(t, root.Posts[standings.Season].TS)
	assert.NotContains(t, root.Posts, standings.Weekly)

	assert.Equal(t, 1, f.metrics.CyclesRun())
	assert.Equal(t, 12, f.metrics.RegisteredPlayers())
	assert.Equal(t, 2, f.counters.counts[metrics.KeyPostsCreated])
	assert.Equal(t, 1, f.counters.counts[metrics.KeyCyclesCompleted])
}

func TestRunCycle_SecondCycleEditsStoredPost(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	f.p.RunCycle(ctx, false)
	first := f.store.Snapshot(ctx).Posts[standings.Season]
	f.p.RunCycle(ctx, false)

	published := f.notif.Published()
	require.Len(t, published, 4)
	assert.Equal(t, first, published[3].Known)
	assert.Equal(t, first, f.store.Snapshot(ctx).Posts[standings.Season])
	assert.Equal(t, 2, f.counters.counts[metrics.KeyPostsCreated])
	assert.Equal(t, 2, f.counters.counts[metrics.KeyPostsEdited])
}

func TestRunCycle_FailuresAreContained(t *testing.T) {
	f := newFixture(t, 3)
	f.notif.PublishLeaderboardFunc = func(req notifier.PublishRequest, dryRun bool) (notifier.PublishResult, error) {
		switch req.Period {
		case standings.Daily:
			return notifier.PublishResult{}, errors.New("channel_not_found")
		case standings.Season:
			panic("boom")
		}
		return notifier.PublishResult{}, nil
	}
	_, err := f.store.Mutate(context.Background(), func(root *standings.RootStore) error {
		root.Channels[standings.Lifetime] = "C-LIFE"
		return nil
	})
	require.NoError(t, err)

	report := f.p.RunCycle(context.Background(), false)

	require.Len(t, report.Periods, 4)
	assert.Equal(t, 2, report.Failed())
	assert.Contains(t, report.Periods[0].Error, "channel_not_found")
	assert.Contains(t, report.Periods[2].Error, "panic: boom")
	assert.Empty(t, report.Periods[3].Error, "lifetime still runs after season panicked")
	assert.Equal(t, 1, f.metrics.PeriodFailures("daily"))
	assert.Equal(t, 1, f.metrics.PeriodFailures("season"))

	require.Equal(t, 2, f.sync.Calls())
	assert.Equal(t, standings.Daily, f.sync.SynchronizeCalls[0].Period, "roles are synchronized after a failed post")
	assert.Equal(t, standings.Lifetime, f.sync.SynchronizeCalls[1].Period)
}

func TestRunCycle_DryRun(t *testing.T) {
	f := newFixture(t, 2)

	report := f.p.RunCycle(context.Background(), true)

	assert.Equal(t, notifier.ActionDryRun, report.Periods[0].PostAction)
	assert.Empty(t, f.store.Snapshot(context.Background()).Posts)
	for _, call := range f.sync.SynchronizeCalls {
		assert.True(t, call.DryRun)
	}
	assert.Zero(t, f.counters.counts[metrics.KeyCyclesCompleted])
}

func TestRunCycle_DropsUnresolvedMembers(t *testing.T) {
	f := newFixture(t, 3)
	delete(f.dir.Identities, "U03")

	report := f.p.RunCycle(context.Background(), false)

	assert.Equal(t, 2, report.Periods[2].Entries)
	season := f.notif.Published()[1]
	assert.Equal(t, "U02", season.Entries[0].MemberKey)
}

func TestRunPeriod_ChannelChangedDuringPublish(t *testing.T) {
	f := newFixture(t, 1)
	f.notif.PublishLeaderboardFunc = func(req notifier.PublishRequest, dryRun bool) (notifier.PublishResult, error) {
		_, err := f.store.Mutate(context.Background(), func(root *standings.RootStore) error {
			root.Channels[standings.Season] = "C-NEW"
			return nil
		})
		require.NoError(t, err)
		return notifier.PublishResult{Ref: standings.PostRef{Channel: req.Channel, TS: "1.0"}, Action: notifier.ActionCreated}, nil
	}

	report := f.p.RunPeriod(context.Background(), standings.Season, false)

	assert.Empty(t, report.Error)
	assert.NotContains(t, f.store.Snapshot(context.Background()).Posts, standings.Season)
}

func TestRunPeriod_Unbound(t *testing.T) {
	f := newFixture(t, 1)

	report := f.p.RunPeriod(context.Background(), standings.Weekly, false)

	assert.True(t, report.Skipped)
	assert.Empty(t, f.notif.Published())
	assert.Zero(t, f.sync.Calls())
}

func TestRunCycle_LookupFailureLeavesPostAndRolesAlone(t *testing.T) {
	f := newFixture(t, 3)
	f.dir.Holders["TOP1"] = []string{"U03"}
	synchronizer := roles.New(f.dir, roles.Config{standings.Season: {ranking.Top1: "TOP1"}}, nil, f.metrics)
	f.p = New(f.store, f.dir, f.notif, synchronizer, f.metrics, f.counters)
	f.dir.ResolveErr["U03"] = errors.New("ratelimited")

	report := f.p.RunCycle(context.Background(), false)

	assert.Contains(t, report.Periods[2].Error, "ratelimited")
	assert.Equal(t, 2, report.Failed(), "daily and season are bound")
	assert.Empty(t, f.notif.Published())
	assert.Equal(t, []string{"U03"}, f.dir.HoldersOf("TOP1"), "the top player keeps the role")
	assert.Empty(t, f.dir.RevokeCalls)

	delete(f.dir.ResolveErr, "U03")
	report = f.p.RunCycle(context.Background(), false)

	assert.Zero(t, report.Failed())
	assert.Equal(t, []string{"U03"}, f.dir.HoldersOf("TOP1"))
}

func TestRunCycle_ResolvesEachMemberOnce(t *testing.T) {
	f := newFixture(t, 3)

	f.p.RunCycle(context.Background(), false)

	assert.Equal(t, 3, f.dir.Resolves(), "daily and season share the lookups")
}
