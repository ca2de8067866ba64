package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mauv0809/storm-standings/internal/database"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/mauv0809/storm-standings/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) standings.RootStore {
	t.Helper()
	root, err := standings.Decode(data)
	require.NoError(t, err)
	return root
}

func withAce() standings.RootStore {
	root := standings.NewRootStore()
	root.Register("U1", "Ace")
	return root
}

func TestLoad_MissingDocumentIsCreated(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMockBackend()
	store := storage.New(backend)

	root := store.Load(ctx)

	assert.Equal(t, standings.NewRootStore(), root)
	live, ok := backend.Doc(storage.SlotLive)
	require.True(t, ok, "the default document should be persisted")
	assert.Equal(t, standings.NewRootStore(), decode(t, live))
	_, ok = backend.Doc(storage.SlotBackup)
	assert.False(t, ok, "nothing to back up on first save")
}

func TestLoad_CorruptDocumentIsReplaced(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMockBackend()
	backend.SetDoc(storage.SlotLive, []byte("{not json"))
	store := storage.New(backend)

	root := store.Load(ctx)

	assert.Equal(t, standings.NewRootStore(), root)
	live, _ := backend.Doc(storage.SlotLive)
	assert.Equal(t, standings.NewRootStore(), decode(t, live))
	backup, _ := backend.Doc(storage.SlotBackup)
	assert.Equal(t, "{not json", string(backup), "the corrupt bytes are kept as backup")
}

func TestLoad_ReadErrorDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMockBackend()
	store := storage.New(backend)
	require.NoError(t, store.Save(ctx, withAce()))
	backend.WriteCalls = nil
	backend.FailReads(storage.SlotLive, errors.New("connection reset"))

	root := store.Load(ctx)

	assert.Contains(t, root.Lifetime, "U1", "the last known state is served")
	assert.Empty(t, backend.WriteCalls)

	_, err := store.Mutate(ctx, func(root *standings.RootStore) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, backend.WriteCalls)
}

func TestSave_BackupHoldsPreviousState(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMockBackend()
	store := storage.New(backend)

	first := withAce()
	require.NoError(t, store.Save(ctx, first))
	second := first.Clone()
	second.Register("U2", "Bolt")
	require.NoError(t, store.Save(ctx, second))

	assert.Equal(t, first, store.LoadBackup(ctx))
	assert.Equal(t, second, store.Load(ctx))
}

func TestSave_FinalWriteFailureKeepsBackup(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMockBackend()
	store := storage.New(backend)

	first := withAce()
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, first))

	backend.FailWrites(storage.SlotLive, errors.New("disk full"))
	second := first.Clone()
	second.Register("U2", "Bolt")
	err := store.Save(ctx, second)

	require.Error(t, err)
	assert.Equal(t, first, store.LoadBackup(ctx))
	backend.FailWrites(storage.SlotLive, nil)
	assert.Equal(t, first, store.Load(ctx))
}

func TestSave_BackupFailureLeavesLiveAlone(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMockBackend()
	store := storage.New(backend)
	require.NoError(t, store.Save(ctx, withAce()))
	before, _ := backend.Doc(storage.SlotLive)

	backend.FailWrites(storage.SlotBackup, errors.New("permission denied"))
	err := store.Save(ctx, standings.NewRootStore())

	require.Error(t, err)
	after, _ := backend.Doc(storage.SlotLive)
	assert.Equal(t, before, after)
}

func TestLoadThenSave_OnlyRotatesBackup(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMockBackend()
	store := storage.New(backend)
	require.NoError(t, store.Save(ctx, withAce()))
	before, _ := backend.Doc(storage.SlotLive)

	require.NoError(t, store.Save(ctx, store.Load(ctx)))

	live, _ := backend.Doc(storage.SlotLive)
	backup, _ := backend.Doc(storage.SlotBackup)
	assert.Equal(t, string(before), string(live))
	assert.Equal(t, string(before), string(backup))
}

func TestMutateMerged_RestoresBackupOnlyMembers(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMockBackend()
	store := storage.New(backend)

	withBolt := withAce()
	withBolt.Register("U2", "Bolt")
	withBolt.Register("U3", "Cyan")
	require.NoError(t, store.Save(ctx, withBolt))

	// The live document lost U2 without a removal marker and U3 was removed
	// on purpose.
	live := withAce()
	live.Remove("U3", time.Unix(1700000000, 0))
	require.NoError(t, store.Save(ctx, live))

	root, err := store.MutateMerged(ctx, func(root *standings.RootStore) error {
		root.Register("U4", "Dash")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2", "U4"}, root.Members())
	assert.Equal(t, root, store.Load(ctx))
}

func TestMutateMerged_ReRegisteredMemberSurvivesLaterRegistrations(t *testing.T) {
	ctx := context.Background()
	store := storage.New(storage.NewMockBackend())
	register := func(key, username string) {
		t.Helper()
		_, err := store.MutateMerged(ctx, func(root *standings.RootStore) error {
			root.Register(key, username)
			return nil
		})
		require.NoError(t, err)
	}

	register("U1", "Ace")
	_, err := store.Mutate(ctx, func(root *standings.RootStore) error {
		root.Remove("U1", time.Unix(1700000000, 0))
		return nil
	})
	require.NoError(t, err)
	register("U1", "Ace")

	// The backup now holds the removal marker; later registrations must not
	// bring it back.
	assert.Contains(t, store.LoadBackup(ctx).Removed, "U1")
	register("U2", "Bolt")
	register("U3", "Cyan")

	root := store.Load(ctx)
	for _, p := range standings.Periods {
		rec, err := root.Lookup(p, "U1")
		require.NoError(t, err, "U1 missing from %s", p)
		assert.Equal(t, "Ace", rec.Username)
	}
	assert.NotContains(t, root.Removed, "U1")
	assert.Equal(t, []string{"U1", "U2", "U3"}, root.Members())
}

func TestMutate_ErrorLeavesDocumentUntouched(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMockBackend()
	store := storage.New(backend)
	require.NoError(t, store.Save(ctx, withAce()))
	before, _ := backend.Doc(storage.SlotLive)

	_, err := store.Mutate(ctx, func(root *standings.RootStore) error {
		root.Register("U2", "Bolt")
		return standings.ErrMemberNotFound
	})

	assert.ErrorIs(t, err, standings.ErrMemberNotFound)
	after, _ := backend.Doc(storage.SlotLive)
	assert.Equal(t, before, after)
	assert.NotContains(t, store.Snapshot(ctx).Lifetime, "U2")
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := context.Background()
	store := storage.New(storage.NewMockBackend())
	require.NoError(t, store.Save(ctx, withAce()))

	snap := store.Snapshot(ctx)
	snap.SetStats(standings.Daily, "U1", standings.Stats{Wins: 7})
	snap.Channels[standings.Daily] = "C1"

	again := store.Snapshot(ctx)
	assert.Equal(t, 0, again.Daily["U1"].Stats.Wins)
	assert.Empty(t, again.Channels)
}

func TestSQLBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()
	backend := storage.NewSQLBackend(db)

	_, err = backend.Read(ctx, storage.SlotLive)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	store := storage.New(backend)
	first := withAce()
	require.NoError(t, store.Save(ctx, first))
	second := first.Clone()
	second.Channels[standings.Weekly] = "C7"
	require.NoError(t, store.Save(ctx, second))

	if diff := cmp.Diff(second, store.Load(ctx)); diff != "" {
		t.Errorf("live document mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, store.LoadBackup(ctx)); diff != "" {
		t.Errorf("backup document mismatch (-want +got):\n%s", diff)
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend := storage.NewFileBackend(filepath.Join(dir, "data", "store.json"), filepath.Join(dir, "data", "store_backup.json"))

	_, err := backend.Read(ctx, storage.SlotBackup)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	store := storage.New(backend)
	first := withAce()
	require.NoError(t, store.Save(ctx, first))
	second := first.Clone()
	second.Register("U2", "Bolt")
	require.NoError(t, store.Save(ctx, second))

	// A fresh store sees what the previous one wrote.
	reopened := storage.New(backend)
	assert.Equal(t, second, reopened.Load(ctx))
	assert.Equal(t, first, reopened.LoadBackup(ctx))
}
