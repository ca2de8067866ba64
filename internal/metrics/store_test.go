package metrics

import (
	"testing"

	"github.com/mauv0809/storm-standings/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) MetricsStore {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	return New(db)
}

func TestIncrementAndGetAll(t *testing.T) {
	store := setupTestDB(t)

	// 1. Initially, there should be no metrics
	metrics, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, metrics)

	// 2. Increment a new key
	store.Increment(KeyCyclesCompleted)
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{KeyCyclesCompleted: 1}, metrics)

	// 3. Increment the same key again
	store.Increment(KeyCyclesCompleted)
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{KeyCyclesCompleted: 2}, metrics)

	// 4. Increment a different key
	store.Increment(KeyPostsCreated)
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		KeyCyclesCompleted: 2,
		KeyPostsCreated:    1,
	}, metrics)
}

func TestService_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.IncCyclesRun()
	svc.IncPostsPublished("edited")
	svc.IncPostsPublished("edited")
	svc.IncRoleActionFailures("grant")
	svc.SetRegisteredPlayers(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(svc.CyclesRun))
	assert.Equal(t, 2.0, testutil.ToFloat64(svc.PostsPublished.WithLabelValues("edited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.RoleActionFailures.WithLabelValues("grant")))
	assert.Equal(t, 7.0, testutil.ToFloat64(svc.RegisteredPlayers))
}
