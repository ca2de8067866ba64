package roles

import (
	"context"
	"slices"
	"sync"

	"github.com/mauv0809/storm-standings/internal/standings"
)

var _ Directory = (*MockDirectory)(nil)

// MockDirectory is an in-memory Directory. It is safe for concurrent use.
type MockDirectory struct {
	mu sync.Mutex

	Identities map[string]standings.Identity
	Holders    map[string][]string
	// ResolveErr, when set for a member, is returned by ResolveIdentity.
	ResolveErr map[string]error

	CurrentHoldersFunc func(roleID string) ([]string, error)
	GrantRoleFunc      func(roleID, memberKey string) error
	RevokeRoleFunc     func(roleID, memberKey string) error

	GrantCalls   []Action
	RevokeCalls  []Action
	ResolveCalls int
}

// NewMockDirectory creates an empty mock directory.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		Identities: map[string]standings.Identity{},
		Holders:    map[string][]string{},
		ResolveErr: map[string]error{},
	}
}

func (m *MockDirectory) ResolveIdentity(_ context.Context, memberKey string) (standings.Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveCalls++
	if err := m.ResolveErr[memberKey]; err != nil {
		return standings.Identity{}, false, err
	}
	id, ok := m.Identities[memberKey]
	return id, ok, nil
}

// Resolves returns the number of ResolveIdentity calls so far.
func (m *MockDirectory) Resolves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ResolveCalls
}

func (m *MockDirectory) CurrentHolders(_ context.Context, roleID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CurrentHoldersFunc != nil {
		return m.CurrentHoldersFunc(roleID)
	}
	return slices.Clone(m.Holders[roleID]), nil
}

func (m *MockDirectory) GrantRole(_ context.Context, roleID, memberKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GrantCalls = append(m.GrantCalls, Action{Kind: Grant, RoleID: roleID, MemberKey: memberKey})
	if m.GrantRoleFunc != nil {
		if err := m.GrantRoleFunc(roleID, memberKey); err != nil {
			return err
		}
	}
	if !slices.Contains(m.Holders[roleID], memberKey) {
		m.Holders[roleID] = append(m.Holders[roleID], memberKey)
	}
	return nil
}

func (m *MockDirectory) RevokeRole(_ context.Context, roleID, memberKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RevokeCalls = append(m.RevokeCalls, Action{Kind: Revoke, RoleID: roleID, MemberKey: memberKey})
	if m.RevokeRoleFunc != nil {
		if err := m.RevokeRoleFunc(roleID, memberKey); err != nil {
			return err
		}
	}
	m.Holders[roleID] = slices.DeleteFunc(m.Holders[roleID], func(k string) bool { return k == memberKey })
	return nil
}

// HoldersOf returns a sorted copy of the holders of roleID.
func (m *MockDirectory) HoldersOf(roleID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	holders := slices.Clone(m.Holders[roleID])
	slices.Sort(holders)
	return holders
}

var _ Synchronizer = (*MockSynchronizer)(nil)

// MockSynchronizer records Synchronize calls.
type MockSynchronizer struct {
	mu sync.Mutex

	SynchronizeFunc func(period standings.Period, entries []standings.LeaderboardEntry, dryRun bool) Result

	SynchronizeCalls []struct {
		Period  standings.Period
		Entries []standings.LeaderboardEntry
		DryRun  bool
	}
}

// NewMockSynchronizer creates a new mock instance.
func NewMockSynchronizer() *MockSynchronizer {
	return &MockSynchronizer{}
}

func (m *MockSynchronizer) Synchronize(_ context.Context, period standings.Period, entries []standings.LeaderboardEntry, dryRun bool) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SynchronizeCalls = append(m.SynchronizeCalls, struct {
		Period  standings.Period
		Entries []standings.LeaderboardEntry
		DryRun  bool
	}{period, entries, dryRun})
	if m.SynchronizeFunc != nil {
		return m.SynchronizeFunc(period, entries, dryRun)
	}
	return Result{}
}

// Calls returns the number of Synchronize calls so far.
func (m *MockSynchronizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SynchronizeCalls)
}
