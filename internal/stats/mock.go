package stats

import (
	"context"
	"sync"
)

var _ Client = (*MockClient)(nil)

// MockClient is a mock implementation of the Client interface for testing.
type MockClient struct {
	mu sync.Mutex

	FetchStatsFunc func(username string) (PlayerStats, error)
	// Responses is used when FetchStatsFunc is nil. Unknown usernames get
	// ErrPlayerNotFound.
	Responses map[string]PlayerStats

	FetchStatsCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockClient {
	return &MockClient{Responses: map[string]PlayerStats{}}
}

func (m *MockClient) FetchStats(_ context.Context, username string) (PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchStatsCalls = append(m.FetchStatsCalls, username)
	if m.FetchStatsFunc != nil {
		return m.FetchStatsFunc(username)
	}
	s, ok := m.Responses[username]
	if !ok {
		return PlayerStats{}, ErrPlayerNotFound
	}
	return s, nil
}

// Calls returns a copy of the usernames fetched so far.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.FetchStatsCalls...)
}
