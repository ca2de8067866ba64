package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/mauv0809/storm-standings/internal/standings"
)

var _ Notifier = (*MockNotifier)(nil)

// MockNotifier is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type MockNotifier struct {
	mu sync.Mutex

	PublishLeaderboardFunc func(req PublishRequest, dryRun bool) (PublishResult, error)

	PublishCalls []PublishRequest
	// posts counts creations so every new post gets its own timestamp.
	posts int
}

// NewMock creates a new mock instance.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

// PublishLeaderboard edits req.Known when set and creates a post otherwise.
func (m *MockNotifier) PublishLeaderboard(_ context.Context, req PublishRequest, dryRun bool) (PublishResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCalls = append(m.PublishCalls, req)
	if m.PublishLeaderboardFunc != nil {
		return m.PublishLeaderboardFunc(req, dryRun)
	}
	if dryRun {
		return PublishResult{Ref: req.Known, Action: ActionDryRun}, nil
	}
	if req.Known.TS != "" && req.Known.Channel == req.Channel {
		return PublishResult{Ref: req.Known, Action: ActionEdited}, nil
	}
	m.posts++
	return PublishResult{
		Ref:    standings.PostRef{Channel: req.Channel, TS: fmt.Sprintf("1700000000.%06d", m.posts)},
		Action: ActionCreated,
	}, nil
}

// Published returns a copy of the recorded publish requests.
func (m *MockNotifier) Published() []PublishRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishRequest(nil), m.PublishCalls...)
}

func (m *MockNotifier) FormatLeaderboardResponse(period standings.Period, entries []standings.LeaderboardEntry) (any, error) {
	return fmt.Sprintf("%s: %d entries", period.LeaderboardTitle(), len(entries)), nil
}

func (m *MockNotifier) FormatPlayerStatsResponse(period standings.Period, entry standings.LeaderboardEntry) (any, error) {
	return fmt.Sprintf("%s %s", entry.MemberKey, period), nil
}

func (m *MockNotifier) FormatRankResponse(entry standings.LeaderboardEntry, field standings.StatField) (any, error) {
	return fmt.Sprintf("%s %s", entry.MemberKey, entry.Stats.Field(field)), nil
}

func (m *MockNotifier) FormatTextResponse(text string) (any, error) {
	return text, nil
}
