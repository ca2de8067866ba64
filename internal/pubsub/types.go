package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	EventRefreshPlayerStats EventType = "refresh-player-stats"
)

// RefreshPlayerMessage asks for one member's stats to be fetched again.
type RefreshPlayerMessage struct {
	RunID     string `msgpack:"run_id"`
	MemberKey string `msgpack:"member_key"`
	Username  string `msgpack:"username"`
}
