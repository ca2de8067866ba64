package pubsub

import (
	"context"
	"sync"
)

var _ PubSubClient = (*MockPubSubClient)(nil)

// MockPubSubClient keeps published messages in memory. Messages go through
// Encode so tests can push them back through ProcessMessage unchanged.
type MockPubSubClient struct {
	mu     sync.Mutex
	sent   []SendMessageCall
	closed bool

	// PublishErr, when set, fails every SendMessage before anything is
	// recorded.
	PublishErr error
}

// SendMessageCall is one recorded publish.
type SendMessageCall struct {
	Topic   EventType
	Data    any
	Encoded []byte
}

func NewMock() *MockPubSubClient {
	return &MockPubSubClient{}
}

func (m *MockPubSubClient) SendMessage(_ context.Context, topic EventType, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	encoded, err := Encode(data)
	if err != nil {
		return err
	}
	m.sent = append(m.sent, SendMessageCall{Topic: topic, Data: data, Encoded: encoded})
	return nil
}

func (m *MockPubSubClient) ProcessMessage(data []byte, returnValue any) error {
	return Decode(data, returnValue)
}

func (m *MockPubSubClient) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

// Sent returns a copy of the recorded publishes in order.
func (m *MockPubSubClient) Sent() []SendMessageCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SendMessageCall(nil), m.sent...)
}

// IsClosed reports whether Close was called.
func (m *MockPubSubClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
