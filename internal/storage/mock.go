package storage

import (
	"context"
	"sync"
)

// MockBackend is an in-memory Backend for tests. It is safe for concurrent use.
type MockBackend struct {
	mu sync.Mutex

	Docs map[Slot][]byte

	// ReadErr and WriteErr, when set for a slot, are returned instead of
	// touching Docs.
	ReadErr  map[Slot]error
	WriteErr map[Slot]error

	WriteCalls []Slot
}

// NewMockBackend creates an empty mock backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Docs:     map[Slot][]byte{},
		ReadErr:  map[Slot]error{},
		WriteErr: map[Slot]error{},
	}
}

func (m *MockBackend) Read(_ context.Context, slot Slot) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ReadErr[slot]; err != nil {
		return nil, err
	}
	data, ok := m.Docs[slot]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MockBackend) Write(_ context.Context, slot Slot, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteCalls = append(m.WriteCalls, slot)
	if err := m.WriteErr[slot]; err != nil {
		return err
	}
	m.Docs[slot] = append([]byte(nil), data...)
	return nil
}

// Doc returns a copy of the document stored in slot.
func (m *MockBackend) Doc(slot Slot) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Docs[slot]
	return append([]byte(nil), data...), ok
}

// SetDoc replaces the document stored in slot.
func (m *MockBackend) SetDoc(slot Slot, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Docs[slot] = append([]byte(nil), data...)
}

// FailWrites makes every write to slot return err. A nil err clears it.
func (m *MockBackend) FailWrites(slot Slot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteErr[slot] = err
}

// FailReads makes every read of slot return err. A nil err clears it.
func (m *MockBackend) FailReads(slot Slot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadErr[slot] = err
}
