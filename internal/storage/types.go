package storage

import (
	"errors"
	"sync"

	"github.com/mauv0809/storm-standings/internal/standings"
)

// ErrNotFound is returned by a Backend for a slot that was never written.
var ErrNotFound = errors.New("document not found")

// Slot names one of the two persisted documents.
type Slot string

const (
	SlotLive   Slot = "live"
	SlotBackup Slot = "backup"
)

// store is the Backend-agnostic Store implementation.
type store struct {
	backend Backend
	mu      sync.Mutex
	current standings.RootStore
	loaded  bool
}
