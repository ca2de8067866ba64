package storage

import (
	"context"

	"github.com/mauv0809/storm-standings/internal/standings"
)

// Backend reads and writes the raw persisted documents.
type Backend interface {
	// Read returns ErrNotFound when nothing was written to slot yet.
	Read(ctx context.Context, slot Slot) ([]byte, error)
	Write(ctx context.Context, slot Slot, data []byte) error
}

// Store owns the RootStore. All writes go through one exclusive path and all
// reads hand out copies.
type Store interface {
	// Load reads the live document. It never fails: a missing or unparsable
	// document is replaced by the default document, which is persisted.
	Load(ctx context.Context) standings.RootStore
	// LoadBackup reads the backup document, or the default document.
	LoadBackup(ctx context.Context) standings.RootStore
	// Save copies the current live document to the backup slot, then writes root.
	Save(ctx context.Context, root standings.RootStore) error
	// Snapshot returns a copy of the last loaded or saved document.
	Snapshot(ctx context.Context) standings.RootStore
	// Mutate loads the live document, applies fn and saves the result.
	Mutate(ctx context.Context, fn func(root *standings.RootStore) error) (standings.RootStore, error)
	// MutateMerged is Mutate on top of the backup merged with the live document.
	MutateMerged(ctx context.Context, fn func(root *standings.RootStore) error) (standings.RootStore, error)
}
