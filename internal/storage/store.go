package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/standings"
)

// New creates a new Store on top of backend.
func New(backend Backend) Store {
	return &store{
		backend: backend,
	}
}

func (s *store) Load(ctx context.Context) standings.RootStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.readLiveLocked(ctx)
	if err != nil {
		log.Error("Failed to read store document, serving the last known state", "error", err)
		if s.loaded {
			return s.current.Clone()
		}
		return standings.NewRootStore()
	}
	return root.Clone()
}

// readLiveLocked returns the live document. Missing and corrupt documents are
// replaced by the default document, which is persisted right away. Only a
// failing backend read is reported, so callers never overwrite a document
// they could not see.
func (s *store) readLiveLocked(ctx context.Context) (standings.RootStore, error) {
	data, err := s.backend.Read(ctx, SlotLive)
	switch {
	case err == nil:
		root, decodeErr := standings.Decode(data)
		if decodeErr == nil {
			s.setCurrent(root)
			return root, nil
		}
		log.Warn("Store document is corrupt, starting from an empty document", "error", decodeErr)
	case errors.Is(err, ErrNotFound):
		log.Info("Store document not found, creating a new one")
	default:
		return standings.RootStore{}, err
	}

	root := standings.NewRootStore()
	if err := s.saveLocked(ctx, root); err != nil {
		log.Error("Failed to persist the default store document", "error", err)
		s.setCurrent(root)
	}
	return root, nil
}

func (s *store) LoadBackup(ctx context.Context) standings.RootStore {
	data, err := s.backend.Read(ctx, SlotBackup)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("Failed to read backup document", "error", err)
		} else {
			log.Debug("Backup document not found")
		}
		return standings.NewRootStore()
	}
	root, err := standings.Decode(data)
	if err != nil {
		log.Warn("Backup document is corrupt, ignoring it", "error", err)
		return standings.NewRootStore()
	}
	return root
}

func (s *store) Save(ctx context.Context, root standings.RootStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, root)
}

// saveLocked writes the backup before the new document. If the backup cannot
// be written the live document is left alone; if the final write fails the
// backup still holds the previous state.
func (s *store) saveLocked(ctx context.Context, root standings.RootStore) error {
	root.Normalize()
	data, err := standings.Encode(root)
	if err != nil {
		return fmt.Errorf("failed to encode store document: %w", err)
	}

	previous, err := s.backend.Read(ctx, SlotLive)
	switch {
	case err == nil:
		if err := s.backend.Write(ctx, SlotBackup, previous); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		log.Debug("Backup created successfully")
	case errors.Is(err, ErrNotFound):
		// First save, nothing to back up.
	default:
		return fmt.Errorf("failed to read current document for backup: %w", err)
	}

	if err := s.backend.Write(ctx, SlotLive, data); err != nil {
		log.Error("Failed to save store document", "error", err)
		return fmt.Errorf("failed to write store document: %w", err)
	}
	s.setCurrent(root)
	log.Debug("Store document saved successfully")
	return nil
}

func (s *store) setCurrent(root standings.RootStore) {
	s.current = root.Clone()
	s.loaded = true
}

func (s *store) Snapshot(ctx context.Context) standings.RootStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if _, err := s.readLiveLocked(ctx); err != nil {
			log.Error("Failed to read store document for snapshot", "error", err)
			return standings.NewRootStore()
		}
	}
	return s.current.Clone()
}

func (s *store) Mutate(ctx context.Context, fn func(root *standings.RootStore) error) (standings.RootStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.readLiveLocked(ctx)
	if err != nil {
		return standings.RootStore{}, fmt.Errorf("failed to read store document: %w", err)
	}
	return s.applyLocked(ctx, root.Clone(), fn)
}

// MutateMerged is the registration write path. The backup is merged under the
// live document (live wins per member and period) so entries that only made it
// into the backup before an interrupted write are not lost. Members removed on
// purpose are pruned again before fn runs. Removal markers come from the live
// document only: a member who registered again after being removed must not
// be pruned by the stale marker the backup still carries. When both documents
// disagree about the same member the backup's version is discarded.
func (s *store) MutateMerged(ctx context.Context, fn func(root *standings.RootStore) error) (standings.RootStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, err := s.readLiveLocked(ctx)
	if err != nil {
		return standings.RootStore{}, fmt.Errorf("failed to read store document: %w", err)
	}
	backup := s.LoadBackup(ctx)
	backup.Removed = nil
	root := standings.MergeInto(backup, live)
	root.PruneRemoved()
	return s.applyLocked(ctx, root, fn)
}

func (s *store) applyLocked(ctx context.Context, root standings.RootStore, fn func(root *standings.RootStore) error) (standings.RootStore, error) {
	if err := fn(&root); err != nil {
		return standings.RootStore{}, err
	}
	if err := s.saveLocked(ctx, root); err != nil {
		return standings.RootStore{}, err
	}
	return root.Clone(), nil
}
