package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type fileBackend struct {
	paths map[Slot]string
}

// NewFileBackend stores the live and backup documents as two JSON files.
func NewFileBackend(livePath, backupPath string) Backend {
	return &fileBackend{paths: map[Slot]string{
		SlotLive:   livePath,
		SlotBackup: backupPath,
	}}
}

func (b *fileBackend) path(slot Slot) (string, error) {
	p, ok := b.paths[slot]
	if !ok || p == "" {
		return "", fmt.Errorf("no file configured for slot %q", slot)
	}
	return p, nil
}

func (b *fileBackend) Read(_ context.Context, slot Slot) ([]byte, error) {
	p, err := b.path(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// Write replaces the file through a temporary sibling and a rename, so a
// crash leaves either the old or the new content on disk.
func (b *fileBackend) Write(_ context.Context, slot Slot, data []byte) error {
	p, err := b.path(slot)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", p, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to replace %s: %w", p, err)
	}
	return nil
}
