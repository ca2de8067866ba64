package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sqlBackend struct {
	db *sql.DB
}

// NewSQLBackend stores documents in the documents table, one row per slot.
func NewSQLBackend(db *sql.DB) Backend {
	return &sqlBackend{db: db}
}

func (b *sqlBackend) Read(ctx context.Context, slot Slot) ([]byte, error) {
	var body string
	err := b.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE slot = ?", string(slot)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s document: %w", slot, err)
	}
	return []byte(body), nil
}

func (b *sqlBackend) Write(ctx context.Context, slot Slot, data []byte) error {
	query := `
		INSERT INTO documents (slot, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at;
	`
	if _, err := b.db.ExecContext(ctx, query, string(slot), string(data), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to write %s document: %w", slot, err)
	}
	return nil
}
