package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// counterTimeout bounds a single counter query. Counters are best effort and
// must never hold up a cycle.
const counterTimeout = 5 * time.Second

// sqlCounters keeps durable operation counters in the counters table.
type sqlCounters struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a MetricsStore on db. The counters table is created by the
// database migrations.
func New(db *sql.DB) MetricsStore {
	return &sqlCounters{db: db, now: time.Now}
}

// Increment adds one to key. Failures are logged and otherwise ignored.
func (c *sqlCounters) Increment(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
	defer cancel()

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO counters (key, value, updated_at) VALUES (?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET value = value + 1, updated_at = excluded.updated_at`,
		key, c.now().Unix())
	if err != nil {
		log.Warn("Failed to increment counter", "key", key, "error", err)
		return
	}
	log.Debug("Counter incremented", "key", key)
}

// GetAll returns every counter that was incremented at least once.
func (c *sqlCounters) GetAll() (map[string]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, `SELECT key, value FROM counters`)
	if err != nil {
		return nil, fmt.Errorf("failed to read counters: %w", err)
	}
	defer rows.Close()

	counters := map[string]int{}
	for rows.Next() {
		var (
			key   string
			value int
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan counter: %w", err)
		}
		counters[key] = value
	}
	return counters, rows.Err()
}
