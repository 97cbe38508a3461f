package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CounterCuePointer is the counter holding the current cue group.
const CounterCuePointer = "cue_pointer"

// CounterStore persists named integer counters.
type CounterStore struct {
	db *sql.DB
}

// NewCounterStore creates a counter store backed by the given connection.
func NewCounterStore(db *sql.DB) *CounterStore {
	return &CounterStore{db: db}
}

// Load returns the value of the named counter, or 0 if it has never
// been written.
func (s *CounterStore) Load(ctx context.Context, name string) (int, error) {
	query := `SELECT value FROM counters WHERE name = ?`

	var value int
	err := s.db.QueryRowContext(ctx, query, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying counter %q: %w", name, err)
	}
	return value, nil
}

// Replace upserts the named counter.
func (s *CounterStore) Replace(ctx context.Context, name string, value int) error {
	query := `
		INSERT INTO counters (name, value)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`

	if _, err := s.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("replacing counter %q: %w", name, err)
	}
	return nil
}

// Counter binds a name to the store, giving callers a handle that only
// reads and writes that one counter.
func (s *CounterStore) Counter(name string) *Counter {
	return &Counter{store: s, name: name}
}

// Counter is a single named counter. It satisfies the pointer
// persistence interface the cue navigator expects.
type Counter struct {
	store *CounterStore
	name  string
}

// Load returns the counter's current value.
func (c *Counter) Load(ctx context.Context) (int, error) {
	return c.store.Load(ctx, c.name)
}

// Replace overwrites the counter's value.
func (c *Counter) Replace(ctx context.Context, value int) error {
	return c.store.Replace(ctx, c.name, value)
}
