package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stagewire/cuemesh/internal/show"
)

// Well-known table names used by the server.
const (
	TableAttributes = "attributes"
	TableStates     = "states"
	TableCues       = "cues"
)

// timeLayout matches SQLite's datetime('now') output.
const timeLayout = "2006-01-02 15:04:05"

// TableStore persists raw show tables as JSON payloads, one row per
// table name.
type TableStore struct {
	db *sql.DB
}

// NewTableStore creates a table store backed by the given connection.
func NewTableStore(db *sql.DB) *TableStore {
	return &TableStore{db: db}
}

// Load retrieves the named table. A missing row or a payload that no
// longer parses both return an empty table rather than an error, so a
// fresh or damaged database degrades to "no show loaded".
func (s *TableStore) Load(ctx context.Context, name string) (*show.Table, error) {
	query := `SELECT payload FROM show_tables WHERE name = ?`

	var payload string
	err := s.db.QueryRowContext(ctx, query, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return show.NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying show table %q: %w", name, err)
	}

	var t show.Table
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return show.NewTable(), nil
	}
	return &t, nil
}

// Replace upserts the named table, overwriting any previous payload.
func (s *TableStore) Replace(ctx context.Context, name string, t *show.Table) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("serialising show table %q: %w", name, err)
	}

	query := `
		INSERT INTO show_tables (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(timeLayout)
	if _, err := s.db.ExecContext(ctx, query, name, string(payload), now); err != nil {
		return fmt.Errorf("replacing show table %q: %w", name, err)
	}
	return nil
}
