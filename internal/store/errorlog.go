package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorEntry is a deduplicated runtime error record.
type ErrorEntry struct {
	ID        string
	Signature string
	Message   string
	Context   string
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
}

// ErrorLog records runtime errors deduplicated by signature. The
// signature should identify the fault site (task name plus error
// text), so a repeating fault bumps one row's count instead of
// inserting a row per occurrence.
type ErrorLog struct {
	db *sql.DB
}

// NewErrorLog creates an error log backed by the given connection.
func NewErrorLog(db *sql.DB) *ErrorLog {
	return &ErrorLog{db: db}
}

// Record logs an error occurrence. A new signature inserts a fresh
// row; a known one increments its count and refreshes last_seen and
// message.
func (l *ErrorLog) Record(ctx context.Context, signature, message, contextInfo string) error {
	query := `
		INSERT INTO error_log (id, signature, message, context, count, first_seen, last_seen)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(signature) DO UPDATE SET
			count = count + 1,
			message = excluded.message,
			last_seen = excluded.last_seen`

	id := "err-" + uuid.NewString()[:8]
	now := time.Now().UTC().Format(timeLayout)
	if _, err := l.db.ExecContext(ctx, query, id, signature, message, contextInfo, now, now); err != nil {
		return fmt.Errorf("recording error: %w", err)
	}
	return nil
}

// List returns all recorded errors, most recent first.
func (l *ErrorLog) List(ctx context.Context) ([]ErrorEntry, error) {
	query := `
		SELECT id, signature, message, context, count, first_seen, last_seen
		FROM error_log
		ORDER BY last_seen DESC`

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying error log: %w", err)
	}
	defer rows.Close()

	var entries []ErrorEntry
	for rows.Next() {
		var e ErrorEntry
		var firstSeen, lastSeen string
		if err := rows.Scan(&e.ID, &e.Signature, &e.Message, &e.Context, &e.Count, &firstSeen, &lastSeen); err != nil {
			return nil, fmt.Errorf("scanning error entry: %w", err)
		}
		e.FirstSeen, _ = time.Parse(timeLayout, firstSeen)
		e.LastSeen, _ = time.Parse(timeLayout, lastSeen)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all recorded errors.
func (l *ErrorLog) Clear(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM error_log`); err != nil {
		return fmt.Errorf("clearing error log: %w", err)
	}
	return nil
}
