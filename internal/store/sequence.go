package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// sequenceCounter numbers rows across every table that carries the event
// mixin, so progress, attempts, hints and session rows can be merged into
// one timeline. Ties on timestamp are broken by this number.
type sequenceCounter struct {
	db *sql.DB
}

// newSequenceCounter creates the counter row on first open. The start
// value is the highest sequence already stored, so a database whose
// counter row was dropped keeps numbering upward.
func newSequenceCounter(ctx context.Context, db *sql.DB, tables []string) (*sequenceCounter, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS event_sequence (
		id   INTEGER PRIMARY KEY CHECK (id = 1),
		last INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create event_sequence: %w", err)
	}

	start := "0"
	if len(tables) > 0 {
		parts := make([]string, len(tables))
		for i, t := range tables {
			parts[i] = "SELECT MAX(sequence) AS m FROM " + t
		}
		start = "(SELECT COALESCE(MAX(m), 0) FROM (" + strings.Join(parts, " UNION ALL ") + "))"
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO event_sequence (id, last) VALUES (1, `+start+`)`); err != nil {
		return nil, fmt.Errorf("seed event_sequence: %w", err)
	}
	return &sequenceCounter{db: db}, nil
}

// Next reserves one number. The increment and read are a single statement.
func (c *sequenceCounter) Next(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, `UPDATE event_sequence SET last = last + 1 WHERE id = 1 RETURNING last`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return n, nil
}
