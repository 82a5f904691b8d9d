package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS clamp_events (
	id         TEXT PRIMARY KEY,
	stage      TEXT NOT NULL,
	raw_value     REAL NOT NULL,
	clamped_value REAL NOT NULL,
	factors    INTEGER NOT NULL,
	timestamp  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clamp_events_stage ON clamp_events(stage);
CREATE INDEX IF NOT EXISTS idx_clamp_events_timestamp ON clamp_events(timestamp);
`

// SQLiteJournal implements Journal backed by SQLite. Suitable for
// single-instance deployments where clamp history must survive restarts.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal opens (creating if needed) the journal database at path.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database %q: %w", path, err)
	}

	// WAL improves concurrent read behavior while the single writer appends.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return &SQLiteJournal{db: db, path: path}, nil
}

// Record appends a clamp event.
func (j *SQLiteJournal) Record(ctx context.Context, event *ClampEvent) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO clamp_events (id, stage, raw_value, clamped_value, factors, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.Stage, event.Before, event.After, event.Factors,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record clamp event %q: %w", event.ID, err)
	}
	return nil
}

// List returns events matching the query, oldest first.
func (j *SQLiteJournal) List(ctx context.Context, query *Query) ([]*ClampEvent, error) {
	where, args := buildFilter(query)

	q := "SELECT id, stage, raw_value, clamped_value, factors, timestamp FROM clamp_events" +
		where + " ORDER BY timestamp ASC"
	if query != nil && query.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", query.Limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clamp events: %w", err)
	}
	defer rows.Close()

	var results []*ClampEvent
	for rows.Next() {
		var event ClampEvent
		var ts string
		if err := rows.Scan(&event.ID, &event.Stage, &event.Before, &event.After, &event.Factors, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan clamp event: %w", err)
		}
		event.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse clamp event timestamp %q: %w", ts, err)
		}
		results = append(results, &event)
	}
	return results, rows.Err()
}

// Count returns the number of events matching the query.
func (j *SQLiteJournal) Count(ctx context.Context, query *Query) (int64, error) {
	where, args := buildFilter(query)

	var count int64
	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clamp_events"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clamp events: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// buildFilter renders query filters as a WHERE clause.
func buildFilter(query *Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var clauses []string
	var args []any

	if query.Stage != "" {
		clauses = append(clauses, "stage = ?")
		args = append(args, query.Stage)
	}
	if query.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, query.Since.UTC().Format(time.RFC3339Nano))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
