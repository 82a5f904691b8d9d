package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/ganymede/pkg/manifest"
	"mercator-hq/ganymede/pkg/veto"
)

// SQLiteConfig contains configuration for the SQLite manifest backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// applyDefaults fills zero-valued fields.
func (c *SQLiteConfig) applyDefaults() {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = 5 * time.Second
	}
}

// SQLiteStorage implements Storage backed by SQLite with WAL mode and
// append-only triggers.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (creating if needed) the manifest database.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil || config.Path == "" {
		return nil, manifest.NewStorageError("sqlite", "open", fmt.Errorf("database path is required"))
	}
	cfg := *config
	cfg.applyDefaults()

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, manifest.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if _, err := db.Exec(manifestSchema); err != nil {
		db.Close()
		return nil, manifest.NewStorageError("sqlite", "initialize", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Append adds an entry to the end of the manifest.
func (s *SQLiteStorage) Append(ctx context.Context, entry *manifest.Entry) error {
	var score any
	if entry.Score != nil {
		score = *entry.Score
	}

	var vetoJSON any
	if entry.Veto != nil {
		raw, err := json.Marshal(entry.Veto)
		if err != nil {
			return manifest.NewStorageError("sqlite", "append", err)
		}
		vetoJSON = string(raw)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO manifest_entries
		 (id, unit_id, inputs_hash, weight_set_id, score, veto_json, timestamp, prev_hash, entry_hash, signature)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UnitID, entry.InputsHash, entry.WeightSetID,
		score, vetoJSON,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.PrevHash, entry.EntryHash, nullableString(entry.Signature),
	)
	if err != nil {
		return manifest.NewStorageError("sqlite", "append", err)
	}
	return nil
}

// List returns entries matching the query in append order.
func (s *SQLiteStorage) List(ctx context.Context, query *Query) ([]*manifest.Entry, error) {
	where, args := buildWhere(query)

	q := `SELECT id, unit_id, inputs_hash, weight_set_id, score, veto_json, timestamp, prev_hash, entry_hash, signature
	      FROM manifest_entries` + where + " ORDER BY seq ASC"
	if query != nil && query.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", query.Limit)
		if query.Offset > 0 {
			q += fmt.Sprintf(" OFFSET %d", query.Offset)
		}
	} else if query != nil && query.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET.
		q += fmt.Sprintf(" LIMIT -1 OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, manifest.NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	var results []*manifest.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, manifest.NewStorageError("sqlite", "list", err)
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, manifest.NewStorageError("sqlite", "list", err)
	}
	return results, nil
}

// Count returns the number of entries matching the query.
func (s *SQLiteStorage) Count(ctx context.Context, query *Query) (int64, error) {
	where, args := buildWhere(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM manifest_entries"+where, args...).Scan(&count)
	if err != nil {
		return 0, manifest.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Last returns the most recently appended entry, or nil when empty.
func (s *SQLiteStorage) Last(ctx context.Context) (*manifest.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, unit_id, inputs_hash, weight_set_id, score, veto_json, timestamp, prev_hash, entry_hash, signature
		 FROM manifest_entries ORDER BY seq DESC LIMIT 1`)
	if err != nil {
		return nil, manifest.NewStorageError("sqlite", "last", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return nil, manifest.NewStorageError("sqlite", "last", err)
	}
	return entry, nil
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanEntry reads one row into an Entry.
func scanEntry(rows *sql.Rows) (*manifest.Entry, error) {
	var entry manifest.Entry
	var score sql.NullFloat64
	var vetoJSON, signature sql.NullString
	var ts string

	err := rows.Scan(&entry.ID, &entry.UnitID, &entry.InputsHash, &entry.WeightSetID,
		&score, &vetoJSON, &ts, &entry.PrevHash, &entry.EntryHash, &signature)
	if err != nil {
		return nil, err
	}

	if score.Valid {
		v := score.Float64
		entry.Score = &v
	}
	if vetoJSON.Valid && vetoJSON.String != "" {
		var v veto.Result
		if err := json.Unmarshal([]byte(vetoJSON.String), &v); err != nil {
			return nil, fmt.Errorf("malformed veto record: %w", err)
		}
		entry.Veto = &v
	}
	if signature.Valid {
		entry.Signature = signature.String
	}

	entry.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	return &entry, nil
}

// buildWhere renders query filters as a WHERE clause.
func buildWhere(query *Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var clauses []string
	var args []any

	if query.UnitID != "" {
		clauses = append(clauses, "unit_id = ?")
		args = append(args, query.UnitID)
	}
	if query.WeightSetID != "" {
		clauses = append(clauses, "weight_set_id = ?")
		args = append(args, query.WeightSetID)
	}
	if query.VetoedOnly {
		clauses = append(clauses, "veto_json IS NOT NULL")
	}
	if query.StartTime != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, query.StartTime.UTC().Format(time.RFC3339Nano))
	}
	if query.EndTime != nil {
		clauses = append(clauses, "timestamp < ?")
		args = append(args, query.EndTime.UTC().Format(time.RFC3339Nano))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// nullableString maps "" to NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
