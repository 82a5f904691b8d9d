package storage

// manifestSchema creates the append-only entries table. The seq column
// preserves append order independently of timestamps. The two triggers make
// the append-only contract hold even against out-of-band SQL: any UPDATE or
// DELETE aborts.
const manifestSchema = `
CREATE TABLE IF NOT EXISTS manifest_entries (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL UNIQUE,
	unit_id       TEXT NOT NULL,
	inputs_hash   TEXT NOT NULL,
	weight_set_id TEXT NOT NULL,
	score         REAL,
	veto_json     TEXT,
	timestamp     TEXT NOT NULL,
	prev_hash     TEXT NOT NULL,
	entry_hash    TEXT NOT NULL,
	signature     TEXT
);

CREATE INDEX IF NOT EXISTS idx_manifest_unit ON manifest_entries(unit_id);
CREATE INDEX IF NOT EXISTS idx_manifest_weight_set ON manifest_entries(weight_set_id);
CREATE INDEX IF NOT EXISTS idx_manifest_timestamp ON manifest_entries(timestamp);

CREATE TRIGGER IF NOT EXISTS manifest_no_update
BEFORE UPDATE ON manifest_entries
BEGIN
	SELECT RAISE(ABORT, 'manifest entries are append-only');
END;

CREATE TRIGGER IF NOT EXISTS manifest_no_delete
BEFORE DELETE ON manifest_entries
BEGIN
	SELECT RAISE(ABORT, 'manifest entries are append-only');
END;
`
