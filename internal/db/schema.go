package db

// SchemaSQL is the complete schema for fresh reqtrack installs.
//
// This is the single source of truth for the database schema. Tests use it
// via GetSchemaSQL() instead of hardcoding CREATE TABLE statements, so any
// drift between repository code and schema fails immediately with
// "no such column".
//
// Keep in sync with internal/db/migrations.go when adding columns or tables.
const SchemaSQL = `
-- Nodes (requirement/task/subtask tree)
--
-- hierarchical_id encodes the full ancestor path (REQ-001.TSK-002.SUB-003)
-- and is immutable once assigned. sequence is the per-(parent_id, level)
-- counter the identifier's last segment is derived from.
CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hierarchical_id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT,
	level TEXT NOT NULL CHECK(level IN ('requirement', 'task', 'subtask')),
	status TEXT NOT NULL CHECK(status IN ('not_started', 'in_progress', 'blocked', 'done')) DEFAULT 'not_started',
	parent_id INTEGER REFERENCES nodes(id) ON DELETE CASCADE,
	sequence INTEGER NOT NULL CHECK(sequence >= 1),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Uniqueness backstop for the allocator. SQLite treats NULLs as distinct in
-- UNIQUE constraints, so root-level nodes need their own partial index.
CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_sibling_seq
	ON nodes(parent_id, level, sequence) WHERE parent_id IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_root_seq
	ON nodes(level, sequence) WHERE parent_id IS NULL;
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_nodes_level_status ON nodes(level, status);

-- Per-sibling-group allocation high-water marks. MAX(sequence) over live
-- rows alone would reuse a sequence after the highest-numbered sibling is
-- deleted; last_sequence survives deletions so sequences are never reused.
-- parent_id 0 stands for NULL (root-level groups).
CREATE TABLE IF NOT EXISTS node_sequences (
	parent_id INTEGER NOT NULL,
	level TEXT NOT NULL,
	last_sequence INTEGER NOT NULL,
	PRIMARY KEY (parent_id, level)
);

-- Status transition history
CREATE TABLE IF NOT EXISTS node_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	node_id INTEGER NOT NULL,
	from_status TEXT NOT NULL,
	to_status TEXT NOT NULL,
	changed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (node_id) REFERENCES nodes(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_node_history_node ON node_history(node_id);
`

// InitSchema creates the schema on fresh installs and runs pending
// migrations on existing databases.
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		if _, err := db.Exec(SchemaSQL); err != nil {
			return err
		}
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}
		// Mark all migrations as applied for fresh installs
		for _, m := range migrations {
			if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return err
			}
		}
		return nil
	}

	// schema_version table exists - run any pending migrations
	return RunMigrations()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
