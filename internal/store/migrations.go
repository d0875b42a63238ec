package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "memories: memory nodes with importance and soft-delete status",
		SQL: `
CREATE TABLE memories (
    id               TEXT PRIMARY KEY,
    content          TEXT NOT NULL,
    kind             TEXT NOT NULL DEFAULT 'atomic' CHECK (kind IN ('atomic', 'composite', 'pattern', 'insight')),
    importance       REAL NOT NULL DEFAULT 0.5,

    -- Usage signals
    created_at       INTEGER NOT NULL,
    last_accessed    INTEGER,
    access_count     INTEGER NOT NULL DEFAULT 0,

    -- Classification
    tags             TEXT,
    context          TEXT,

    -- Lifecycle: deleted rows are tombstones, never removed
    status           TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived', 'deleted')),
    version          INTEGER NOT NULL DEFAULT 1,
    evolution_reason TEXT,
    replaced_by      TEXT,

    project_ref      TEXT,
    session_ref      TEXT
);

CREATE INDEX idx_memories_status     ON memories(status);
CREATE INDEX idx_memories_kind       ON memories(kind);
CREATE INDEX idx_memories_importance ON memories(importance DESC);
CREATE INDEX idx_memories_project    ON memories(project_ref);
`,
	},
	{
		Version:     2,
		Description: "links: bidirectional associations between memories",
		SQL: `
CREATE TABLE links (
    id         TEXT PRIMARY KEY,
    source_id  TEXT NOT NULL,
    target_id  TEXT NOT NULL,
    kind       TEXT NOT NULL CHECK (kind IN ('semantic', 'causal', 'temporal', 'spatial', 'hierarchical', 'contradictory', 'supportive')),
    strength   REAL NOT NULL,
    confidence REAL NOT NULL,
    created_at INTEGER NOT NULL,
    auto       INTEGER NOT NULL DEFAULT 1,

    UNIQUE(source_id, target_id, kind),
    FOREIGN KEY (source_id) REFERENCES memories(id),
    FOREIGN KEY (target_id) REFERENCES memories(id)
);

CREATE INDEX idx_links_source ON links(source_id);
CREATE INDEX idx_links_target ON links(target_id);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
