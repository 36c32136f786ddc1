package db

import (
	"database/sql"
	"fmt"
)

const scanMetaTableDDL = `
CREATE TABLE IF NOT EXISTS scan_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    root_path TEXT NOT NULL,
    case_sensitive INTEGER NOT NULL DEFAULT 0,
    start_time INTEGER NOT NULL,
    end_time INTEGER,
    scanned INTEGER DEFAULT 0,
    matched INTEGER DEFAULT 0,
    matched_bytes INTEGER DEFAULT 0,
    file_count INTEGER DEFAULT 0,
    folder_count INTEGER DEFAULT 0,
    skipped INTEGER DEFAULT 0
);
`

const rulesTableDDL = `
CREATE TABLE IF NOT EXISTS rules (
    idx INTEGER PRIMARY KEY,
    action TEXT NOT NULL,
    pattern TEXT NOT NULL,
    lineno INTEGER NOT NULL,
    enabled INTEGER NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT ''
);
`

const nodesTableDDL = `
CREATE TABLE IF NOT EXISTS nodes (
    id INTEGER PRIMARY KEY,
    parent_id INTEGER,
    abs_path TEXT NOT NULL,
    rel_path TEXT UNIQUE NOT NULL,
    kind INTEGER NOT NULL,
    size INTEGER NOT NULL,
    mtime INTEGER NOT NULL,
    rule_index INTEGER NOT NULL,
    rule_ids TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT ''
);
`

const nodesParentIndexDDL = `CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);`
const nodesRuleIndexDDL = `CREATE INDEX IF NOT EXISTS idx_nodes_rule ON nodes(rule_index);`

// InitSchema creates all tables in the database.
func InitSchema(db *sql.DB) error {
	ddls := []string{
		scanMetaTableDDL,
		rulesTableDDL,
		nodesTableDDL,
		nodesParentIndexDDL,
		nodesRuleIndexDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// ApplyWritePragmas configures SQLite for snapshot writing.
func ApplyWritePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// ApplyReadPragmas configures SQLite for read-only browsing.
func ApplyReadPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA query_only = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// Finalize prepares the database for read-only access.
func Finalize(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize: %w", err)
	}

	// Switch from WAL to DELETE for better portability
	if _, err := db.Exec("PRAGMA journal_mode = DELETE"); err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	return nil
}
