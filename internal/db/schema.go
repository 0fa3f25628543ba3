// ABOUTME: Database schema definitions
// ABOUTME: SQL for the notes and migrations tables created by version 1
package db

// LatestVersion is the schema version produced by the built-in migrations.
const LatestVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS migrations (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at DESC);
`

var migrations = []Migration{
	{Version: 1, Name: "create notes table", Up: schemaV1},
}
