package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the emotion database schema.
const Schema = `
-- Sessions table. Sessions are never deleted.
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    remote_addr TEXT,
    created_at TIMESTAMP NOT NULL
);

-- Emotion records table. Rows are immutable and removed only by the
-- retention pruner.
CREATE TABLE IF NOT EXISTS emotions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id),
    dominant_emotion TEXT NOT NULL,
    emotion_scores TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Index for per-session lookups
CREATE INDEX IF NOT EXISTS idx_emotions_session_id ON emotions(session_id);

-- Index for the retention purge range scan
CREATE INDEX IF NOT EXISTS idx_emotions_created_at ON emotions(created_at);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
