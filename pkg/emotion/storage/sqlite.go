package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Peixotim/emotion-api/pkg/emotion"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/emotion.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the emotion.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "emotion.storage.sqlite")

	// Foreign key enforcement is a per-connection setting, so it must be
	// part of the DSN rather than a PRAGMA issued on one pooled connection.
	dsn := fmt.Sprintf("%s?_foreign_keys=on", config.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, emotion.NewStorageError("sqlite", "open", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	// Initialize database
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	// Enable WAL mode if configured
	if s.config.WALMode {
		_, err := s.db.Exec("PRAGMA journal_mode=WAL;")
		if err != nil {
			return emotion.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	// Set busy timeout
	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs))
	if err != nil {
		return emotion.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	// Create schema
	_, err = s.db.Exec(Schema)
	if err != nil {
		return emotion.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	// Insert schema version
	_, err = s.db.Exec(InsertSchemaVersion, SchemaVersion)
	if err != nil {
		return emotion.NewStorageError("sqlite", "insert_schema_version", err)
	}

	// Verify schema version
	var version int
	err = s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return emotion.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return emotion.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// CreateSession persists a new session.
func (s *SQLiteStorage) CreateSession(ctx context.Context, session *emotion.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return emotion.NewStorageError("sqlite", "create_session", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", session.ID).Scan(&exists)
	if err == nil {
		return &emotion.DuplicateSessionError{SessionID: session.ID}
	}
	if err != sql.ErrNoRows {
		return emotion.NewStorageError("sqlite", "create_session", err)
	}

	// Convert empty remote address to NULL
	var remoteAddr interface{}
	if session.RemoteAddr != "" {
		remoteAddr = session.RemoteAddr
	}

	// Timestamps are stored in UTC so that textual comparisons inside
	// SQLite agree with time ordering.
	createdAt := session.CreatedAt.UTC()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (id, remote_addr, created_at) VALUES (?, ?, ?)",
		session.ID, remoteAddr, createdAt,
	)
	if err != nil {
		return emotion.NewStorageError("sqlite", "create_session", err)
	}

	if err := tx.Commit(); err != nil {
		return emotion.NewStorageError("sqlite", "create_session", err)
	}

	session.CreatedAt = createdAt
	return nil
}

// GetSession retrieves a session by id.
func (s *SQLiteStorage) GetSession(ctx context.Context, id string) (*emotion.Session, error) {
	var session emotion.Session
	var remoteAddr sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, remote_addr, created_at FROM sessions WHERE id = ?", id,
	).Scan(&session.ID, &remoteAddr, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, &emotion.SessionNotFoundError{SessionID: id}
	}
	if err != nil {
		return nil, emotion.NewStorageError("sqlite", "get_session", err)
	}

	if remoteAddr.Valid {
		session.RemoteAddr = remoteAddr.String
	}

	return &session, nil
}

// RecordEmotion persists one classification result and returns the assigned
// record id. The stored timestamp is clamped inside the insert transaction
// so that records of a session never go backwards in time.
func (s *SQLiteStorage) RecordEmotion(ctx context.Context, record *emotion.EmotionRecord) (int64, error) {
	scores, err := json.Marshal(record.EmotionScores)
	if err != nil {
		return 0, emotion.NewStorageError("sqlite", "record_emotion", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, emotion.NewStorageError("sqlite", "record_emotion", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", record.SessionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return 0, &emotion.UnknownSessionError{SessionID: record.SessionID}
	}
	if err != nil {
		return 0, emotion.NewStorageError("sqlite", "record_emotion", err)
	}

	// Clamp created_at against the newest record of the session
	createdAt := record.CreatedAt.UTC()
	var newest time.Time
	err = tx.QueryRowContext(ctx,
		"SELECT created_at FROM emotions WHERE session_id = ? ORDER BY created_at DESC LIMIT 1",
		record.SessionID,
	).Scan(&newest)
	if err != nil && err != sql.ErrNoRows {
		return 0, emotion.NewStorageError("sqlite", "record_emotion", err)
	}
	if err == nil && createdAt.Before(newest) {
		createdAt = newest
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO emotions (session_id, dominant_emotion, emotion_scores, created_at) VALUES (?, ?, ?, ?)",
		record.SessionID, string(record.DominantEmotion), string(scores), createdAt,
	)
	if err != nil {
		return 0, emotion.NewStorageError("sqlite", "record_emotion", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, emotion.NewStorageError("sqlite", "record_emotion", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, emotion.NewStorageError("sqlite", "record_emotion", err)
	}

	record.ID = id
	record.CreatedAt = createdAt
	return id, nil
}

// PurgeOlderThan deletes all emotion records with created_at strictly before
// cutoff. Returns the number of records deleted. Sessions are untouched.
func (s *SQLiteStorage) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM emotions WHERE created_at < ?", cutoff.UTC(),
	)
	if err != nil {
		return 0, emotion.NewStorageError("sqlite", "purge", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, emotion.NewStorageError("sqlite", "purge", err)
	}

	return count, nil
}

// CountRecords returns the number of emotion records for a session.
func (s *SQLiteStorage) CountRecords(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM emotions WHERE session_id = ?", sessionID,
	).Scan(&count)
	if err != nil {
		return 0, emotion.NewStorageError("sqlite", "count_records", err)
	}

	return count, nil
}

// ListRecords returns up to limit emotion records for a session, newest first.
func (s *SQLiteStorage) ListRecords(ctx context.Context, sessionID string, limit int) ([]*emotion.EmotionRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, dominant_emotion, emotion_scores, created_at
		 FROM emotions WHERE session_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, emotion.NewStorageError("sqlite", "list_records", err)
	}
	defer rows.Close()

	records := []*emotion.EmotionRecord{}
	for rows.Next() {
		var record emotion.EmotionRecord
		var dominant, scores string
		if err := rows.Scan(&record.ID, &record.SessionID, &dominant, &scores, &record.CreatedAt); err != nil {
			return nil, emotion.NewStorageError("sqlite", "scan", err)
		}
		record.DominantEmotion = emotion.Label(dominant)
		if err := json.Unmarshal([]byte(scores), &record.EmotionScores); err != nil {
			return nil, emotion.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, emotion.NewStorageError("sqlite", "list_records", err)
	}

	return records, nil
}

// Ping verifies the database is reachable. Used by readiness checks.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return emotion.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return emotion.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite storage closed")
	return nil
}
