// ABOUTME: Storage engine connection lifecycle and SQLite setup
// ABOUTME: Owns the single database handle, WAL pragmas, and init/close guards
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// busyTimeout is how long SQLite waits on a locked database, in milliseconds.
const busyTimeout = 5000

// Store is the storage engine for notes. The zero state is uninitialized;
// every CRUD method returns ErrNotInitialized until Initialize succeeds.
type Store struct {
	path   string
	logger *zap.Logger

	migrations []Migration

	mu sync.RWMutex
	db *sql.DB
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for lifecycle and migration messages.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithMigrations replaces the migration list. Used by tests to exercise the
// runner against custom steps.
func WithMigrations(m []Migration) Option {
	return func(s *Store) {
		s.migrations = m
	}
}

// New returns an uninitialized Store backed by the file at dbPath.
func New(dbPath string, opts ...Option) *Store {
	s := &Store{
		path:       dbPath,
		logger:     zap.NewNop(),
		migrations: migrations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Initialized reports whether the connection is open and migrated.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

// Initialize opens the database file, enables WAL, and applies pending
// migrations. Calling it on an initialized Store is a no-op. On failure the
// Store stays uninitialized and the error is an *InitializationError.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	database, err := openSQLite(ctx, s.path)
	if err != nil {
		return &InitializationError{Path: s.path, Err: err}
	}

	applied, err := runMigrations(ctx, database, s.migrations)
	if err != nil {
		_ = database.Close()
		return &InitializationError{Path: s.path, Err: err}
	}
	for _, v := range applied {
		s.logger.Info("migration applied", zap.Int("version", v))
	}

	s.db = database
	s.logger.Info("database initialized", zap.String("path", s.path))
	return nil
}

// Close releases the connection and resets the Store so a later Initialize
// opens a fresh handle. Closing an uninitialized Store is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	s.logger.Info("database connection closed")
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	database, release, err := s.conn()
	if err != nil {
		return 0, err
	}
	defer release()
	return currentVersion(ctx, database)
}

// conn returns the open handle while holding the read lock. The caller must
// invoke release when done so Close cannot race an in-flight query.
func (s *Store) conn() (*sql.DB, func(), error) {
	s.mu.RLock()
	if s.db == nil {
		s.mu.RUnlock()
		return nil, nil, ErrNotInitialized
	}
	return s.db, s.mu.RUnlock, nil
}

// openSQLite creates the parent directory, opens the file, and applies pragmas.
func openSQLite(ctx context.Context, dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One logical connection; pragmas are per-connection in SQLite.
	database.SetMaxOpenConns(1)

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := database.ExecContext(ctx, p); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}

	return database, nil
}
