// ABOUTME: Versioned schema migration runner
// ABOUTME: Applies missing migrations in order, each atomically with its version record
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Migration is one schema step. Up is executed inside the same transaction
// that records Version in the migrations table.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// validateMigrations checks that versions start at 1 and increase by one.
func validateMigrations(list []Migration) error {
	for i, m := range list {
		if m.Version != i+1 {
			return fmt.Errorf("migration %q has version %d, want %d", m.Name, m.Version, i+1)
		}
	}
	return nil
}

// currentVersion returns the highest recorded version, or 0 when the
// migrations table does not exist yet.
func currentVersion(ctx context.Context, database *sql.DB) (int, error) {
	var name string
	err := database.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'migrations'",
	).Scan(&name)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("check migrations table: %w", err)
	}

	var version int
	err = database.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// runMigrations brings the database forward to the last entry of list and
// returns the versions it applied. Completed versions are never re-run.
func runMigrations(ctx context.Context, database *sql.DB, list []Migration) ([]int, error) {
	if err := validateMigrations(list); err != nil {
		return nil, err
	}

	version, err := currentVersion(ctx, database)
	if err != nil {
		return nil, err
	}
	if version > len(list) {
		return nil, fmt.Errorf("database schema version %d is newer than supported version %d", version, len(list))
	}

	var applied []int
	for _, m := range list[version:] {
		if err := applyMigration(ctx, database, m); err != nil {
			return applied, err
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

// applyMigration runs one migration and records it in a single transaction.
func applyMigration(ctx context.Context, database *sql.DB, m Migration) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin transaction: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO migrations (version, applied_at) VALUES (?, ?)",
		m.Version, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("migration %d: record version: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", m.Version, err)
	}
	return nil
}
