package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is what schema.sql creates. Raise it together with a new
// upgrades entry.
const schemaVersion = 2

// upgrades lifts a ledger from the keyed version to the next one.
var upgrades = map[int][]string{
	// Version 2 records how many rows survived each filter stage.
	1: {
		"ALTER TABLE refresh_runs ADD COLUMN rows_after_provenance INTEGER NOT NULL DEFAULT 0",
		"ALTER TABLE refresh_runs ADD COLUMN rows_after_language INTEGER NOT NULL DEFAULT 0",
		"ALTER TABLE refresh_runs ADD COLUMN rows_after_script INTEGER NOT NULL DEFAULT 0",
	},
}

// ErrSchemaMismatch reports a ledger this build can neither use nor upgrade.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows) || s.missingVersionTable(ctx):
		return s.migrate(ctx, 0, []string{schemaSQL})
	default:
		return fmt.Errorf("read schema version: %w", err)
	}

	if version == schemaVersion {
		return nil
	}
	mismatch := fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset the run history)",
		ErrSchemaMismatch, version, schemaVersion, s.path)
	if version > schemaVersion {
		return mismatch
	}
	var steps []string
	for v := version; v < schemaVersion; v++ {
		step, ok := upgrades[v]
		if !ok {
			return mismatch
		}
		steps = append(steps, step...)
	}
	return s.migrate(ctx, version, steps)
}

func (s *Store) missingVersionTable(ctx context.Context) bool {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&n)
	return err == nil && n == 0
}

// migrate runs stmts and stamps schemaVersion in one transaction. from is 0
// for a fresh database.
func (s *Store) migrate(ctx context.Context, from int, stmts []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("upgrade schema from version %d: %w", from, err)
		}
	}
	stamp := "UPDATE schema_version SET version = ?"
	if from == 0 {
		stamp = "INSERT INTO schema_version (version) VALUES (?)"
	}
	if _, err := tx.ExecContext(ctx, stamp, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
