// Package history keeps a SQLite ledger of refresh attempts so operators can
// see when the canonical names were last rebuilt and why a run failed.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome is the terminal state of a refresh run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// Run is one ledger row.
type Run struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    Outcome
	ErrorKind  string
	Message    string
	HTTPStatus int
	ETag       string
	RowsRead   int
	// Rows left after the provenance, language and script filters.
	RowsAfterProvenance int
	RowsAfterLanguage   int
	RowsAfterScript     int
	RowsWritten         int
	Forced              bool
}

// Duration is the wall time the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends run to the ledger.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.RunID == "" {
		return errors.New("run id required")
	}
	if run.Outcome == "" {
		return errors.New("run outcome required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO refresh_runs (
            run_id, started_at, finished_at, outcome, error_kind, message,
            http_status, etag, rows_read, rows_after_provenance,
            rows_after_language, rows_after_script, rows_written, forced
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		string(run.Outcome),
		nullableString(run.ErrorKind),
		nullableString(run.Message),
		nullableInt(run.HTTPStatus),
		nullableString(run.ETag),
		run.RowsRead,
		run.RowsAfterProvenance,
		run.RowsAfterLanguage,
		run.RowsAfterScript,
		run.RowsWritten,
		boolToInt(run.Forced),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, started_at, finished_at, outcome, error_kind, message,
            http_status, etag, rows_read, rows_after_provenance,
            rows_after_language, rows_after_script, rows_written, forced
        FROM refresh_runs
        ORDER BY started_at DESC, id DESC
        LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Latest returns the most recent run. ok is false when the ledger is empty.
func (s *Store) Latest(ctx context.Context) (Run, bool, error) {
	runs, err := s.Recent(ctx, 1)
	if err != nil || len(runs) == 0 {
		return Run{}, false, err
	}
	return runs[0], true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		started    string
		finished   string
		outcome    string
		errorKind  sql.NullString
		message    sql.NullString
		httpStatus sql.NullInt64
		etag       sql.NullString
		forced     int
	)
	if err := row.Scan(&run.RunID, &started, &finished, &outcome, &errorKind, &message,
		&httpStatus, &etag, &run.RowsRead, &run.RowsAfterProvenance, &run.RowsAfterLanguage,
		&run.RowsAfterScript, &run.RowsWritten, &forced); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	var err error
	if run.StartedAt, err = parseTimeString(started); err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", started, err)
	}
	if run.FinishedAt, err = parseTimeString(finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at %q: %w", finished, err)
	}
	run.Outcome = Outcome(outcome)
	run.ErrorKind = errorKind.String
	run.Message = message.String
	run.HTTPStatus = int(httpStatus.Int64)
	run.ETag = etag.String
	run.Forced = forced != 0
	return run, nil
}

// Fixed-width timestamps keep ORDER BY started_at chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
