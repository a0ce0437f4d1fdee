package testsupport

import (
	"context"
	"testing"
	"time"

	"altnames/internal/config"
	"altnames/internal/history"
)

// MustOpenHistory opens the run ledger for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun appends a finished run with the given outcome to store.
func RecordRun(t testing.TB, store *history.Store, runID string, outcome history.Outcome, started time.Time) history.Run {
	t.Helper()

	run := history.Run{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Outcome:    outcome,
		HTTPStatus: 200,
		ETag:       `"` + runID + `"`,
	}
	if outcome == history.OutcomeError {
		run.ErrorKind = "fetch"
		run.Message = "fetch failed"
	}
	if outcome == history.OutcomeSuccess {
		run.RowsRead = 16
		run.RowsAfterProvenance = 14
		run.RowsAfterLanguage = 12
		run.RowsAfterScript = 10
		run.RowsWritten = 7
	}
	if err := store.Record(context.Background(), run); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return run
}
