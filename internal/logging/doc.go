// Package logging assembles structured slog loggers and formatting helpers used
// across the refresh pipeline.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can tag log lines
// with the run id and pipeline stage. The package also provides a no-op logger
// for tests and wiring code that cannot fail, plus age-based pruning of the log
// directory.
package logging
