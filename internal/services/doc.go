// Package services defines shared utilities consumed by the refresh pipeline
// stages.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that tag failures with the
//     pipeline step that produced them, and Classify which maps a failure back
//     to the kind recorded in the run ledger.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services
