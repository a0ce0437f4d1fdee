// Package config loads, normalizes, and validates altnames configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ALTNAMES_OUTPUT_DIR
// environment fallback. The Config type centralizes every knob the refresh
// pipeline needs and derives the artifact paths (archive, raw table, parquet
// output, token file, run ledger, lock) from the output directory so every
// stage agrees on where things live.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
