// Package main hosts the altnames CLI entrypoint and command graph.
//
// Running the binary with no arguments performs one refresh attempt: check
// the remote archive's entity tag, and when it changed download, extract and
// transform it into the canonical Chinese-name parquet file. The remaining
// commands inspect that state (status, history) or scaffold configuration.
//
// Keep this package lean: the refresh itself lives in internal/refresh and
// its collaborators; commands here resolve configuration, set up logging and
// render results.
package main
