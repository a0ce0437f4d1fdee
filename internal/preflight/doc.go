// Package preflight provides readiness checks for the directories and
// external tools altnames depends on.
//
// These checks run in two contexts:
//   - "altnames refresh" calls RunAll and CheckSystemDeps before touching the
//     network so a missing extractor fails fast instead of after a long download.
//   - "altnames status" renders the same results alongside the run ledger.
package preflight
