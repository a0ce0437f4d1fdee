package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"altnames/internal/archive"
	"altnames/internal/config"
	"altnames/internal/deps"
	"altnames/internal/remote"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := accessReadWrite(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the download and extraction tools for the
// running platform. Both refresh and status use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "aria2",
			Command:     cfg.Download.Aria2Binary,
			Description: "Required for parallel archive download",
		},
		{
			Name:        "Extractor",
			Command:     archive.HostExtractorBinary(cfg.Extract.UnzipBinary, cfg.Extract.SevenZipBinary),
			Description: "Required to extract the raw table from the archive",
		},
	}
	return deps.CheckBinaries(requirements)
}

// CheckSource runs the same HEAD check the refresh uses, without a stored
// token, and reports whether the server answers with an accepted status.
func CheckSource(ctx context.Context, url string, timeout time.Duration) Result {
	const name = "Source"

	url = strings.TrimSpace(url)
	if url == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	decision, err := remote.NewChecker(timeout).Check(ctx, remote.Request{URL: url})
	if err != nil {
		if decision.Status != 0 {
			return Result{Name: name, Detail: fmt.Sprintf("unexpected status %d", decision.Status)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("head failed (%v)", err)}
	}
	if decision.Token != "" {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (%d, etag %s)", decision.Status, decision.Token)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (%d)", decision.Status)}
}
