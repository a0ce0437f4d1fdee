package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"altnames/internal/config"
	"altnames/internal/remote"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAllChecksConfiguredDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "missing-logs")
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Log directory" {
		t.Fatalf("expected only the log directory to fail, got %#v", failed)
	}
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestCheckSystemDepsUsesConfiguredBinaries(t *testing.T) {
	binDir := t.TempDir()
	script := []byte("#!/bin/sh\nexit 0\n")
	for _, name := range []string{"fake-aria2c", "fake-unzip", "fake-7z"} {
		if err := os.WriteFile(filepath.Join(binDir, name), script, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", binDir)

	cfg := config.Default()
	cfg.Download.Aria2Binary = "fake-aria2c"
	cfg.Extract.UnzipBinary = "fake-unzip"
	cfg.Extract.SevenZipBinary = "fake-7z"

	statuses := CheckSystemDeps(&cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("expected %s to be available: %s", status.Name, status.Detail)
		}
	}
	if statuses[0].Command != "fake-aria2c" {
		t.Fatalf("unexpected downloader command %q", statuses[0].Command)
	}
}

func TestCheckSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("ETag", `"abc"`)
			w.WriteHeader(http.StatusOK)
		case "/moved":
			http.Redirect(w, r, "/elsewhere", http.StatusFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	if result := CheckSource(ctx, srv.URL+"/ok", time.Second); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	} else if result.Detail != `Reachable (200, etag "abc")` {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
	if result := CheckSource(ctx, srv.URL+"/moved", time.Second); !result.Passed {
		t.Fatalf("expected redirect status to pass, got: %s", result.Detail)
	}
	if result := CheckSource(ctx, srv.URL+"/gone", time.Second); result.Passed {
		t.Fatal("expected 404 to fail")
	}
	if result := CheckSource(ctx, " ", time.Second); result.Passed {
		t.Fatal("expected missing url to fail")
	}
}

func TestCheckSourceAgreesWithRefreshStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/"))
		if err != nil {
			code = http.StatusBadRequest
		}
		w.WriteHeader(code)
	}))
	defer srv.Close()

	ctx := context.Background()
	for _, code := range []int{200, 206, 302, 304, 403, 404, 500} {
		result := CheckSource(ctx, fmt.Sprintf("%s/%d", srv.URL, code), time.Second)
		if result.Passed != remote.Accepted(code) {
			t.Fatalf("status %d: passed=%v, refresh accepts=%v (%s)", code, result.Passed, remote.Accepted(code), result.Detail)
		}
		if !result.Passed && result.Detail != fmt.Sprintf("unexpected status %d", code) {
			t.Fatalf("status %d: unexpected detail %q", code, result.Detail)
		}
	}
}

func TestCheckSourceReportsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	result := CheckSource(context.Background(), url, time.Second)
	if result.Passed || !strings.HasPrefix(result.Detail, "head failed (") {
		t.Fatalf("expected head failure, got %+v", result)
	}
}
