package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"altnames/internal/services"
)

type stubExecutor struct {
	calls    []call
	failOn   string
	onRun    func(binary string, args []string) error
	outLines []string
}

type call struct {
	binary string
	args   []string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	s.calls = append(s.calls, call{binary: binary, args: append([]string(nil), args...)})
	for _, line := range s.outLines {
		onOutput(line)
	}
	if binary == s.failOn {
		return errors.New("exit status 9")
	}
	if s.onRun != nil {
		return s.onRun(binary, args)
	}
	return nil
}

// fakeTools writes the archive when aria2c runs and the member when the
// extractor runs, mimicking the real binaries.
func fakeTools(member string) func(binary string, args []string) error {
	return func(binary string, args []string) error {
		switch binary {
		case "aria2c":
			var dir, out string
			for _, arg := range args {
				if v, ok := strings.CutPrefix(arg, "--dir="); ok {
					dir = v
				}
				if v, ok := strings.CutPrefix(arg, "--out="); ok {
					out = v
				}
			}
			return os.WriteFile(filepath.Join(dir, out), []byte("PK\x03\x04zip"), 0o644)
		case "unzip":
			return os.WriteFile(filepath.Join(args[len(args)-1], member), []byte("1\t2\tzh\t北京\t1\t\t\t\t\t\n"), 0o644)
		}
		return nil
	}
}

func TestAria2Args(t *testing.T) {
	a, err := NewAria2("aria2c", 4)
	if err != nil {
		t.Fatalf("NewAria2: %v", err)
	}
	got := a.Args("https://example.com/alternateNamesV2.zip", "/data/out/alternateNamesV2.zip")
	want := []string{
		"--split=4",
		"--max-connection-per-server=4",
		"--allow-overwrite=true",
		"--dir=/data/out",
		"--out=alternateNamesV2.zip",
		"https://example.com/alternateNamesV2.zip",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", got, want)
	}
}

func TestNewAria2RequiresBinary(t *testing.T) {
	if _, err := NewAria2("  ", 4); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestExtractorForPlatform(t *testing.T) {
	if got := ExtractorFor("windows", "unzip", "7z"); got.Name() != "7z" {
		t.Fatalf("expected 7z on windows, got %s", got.Name())
	}
	for _, goos := range []string{"linux", "darwin", "freebsd"} {
		if got := ExtractorFor(goos, "unzip", "7z"); got.Name() != "unzip" {
			t.Fatalf("expected unzip on %s, got %s", goos, got.Name())
		}
	}
	if got := ExtractorFor("linux", "", ""); got.Name() != "unzip" {
		t.Fatalf("expected default unzip binary, got %s", got.Name())
	}
}

func TestExtractorArgsOverwrite(t *testing.T) {
	unzip := NewUnzip("unzip").Args("/d/a.zip", "a.txt", "/d")
	if !reflect.DeepEqual(unzip, []string{"-o", "/d/a.zip", "a.txt", "-d", "/d"}) {
		t.Fatalf("unexpected unzip args %v", unzip)
	}
	seven := NewSevenZip("7z").Args(`C:\d\a.zip`, "a.txt", `C:\d`)
	if !reflect.DeepEqual(seven, []string{"e", `C:\d\a.zip`, "a.txt", `-oC:\d`, "-aoa", "-y"}) {
		t.Fatalf("unexpected 7z args %v", seven)
	}
}

func TestMaterializeDownloadsExtractsAndRemovesArchive(t *testing.T) {
	dir := t.TempDir()
	exec := &stubExecutor{onRun: fakeTools("alternateNamesV2.txt"), outLines: []string{"[#1 SIZE:1MiB]"}}
	aria, err := NewAria2("aria2c", 2, WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewAria2: %v", err)
	}
	m := NewMaterializer(aria, ExtractorFor("linux", "unzip", "7z", WithExecutor(exec)), nil)

	archivePath := filepath.Join(dir, "alternateNamesV2.zip")
	result, err := m.Materialize(context.Background(), Request{
		URL:         "https://example.com/alternateNamesV2.zip",
		ArchivePath: archivePath,
		Member:      "alternateNamesV2.txt",
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if result.RawPath != filepath.Join(dir, "alternateNamesV2.txt") {
		t.Fatalf("unexpected raw path %q", result.RawPath)
	}
	if result.ArchiveBytes == 0 {
		t.Fatal("expected archive size to be reported")
	}
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Fatalf("expected archive removed, stat err=%v", err)
	}
	if _, err := os.Stat(result.RawPath); err != nil {
		t.Fatalf("expected raw table present: %v", err)
	}
	if len(exec.calls) != 2 || exec.calls[0].binary != "aria2c" || exec.calls[1].binary != "unzip" {
		t.Fatalf("unexpected calls %+v", exec.calls)
	}
}

func TestMaterializeDownloadFailure(t *testing.T) {
	dir := t.TempDir()
	exec := &stubExecutor{failOn: "aria2c"}
	aria, _ := NewAria2("aria2c", 4, WithExecutor(exec))
	m := NewMaterializer(aria, NewUnzip("unzip", WithExecutor(exec)), nil)

	_, err := m.Materialize(context.Background(), Request{URL: "u", ArchivePath: filepath.Join(dir, "a.zip"), Member: "a.txt"})
	if !errors.Is(err, services.ErrMaterialize) {
		t.Fatalf("expected ErrMaterialize, got %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("expected extraction to be skipped, calls=%+v", exec.calls)
	}
}

func TestMaterializeExtractFailureKeepsArchive(t *testing.T) {
	dir := t.TempDir()
	exec := &stubExecutor{failOn: "unzip", onRun: fakeTools("a.txt")}
	aria, _ := NewAria2("aria2c", 4, WithExecutor(exec))
	m := NewMaterializer(aria, NewUnzip("unzip", WithExecutor(exec)), nil)

	archivePath := filepath.Join(dir, "a.zip")
	_, err := m.Materialize(context.Background(), Request{URL: "u", ArchivePath: archivePath, Member: "a.txt"})
	if !errors.Is(err, services.ErrMaterialize) {
		t.Fatalf("expected ErrMaterialize, got %v", err)
	}
	if _, err := os.Stat(archivePath); err != nil {
		t.Fatalf("expected archive to remain after failed extraction: %v", err)
	}
}

func TestMaterializeMissingMemberAfterExtract(t *testing.T) {
	dir := t.TempDir()
	exec := &stubExecutor{onRun: fakeTools("other.txt")}
	aria, _ := NewAria2("aria2c", 4, WithExecutor(exec))
	m := NewMaterializer(aria, NewUnzip("unzip", WithExecutor(exec)), nil)

	_, err := m.Materialize(context.Background(), Request{URL: "u", ArchivePath: filepath.Join(dir, "a.zip"), Member: "a.txt"})
	if !errors.Is(err, services.ErrMaterialize) {
		t.Fatalf("expected ErrMaterialize, got %v", err)
	}
}

func TestMaterializeRejectsUnrecognizedArchive(t *testing.T) {
	exec := &stubExecutor{}
	aria, _ := NewAria2("aria2c", 4, WithExecutor(exec))
	m := NewMaterializer(aria, NewUnzip("unzip", WithExecutor(exec)), nil)

	_, err := m.Materialize(context.Background(), Request{URL: "u", ArchivePath: filepath.Join(t.TempDir(), "a.tar.gz"), Member: "a.txt"})
	if !errors.Is(err, services.ErrMaterialize) {
		t.Fatalf("expected ErrMaterialize, got %v", err)
	}
	if len(exec.calls) != 0 {
		t.Fatalf("expected no tool calls, got %+v", exec.calls)
	}
}

func TestCommandExecutorReportsOutputTail(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	var lines []string
	err := commandExecutor{}.Run(context.Background(), "sh", []string{"-c", "echo downloading; echo broken >&2; exit 3"}, func(line string) {
		lines = append(lines, line)
	})
	if err == nil {
		t.Fatal("expected non-zero exit to fail")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected output tail in error, got %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected both output lines forwarded, got %v", lines)
	}
}

func TestCommandExecutorHandlesOverlongLines(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	script := "head -c 102400 /dev/zero | tr '\\000' a; echo; " +
		"head -c 307200 /dev/zero | tr '\\000' b; echo; " +
		"echo done"

	var counts = map[byte]int{}
	var last string
	done := make(chan error, 1)
	go func() {
		done <- commandExecutor{}.Run(context.Background(), "sh", []string{"-c", script}, func(line string) {
			if line != "" {
				counts[line[0]] += len(line)
			}
			last = line
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("executor did not return for long output lines")
	}
	if counts['a'] != 102400 || counts['b'] != 307200 {
		t.Fatalf("unexpected forwarded byte counts a=%d b=%d", counts['a'], counts['b'])
	}
	if last != "done" {
		t.Fatalf("expected trailing line to be forwarded, got %q", last)
	}
}

func TestCommandExecutorSplitsCarriageReturnProgress(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	var lines []string
	err := commandExecutor{}.Run(context.Background(), "sh", []string{"-c", `printf '10%%\r55%%\r100%%\r\n'`}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"10%", "55%", "100%"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}
