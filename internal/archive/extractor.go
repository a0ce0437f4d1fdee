package archive

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"altnames/internal/logging"
)

// Extractor pulls one named member out of an archive into destDir,
// overwriting any existing file of the same name.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, archive, member, destDir string) error
}

// Unzip extracts with Info-ZIP unzip.
type Unzip struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// NewUnzip constructs an unzip extractor.
func NewUnzip(binary string, opts ...Option) *Unzip {
	o := applyOptions("unzip", opts)
	return &Unzip{binary: defaultBinary(binary, "unzip"), exec: o.exec, logger: o.logger}
}

func (u *Unzip) Name() string { return u.binary }

func (u *Unzip) Args(archive, member, destDir string) []string {
	return []string{"-o", archive, member, "-d", destDir}
}

func (u *Unzip) Extract(ctx context.Context, archive, member, destDir string) error {
	return run(ctx, u.exec, u.logger, u.binary, u.Args(archive, member, destDir))
}

// SevenZip extracts with 7-Zip.
type SevenZip struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// NewSevenZip constructs a 7-Zip extractor.
func NewSevenZip(binary string, opts ...Option) *SevenZip {
	o := applyOptions("7z", opts)
	return &SevenZip{binary: defaultBinary(binary, "7z"), exec: o.exec, logger: o.logger}
}

func (s *SevenZip) Name() string { return s.binary }

// Args flattens paths with "e" and overwrites without prompting.
func (s *SevenZip) Args(archive, member, destDir string) []string {
	return []string{"e", archive, member, "-o" + destDir, "-aoa", "-y"}
}

func (s *SevenZip) Extract(ctx context.Context, archive, member, destDir string) error {
	return run(ctx, s.exec, s.logger, s.binary, s.Args(archive, member, destDir))
}

// ExtractorFor picks the extractor for a host OS family: 7-Zip on Windows,
// unzip everywhere else.
func ExtractorFor(goos, unzipBinary, sevenZipBinary string, opts ...Option) Extractor {
	if goos == "windows" {
		return NewSevenZip(sevenZipBinary, opts...)
	}
	return NewUnzip(unzipBinary, opts...)
}

// HostExtractor is ExtractorFor the running platform.
func HostExtractor(unzipBinary, sevenZipBinary string, opts ...Option) Extractor {
	return ExtractorFor(runtime.GOOS, unzipBinary, sevenZipBinary, opts...)
}

// HostExtractorBinary names the extractor binary the running platform needs.
func HostExtractorBinary(unzipBinary, sevenZipBinary string) string {
	return HostExtractor(unzipBinary, sevenZipBinary).Name()
}

func run(ctx context.Context, exec Executor, logger *slog.Logger, binary string, args []string) error {
	logger = logging.WithContext(ctx, logger)
	logger.Debug("extract starting", logging.String("command", binary), logging.Any("args", args))
	if err := exec.Run(ctx, binary, args, func(line string) {
		logger.Debug(line)
	}); err != nil {
		return fmt.Errorf("extract with %s: %w", binary, err)
	}
	return nil
}

func defaultBinary(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
