// Package archive downloads the alternate-names archive and extracts the raw
// table from it, using aria2c and the platform's unzip tool.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"altnames/internal/fileutil"
	"altnames/internal/logging"
	"altnames/internal/services"
)

// Request names the archive to fetch and the member to pull from it.
type Request struct {
	URL         string
	ArchivePath string
	Member      string
}

// Result describes a successful materialization.
type Result struct {
	RawPath      string
	ArchiveBytes int64
}

// Materializer downloads an archive and extracts one member from it.
type Materializer struct {
	downloader Downloader
	extractor  Extractor
	logger     *slog.Logger
}

// NewMaterializer wires a downloader and an extractor.
func NewMaterializer(downloader Downloader, extractor Extractor, logger *slog.Logger) *Materializer {
	return &Materializer{
		downloader: downloader,
		extractor:  extractor,
		logger:     logging.NewComponentLogger(logger, "materialize"),
	}
}

// Materialize downloads req.URL to req.ArchivePath, extracts req.Member next
// to it and deletes the archive. Only zip archives are supported; any other
// extension is rejected before the download starts.
func (m *Materializer) Materialize(ctx context.Context, req Request) (Result, error) {
	logger := logging.WithContext(ctx, m.logger)
	if !strings.EqualFold(filepath.Ext(req.ArchivePath), ".zip") {
		logging.WarnWithContext(logger, "unrecognized archive format", "archive_unrecognized",
			logging.String("archive_path", req.ArchivePath),
			logging.String(logging.FieldErrorHint, "source.archive_name must end in .zip"),
			logging.String(logging.FieldImpact, "no raw table to transform; refresh aborted"),
		)
		return Result{}, services.Wrap(services.ErrMaterialize, "materialize", "inspect archive",
			"unrecognized archive format "+filepath.Base(req.ArchivePath), nil)
	}
	if strings.TrimSpace(req.Member) == "" {
		return Result{}, services.Wrap(services.ErrMaterialize, "materialize", "inspect archive", "archive member required", nil)
	}

	if err := m.downloader.Download(ctx, req.URL, req.ArchivePath); err != nil {
		return Result{}, services.Wrap(services.ErrMaterialize, "materialize", "download", req.URL, err)
	}
	archiveBytes := fileutil.Size(req.ArchivePath)
	logger.Info("archive downloaded",
		logging.String(logging.FieldEventType, "archive_downloaded"),
		logging.Int64("archive_bytes", archiveBytes),
		logging.String("archive_path", req.ArchivePath),
	)

	destDir := filepath.Dir(req.ArchivePath)
	if err := m.extractor.Extract(ctx, req.ArchivePath, req.Member, destDir); err != nil {
		return Result{}, services.Wrap(services.ErrMaterialize, "materialize", "extract", req.Member, err)
	}
	rawPath := filepath.Join(destDir, req.Member)
	present, err := fileutil.Exists(rawPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrMaterialize, "materialize", "extract", req.Member, err)
	}
	if !present {
		return Result{}, services.Wrap(services.ErrMaterialize, "materialize", "extract",
			fmt.Sprintf("%s missing after %s", req.Member, m.extractor.Name()), nil)
	}

	if err := fileutil.RemoveIfExists(req.ArchivePath); err != nil {
		return Result{}, services.Wrap(services.ErrMaterialize, "materialize", "remove archive", req.ArchivePath, err)
	}
	logger.Info("raw table extracted",
		logging.String(logging.FieldEventType, "archive_extracted"),
		logging.String("raw_path", rawPath),
		logging.String("extractor", m.extractor.Name()),
	)
	return Result{RawPath: rawPath, ArchiveBytes: archiveBytes}, nil
}
