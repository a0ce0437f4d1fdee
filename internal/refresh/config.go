package refresh

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"altnames/internal/altnames"
	"altnames/internal/archive"
	"altnames/internal/etag"
	"altnames/internal/history"
	"altnames/internal/remote"
)

// Checker decides whether the remote archive changed.
type Checker interface {
	Check(ctx context.Context, req remote.Request) (remote.Decision, error)
}

// Materializer downloads the archive and extracts the raw table.
type Materializer interface {
	Materialize(ctx context.Context, req archive.Request) (archive.Result, error)
}

// Transformer writes the canonical output from the raw table.
type Transformer interface {
	Run(ctx context.Context, rawPath, outputPath string) (altnames.Stats, error)
}

// Ledger records finished runs.
type Ledger interface {
	Record(ctx context.Context, run history.Run) error
}

type Config struct {
	Logger       *slog.Logger
	Clock        clockwork.Clock
	Tokens       etag.Store
	Checker      Checker
	Materializer Materializer
	Transformer  Transformer

	SourceURL   string
	ArchivePath string
	MemberName  string
	OutputPath  string

	// Optional.
	Ledger   Ledger
	LockPath string
	NewRunID func() string
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Tokens == nil {
		return errors.New("token store is required")
	}
	if c.Checker == nil {
		return errors.New("checker is required")
	}
	if c.Materializer == nil {
		return errors.New("materializer is required")
	}
	if c.Transformer == nil {
		return errors.New("transformer is required")
	}
	if strings.TrimSpace(c.SourceURL) == "" {
		return errors.New("source url is required")
	}
	if strings.TrimSpace(c.ArchivePath) == "" {
		return errors.New("archive path is required")
	}
	if strings.TrimSpace(c.MemberName) == "" {
		return errors.New("member name is required")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errors.New("output path is required")
	}
	if c.NewRunID == nil {
		c.NewRunID = uuid.NewString
	}
	return nil
}
