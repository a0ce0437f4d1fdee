package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"altnames/internal/logging"
)

// Downloader fetches a remote archive to a local path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Aria2 downloads with aria2c using several connections to one server.
type Aria2 struct {
	binary      string
	connections int
	exec        Executor
	logger      *slog.Logger
}

// Option configures the aria2 downloader and the extractors.
type Option func(*options)

type options struct {
	exec   Executor
	logger *slog.Logger
}

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(o *options) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithLogger attaches a logger that receives tool output at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(component string, opts []Option) options {
	o := options{exec: commandExecutor{}}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.NewComponentLogger(o.logger, component)
	return o
}

// NewAria2 constructs an aria2c downloader.
func NewAria2(binary string, connections int, opts ...Option) (*Aria2, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("aria2 binary required")
	}
	if connections < 1 {
		connections = 1
	}
	o := applyOptions("aria2", opts)
	return &Aria2{binary: binary, connections: connections, exec: o.exec, logger: o.logger}, nil
}

// Args returns the aria2c argument list for downloading url to dest.
func (a *Aria2) Args(url, dest string) []string {
	return []string{
		fmt.Sprintf("--split=%d", a.connections),
		fmt.Sprintf("--max-connection-per-server=%d", a.connections),
		"--allow-overwrite=true",
		"--dir=" + filepath.Dir(dest),
		"--out=" + filepath.Base(dest),
		url,
	}
}

// Download runs aria2c and confirms the archive landed at dest.
func (a *Aria2) Download(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	logger := logging.WithContext(ctx, a.logger)
	logger.Debug("aria2 starting", logging.String("command", a.binary), logging.Any("args", a.Args(url, dest)))
	if err := a.exec.Run(ctx, a.binary, a.Args(url, dest), func(line string) {
		logger.Debug(line)
	}); err != nil {
		return fmt.Errorf("aria2 download: %w", err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		return fmt.Errorf("aria2 produced no archive at %s: %w", dest, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("aria2 produced an empty archive at %s", dest)
	}
	return nil
}
