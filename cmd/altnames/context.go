package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"altnames/internal/altnames"
	"altnames/internal/archive"
	"altnames/internal/config"
	"altnames/internal/etag"
	"altnames/internal/history"
	"altnames/internal/logging"
	"altnames/internal/refresh"
	"altnames/internal/remote"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// newLogger builds the run logger and prunes log files past retention.
func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, time.Now(), cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "altnames*.log", Exclude: []string{cfg.LogPath()}},
	)
	return logger, nil
}

// buildRefresher wires the production collaborators. The returned close
// function releases the run ledger.
func buildRefresher(cfg *config.Config, logger *slog.Logger) (*refresh.Refresher, func(), error) {
	downloader, err := archive.NewAria2(cfg.Download.Aria2Binary, cfg.Download.Connections, archive.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	extractor := archive.HostExtractor(cfg.Extract.UnzipBinary, cfg.Extract.SevenZipBinary, archive.WithLogger(logger))
	converter, err := altnames.NewOpenCCConverter(cfg.Transform.Conversion)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {}
	var ledger refresh.Ledger
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.String("history_path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete history.db to start a fresh ledger"),
			logging.String(logging.FieldImpact, "this run is not recorded"),
		)
	} else {
		ledger = store
		closeFn = func() { _ = store.Close() }
	}

	refresher, err := refresh.New(refresh.Config{
		Logger:       logger,
		Tokens:       etag.NewFileStore(cfg.TokenPath()),
		Checker:      remote.NewChecker(cfg.HeadTimeout(), remote.WithLogger(logger)),
		Materializer: archive.NewMaterializer(downloader, extractor, logger),
		Transformer:  altnames.NewTransformer(converter, cfg.Transform.Compression, logger),
		SourceURL:    cfg.Source.URL,
		ArchivePath:  cfg.ArchivePath(),
		MemberName:   cfg.Source.MemberName,
		OutputPath:   cfg.OutputPath(),
		Ledger:       ledger,
		LockPath:     cfg.LockPath(),
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return refresher, closeFn, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
