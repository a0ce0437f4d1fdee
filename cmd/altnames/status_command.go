package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"altnames/internal/config"
	"altnames/internal/deps"
	"altnames/internal/etag"
	"altnames/internal/history"
	"altnames/internal/logging"
	"altnames/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkSource bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show local artifacts, dependencies and the last refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			w := newStatusWriter(cmd.OutOrStdout())

			w.section("System Status")
			if ctx.configPath != "" {
				w.line("Config", statusInfo, ctx.configPath)
			}
			for _, result := range preflight.RunAll(cfg) {
				w.lines([]string{resultLine(result, statusError, w.colorize)})
			}
			if checkSource {
				result := preflight.CheckSource(cmd.Context(), cfg.Source.URL, cfg.HeadTimeout())
				w.lines([]string{resultLine(result, statusWarn, w.colorize)})
			}

			w.section("Dependencies")
			w.lines(dependencyLines(preflight.CheckSystemDeps(cfg), w.colorize))

			w.section("Artifacts")
			w.lines(artifactLines(cfg, w.colorize))

			w.section("Last Refresh")
			w.lines(lastRunLines(cmd.Context(), cfg, w.colorize))
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkSource, "check-source", false, "Also send a HEAD request to the source url")
	return cmd
}

func resultLine(result preflight.Result, failKind statusKind, colorize bool) string {
	if result.Passed {
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(result.Name, failKind, result.Detail, colorize)
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Path != "" {
				message = fmt.Sprintf("Ready (%s)", dep.Path)
			} else if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func artifactLines(cfg *config.Config, colorize bool) []string {
	lines := make([]string, 0, 2)

	info, err := os.Stat(cfg.OutputPath())
	switch {
	case err == nil && info.Mode().IsRegular():
		detail := fmt.Sprintf("%s (%s, %s)", cfg.OutputPath(), logging.FormatBytes(info.Size()), info.ModTime().Local().Format("2006-01-02 15:04"))
		lines = append(lines, renderStatusLine("Output", statusOK, detail, colorize))
	case err == nil || os.IsNotExist(err):
		lines = append(lines, renderStatusLine("Output", statusWarn, "not built yet", colorize))
	default:
		lines = append(lines, renderStatusLine("Output", statusError, err.Error(), colorize))
	}

	token, ok, err := etag.NewFileStore(cfg.TokenPath()).Read()
	switch {
	case err != nil:
		lines = append(lines, renderStatusLine("Entity tag", statusError, err.Error(), colorize))
	case !ok:
		lines = append(lines, renderStatusLine("Entity tag", statusInfo, "none stored", colorize))
	default:
		lines = append(lines, renderStatusLine("Entity tag", statusOK, token, colorize))
	}
	return lines
}

func lastRunLines(ctx context.Context, cfg *config.Config, colorize bool) []string {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return []string{renderStatusLine("History", statusError, err.Error(), colorize)}
	}
	defer store.Close()

	run, ok, err := store.Latest(ctx)
	if err != nil {
		return []string{renderStatusLine("History", statusError, err.Error(), colorize)}
	}
	if !ok {
		return []string{renderStatusLine("History", statusInfo, "no refresh runs recorded", colorize)}
	}

	kind := statusOK
	detail := fmt.Sprintf("%s at %s", run.Outcome, run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.Outcome == history.OutcomeError {
		kind = statusError
		detail = fmt.Sprintf("%s (%s)", detail, run.ErrorKind)
	}
	lines := []string{
		renderStatusLine("Outcome", kind, detail, colorize),
		renderStatusLine("Duration", statusInfo, run.Duration().Round(time.Second).String(), colorize),
	}
	if run.Outcome == history.OutcomeSuccess {
		lines = append(lines, renderStatusLine("Rows written", statusInfo, fmt.Sprintf("%d of %d read", run.RowsWritten, run.RowsRead), colorize))
		lines = append(lines, renderStatusLine("Filter stages", statusInfo,
			fmt.Sprintf("provenance %d, language %d, script %d", run.RowsAfterProvenance, run.RowsAfterLanguage, run.RowsAfterScript), colorize))
	}
	if run.Message != "" {
		lines = append(lines, renderStatusLine("Message", statusInfo, truncate(run.Message, 100), colorize))
	}
	return lines
}
