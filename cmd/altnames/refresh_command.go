package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"altnames/internal/config"
	"altnames/internal/deps"
	"altnames/internal/history"
	"altnames/internal/logging"
	"altnames/internal/preflight"
	"altnames/internal/refresh"
	"altnames/internal/services"
)

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh attempt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd, ctx, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Ignore the stored entity tag and rebuild the output")
	return cmd
}

func runRefresh(cmd *cobra.Command, ctx *commandContext, force bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := ctx.newLogger(cfg)
	if err != nil {
		return err
	}
	if err := checkRefreshPreflight(cfg); err != nil {
		recordPreflightFailure(cmd.Context(), cfg, logger, err)
		return err
	}

	refresher, closeLedger, err := buildRefresher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLedger()

	outcome, err := refresher.Run(cmd.Context(), refresh.Options{Force: force})
	if err != nil {
		return fmt.Errorf("refresh failed (%s): %w", outcome.Kind, err)
	}

	out := cmd.OutOrStdout()
	switch outcome.State {
	case history.OutcomeSkipped:
		fmt.Fprintf(out, "Output is current (HTTP %d); nothing to do\n", outcome.Decision.Status)
	default:
		fmt.Fprintf(out, "Wrote %d names to %s\n", outcome.Stats.RowsWritten, cfg.OutputPath())
	}
	return nil
}

func checkRefreshPreflight(cfg *config.Config) error {
	if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, result := range failed {
			details = append(details, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
		return fmt.Errorf("%w: %s", services.ErrPreflight, strings.Join(details, "; "))
	}
	if missing := deps.MissingRequired(preflight.CheckSystemDeps(cfg)); len(missing) > 0 {
		return fmt.Errorf("%w: missing dependencies: %s (run `altnames status` for details)",
			services.ErrPreflight, deps.DescribeMissing(missing))
	}
	return nil
}

// recordPreflightFailure logs a refresh that never reached the pipeline and
// adds it to the run ledger, so history shows the attempt.
func recordPreflightFailure(ctx context.Context, cfg *config.Config, logger *slog.Logger, cause error) {
	now := time.Now().UTC()
	run := history.Run{
		RunID:      uuid.NewString(),
		StartedAt:  now,
		FinishedAt: now,
		Outcome:    history.OutcomeError,
		ErrorKind:  string(services.Classify(cause)),
		Message:    cause.Error(),
	}
	logger = logger.With(logging.String(logging.FieldRunID, run.RunID))
	logging.ErrorWithContext(logger, "refresh preflight failed", "refresh_preflight_failed",
		logging.String(logging.FieldErrorKind, run.ErrorKind),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "run altnames status to see which check failed"),
		logging.String(logging.FieldImpact, "refresh not attempted; stored artifacts unchanged"),
	)

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.String("history_path", cfg.HistoryPath()),
			logging.Error(err),
		)
		return
	}
	defer store.Close()
	if err := store.Record(ctx, run); err != nil {
		logging.WarnWithContext(logger, "run history not recorded", "history_record_failed", logging.Error(err))
	}
}
