// Package refresh sequences one incremental refresh of the canonical Chinese
// names: read the stored entity tag, ask the server whether the archive
// changed, download and extract it, transform it, and only then persist the
// new tag.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"altnames/internal/altnames"
	"altnames/internal/archive"
	"altnames/internal/fileutil"
	"altnames/internal/history"
	"altnames/internal/logging"
	"altnames/internal/remote"
	"altnames/internal/services"
)

// Stage names used in logs and error messages.
const (
	StageLock        = "lock"
	StageToken       = "token"
	StageFetch       = "fetch"
	StageMaterialize = "materialize"
	StageTransform   = "transform"
	StagePersist     = "persist"
)

// Options tunes one run.
type Options struct {
	// Force ignores the stored token and local output, so the archive is
	// always downloaded and transformed.
	Force bool
}

// Outcome summarizes a finished run.
type Outcome struct {
	RunID      string
	State      history.Outcome
	Kind       services.Kind
	Decision   remote.Decision
	Stats      altnames.Stats
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Refresher runs the refresh state machine.
type Refresher struct {
	cfg    Config
	logger *slog.Logger
}

// New validates cfg and builds a Refresher.
func New(cfg Config) (*Refresher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Refresher{cfg: cfg, logger: logging.NewComponentLogger(cfg.Logger, "refresh")}, nil
}

// Run performs one refresh attempt. The returned error is non-nil exactly
// when the outcome state is history.OutcomeError.
func (r *Refresher) Run(ctx context.Context, opts Options) (Outcome, error) {
	out := Outcome{
		RunID:     r.cfg.NewRunID(),
		StartedAt: r.cfg.Clock.Now(),
	}
	ctx = services.WithRunID(ctx, out.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("refresh started",
		logging.String(logging.FieldEventType, "refresh_started"),
		logging.String("url", r.cfg.SourceURL),
		logging.Bool("forced", opts.Force),
	)

	err := r.run(ctx, opts, &out)
	out.FinishedAt = r.cfg.Clock.Now()
	out.Err = err
	switch {
	case err != nil:
		out.State = history.OutcomeError
		out.Kind = services.Classify(err)
	case out.State == "":
		out.State = history.OutcomeSuccess
	}

	r.record(ctx, opts, out)
	r.logOutcome(logger, out)
	return out, err
}

func (r *Refresher) run(ctx context.Context, opts Options, out *Outcome) error {
	if r.cfg.LockPath != "" {
		lock := flock.New(r.cfg.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return services.Wrap(services.ErrLocked, StageLock, "acquire", r.cfg.LockPath, err)
		}
		if !ok {
			return services.Wrap(services.ErrLocked, StageLock, "acquire", "another refresh holds "+r.cfg.LockPath, nil)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to release refresh lock", "lock_release_failed",
					logging.String("lock_path", r.cfg.LockPath),
					logging.Error(err),
					logging.String(logging.FieldImpact, "lock is released when the process exits"),
				)
			}
		}()
	}

	token, _, err := r.cfg.Tokens.Read()
	if err != nil {
		return err
	}
	outputPresent, err := fileutil.Exists(r.cfg.OutputPath)
	if err != nil {
		return services.Wrap(services.ErrFetch, StageFetch, "check local output", r.cfg.OutputPath, err)
	}
	req := remote.Request{URL: r.cfg.SourceURL, Token: token, OutputPresent: outputPresent}
	if opts.Force {
		req.Token = ""
		req.OutputPresent = false
	}

	stageCtx := services.WithStage(ctx, StageFetch)
	decision, err := r.cfg.Checker.Check(stageCtx, req)
	out.Decision = decision
	if err != nil {
		return err
	}
	if decision.Action == remote.ActionSkip {
		out.State = history.OutcomeSkipped
		return nil
	}

	stageCtx = services.WithStage(ctx, StageMaterialize)
	stageStart := r.cfg.Clock.Now()
	result, err := r.cfg.Materializer.Materialize(stageCtx, archive.Request{
		URL:         r.cfg.SourceURL,
		ArchivePath: r.cfg.ArchivePath,
		Member:      r.cfg.MemberName,
	})
	if err != nil {
		return err
	}
	r.logStage(stageCtx, stageStart)

	stageCtx = services.WithStage(ctx, StageTransform)
	stageStart = r.cfg.Clock.Now()
	stats, err := r.cfg.Transformer.Run(stageCtx, result.RawPath, r.cfg.OutputPath)
	out.Stats = stats
	if err != nil {
		return err
	}
	r.logStage(stageCtx, stageStart)

	// The output is committed; only now may the token move forward.
	stageCtx = services.WithStage(ctx, StagePersist)
	if decision.Token != "" && decision.Token != token {
		if err := r.cfg.Tokens.Write(decision.Token); err != nil {
			return err
		}
	}
	if err := fileutil.RemoveIfExists(result.RawPath); err != nil {
		logging.WarnWithContext(logging.WithContext(stageCtx, r.logger), "raw table removal failed", "raw_cleanup_failed",
			logging.String("raw_path", result.RawPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file manually; it is rewritten on the next download"),
			logging.String(logging.FieldImpact, "extra disk usage in "+filepath.Dir(result.RawPath)),
		)
	}
	return nil
}

func (r *Refresher) logStage(ctx context.Context, started time.Time) {
	logging.WithContext(ctx, r.logger).Debug("stage finished",
		logging.Duration("stage_duration", r.cfg.Clock.Since(started)),
	)
}

func (r *Refresher) record(ctx context.Context, opts Options, out Outcome) {
	if r.cfg.Ledger == nil {
		return
	}
	run := history.Run{
		RunID:       out.RunID,
		StartedAt:   out.StartedAt,
		FinishedAt:  out.FinishedAt,
		Outcome:     out.State,
		ErrorKind:   string(out.Kind),
		HTTPStatus:  out.Decision.Status,
		ETag:        out.Decision.Token,
		RowsRead:    out.Stats.RowsRead,
		RowsWritten: out.Stats.RowsWritten,
		Forced:      opts.Force,

		RowsAfterProvenance: out.Stats.AfterProvenance,
		RowsAfterLanguage:   out.Stats.AfterLanguage,
		RowsAfterScript:     out.Stats.AfterScript,
	}
	if out.Err != nil {
		run.Message = out.Err.Error()
	}
	// A cancelled run still gets its ledger row.
	recordCtx := context.WithoutCancel(ctx)
	if err := r.cfg.Ledger.Record(recordCtx, run); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "run history not recorded", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on history.db or delete it to start a fresh ledger"),
			logging.String(logging.FieldImpact, "this run is missing from altnames history"),
		)
	}
}

func (r *Refresher) logOutcome(logger *slog.Logger, out Outcome) {
	duration := out.FinishedAt.Sub(out.StartedAt)
	switch out.State {
	case history.OutcomeSkipped:
		logger.Info("refresh skipped; output is current",
			logging.String(logging.FieldEventType, "refresh_skipped"),
			logging.Int("http_status", out.Decision.Status),
			logging.String("etag", out.Decision.Token),
			logging.Duration("run_duration", duration),
		)
	case history.OutcomeSuccess:
		logger.Info("refresh complete",
			logging.String(logging.FieldEventType, "refresh_complete"),
			logging.Int("http_status", out.Decision.Status),
			logging.String("etag", out.Decision.Token),
			logging.Int("rows_written", out.Stats.RowsWritten),
			logging.Duration("run_duration", duration),
		)
	default:
		logging.ErrorWithContext(logger, "refresh failed", "refresh_failed",
			logging.String(logging.FieldErrorKind, string(out.Kind)),
			logging.Error(out.Err),
			logging.String(logging.FieldErrorHint, errorHint(out.Err)),
			logging.Duration("run_duration", duration),
		)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, services.ErrLocked):
		return "another refresh is running; wait for it or remove a stale lock file"
	case errors.Is(err, services.ErrTokenStore):
		return "check permissions on the token file in output_dir"
	case errors.Is(err, services.ErrFetch):
		return "check network access to the source url"
	case errors.Is(err, services.ErrMaterialize):
		return "verify aria2c and the extractor are installed (altnames status)"
	case errors.Is(err, services.ErrTransform):
		return "the raw table may be truncated; rerun to download it again"
	case errors.Is(err, context.Canceled):
		return "the run was interrupted"
	default:
		return "check logs for details"
	}
}
