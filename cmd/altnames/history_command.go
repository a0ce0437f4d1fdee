package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"altnames/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent refresh runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, historyJSON(runs))
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No refresh runs recorded")
				return nil
			}
			fmt.Fprint(out, renderTable(historyColumns, historyRows(runs)))
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

var historyColumns = []tableColumn{
	{title: "Started"},
	{title: "Outcome"},
	{title: "Duration", right: true},
	{title: "HTTP", right: true},
	{title: "Rows", right: true},
	{title: "Forced"},
	{title: "Detail"},
}

func historyRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := "-"
		if run.HTTPStatus != 0 {
			status = strconv.Itoa(run.HTTPStatus)
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			string(run.Outcome),
			run.Duration().Round(time.Second).String(),
			status,
			strconv.Itoa(run.RowsWritten),
			yesNo(run.Forced),
			historyDetail(run),
		})
	}
	return rows
}

func historyDetail(run history.Run) string {
	switch run.Outcome {
	case history.OutcomeError:
		if run.ErrorKind != "" {
			return truncate(run.ErrorKind+": "+run.Message, 60)
		}
		return truncate(run.Message, 60)
	default:
		return run.ETag
	}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

type historyRunJSON struct {
	RunID               string    `json:"run_id"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
	Outcome             string    `json:"outcome"`
	ErrorKind           string    `json:"error_kind,omitempty"`
	Message             string    `json:"message,omitempty"`
	HTTPStatus          int       `json:"http_status,omitempty"`
	ETag                string    `json:"etag,omitempty"`
	RowsRead            int       `json:"rows_read"`
	RowsAfterProvenance int       `json:"rows_after_provenance"`
	RowsAfterLanguage   int       `json:"rows_after_language"`
	RowsAfterScript     int       `json:"rows_after_script"`
	RowsWritten         int       `json:"rows_written"`
	Forced              bool      `json:"forced"`
}

func historyJSON(runs []history.Run) []historyRunJSON {
	items := make([]historyRunJSON, 0, len(runs))
	for _, run := range runs {
		items = append(items, historyRunJSON{
			RunID:               run.RunID,
			StartedAt:           run.StartedAt,
			FinishedAt:          run.FinishedAt,
			Outcome:             string(run.Outcome),
			ErrorKind:           run.ErrorKind,
			Message:             run.Message,
			HTTPStatus:          run.HTTPStatus,
			ETag:                run.ETag,
			RowsRead:            run.RowsRead,
			RowsAfterProvenance: run.RowsAfterProvenance,
			RowsAfterLanguage:   run.RowsAfterLanguage,
			RowsAfterScript:     run.RowsAfterScript,
			RowsWritten:         run.RowsWritten,
			Forced:              run.Forced,
		})
	}
	return items
}
