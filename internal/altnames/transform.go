package altnames

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"altnames/internal/fileutil"
	"altnames/internal/logging"
	"altnames/internal/services"
)

const (
	maxLineBytes   = 1 << 20
	cancelInterval = 100_000
)

// Stats counts rows through each transform step.
type Stats struct {
	RowsRead        int
	AfterProvenance int
	AfterLanguage   int
	AfterScript     int
	RowsWritten     int
}

// Filter streams the raw table from r and returns ranked candidates that pass
// every predicate. Parse failures name the 1-based line number.
func Filter(ctx context.Context, r io.Reader, stats *Stats) ([]Candidate, error) {
	if stats == nil {
		stats = &Stats{}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var candidates []Candidate
	line := 0
	for scanner.Scan() {
		line++
		if line%cancelInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		text := scanner.Text()
		if text == "" {
			continue
		}
		rec, err := ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		stats.RowsRead++
		if !NotColloquialOrHistoric(rec) {
			continue
		}
		stats.AfterProvenance++
		if !AcceptedLanguage(rec) {
			continue
		}
		stats.AfterLanguage++
		if !PassesScriptGate(rec) {
			continue
		}
		stats.AfterScript++
		candidates = append(candidates, NewCandidate(rec))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read raw table after line %d: %w", line, err)
	}
	return candidates, nil
}

// Reduce runs the pure steps of the transform over r: filter, rank, sort,
// deduplicate and convert.
func Reduce(ctx context.Context, r io.Reader, conv Converter) ([]CanonicalName, Stats, error) {
	var stats Stats
	candidates, err := Filter(ctx, r, &stats)
	if err != nil {
		return nil, stats, err
	}
	chosen := SortAndDedupe(candidates)
	rows, err := Canonicalize(conv, chosen)
	if err != nil {
		return nil, stats, err
	}
	stats.RowsWritten = len(rows)
	return rows, stats, nil
}

// Transformer turns the extracted raw table into the canonical parquet file.
type Transformer struct {
	converter   Converter
	compression string
	logger      *slog.Logger
}

// NewTransformer builds a Transformer.
func NewTransformer(conv Converter, compression string, logger *slog.Logger) *Transformer {
	return &Transformer{
		converter:   conv,
		compression: compression,
		logger:      logging.NewComponentLogger(logger, "transform"),
	}
}

// Run reads rawPath, writes outputPath and returns the row counts. All
// failures are tagged services.ErrTransform; outputPath is only replaced
// when every step succeeded.
func (t *Transformer) Run(ctx context.Context, rawPath, outputPath string) (Stats, error) {
	logger := logging.WithContext(ctx, t.logger)

	file, err := os.Open(rawPath)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrTransform, "transform", "open raw table", rawPath, err)
	}
	defer file.Close()

	rows, stats, err := Reduce(ctx, file, t.converter)
	if err != nil {
		return stats, services.Wrap(services.ErrTransform, "transform", "reduce", rawPath, err)
	}
	if err := WriteParquet(outputPath, rows, t.compression); err != nil {
		return stats, services.Wrap(services.ErrTransform, "transform", "write parquet", outputPath, err)
	}

	logger.Info("canonical names written",
		logging.String(logging.FieldEventType, "transform_complete"),
		logging.Int("rows_read", stats.RowsRead),
		logging.Int("rows_after_provenance", stats.AfterProvenance),
		logging.Int("rows_after_language", stats.AfterLanguage),
		logging.Int("rows_kept", stats.AfterScript),
		logging.Int("rows_written", stats.RowsWritten),
		logging.Int64("output_bytes", fileutil.Size(outputPath)),
		logging.String("output_path", outputPath),
	)
	return stats, nil
}
