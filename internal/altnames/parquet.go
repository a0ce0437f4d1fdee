package altnames

import (
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"altnames/internal/fileutil"
)

// Codec resolves a compression name to a parquet codec.
func Codec(name string) (compress.Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return &parquet.Snappy, nil
	case "zstd":
		return &parquet.Zstd, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "none", "uncompressed":
		return &parquet.Uncompressed, nil
	default:
		return nil, fmt.Errorf("unsupported parquet compression %q", name)
	}
}

// WriteRows encodes rows as a parquet file on w.
func WriteRows(w io.Writer, rows []CanonicalName, codec compress.Codec) error {
	writer := parquet.NewGenericWriter[CanonicalName](w, parquet.Compression(codec))
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// WriteParquet writes rows to path through a temp file, so a failed write
// leaves any previous output untouched.
func WriteParquet(path string, rows []CanonicalName, compression string) error {
	codec, err := Codec(compression)
	if err != nil {
		return err
	}
	return fileutil.WriteStreamAtomic(path, 0o644, func(w io.Writer) error {
		return WriteRows(w, rows, codec)
	})
}
