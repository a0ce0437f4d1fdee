package testsupport

import (
	"bytes"
	"strings"
	"testing"

	"altnames/internal/fileutil"
)

// RawRow renders one line of the alternate names table. Trailing columns
// (preferred, short, colloquial, historic, from, to) default to empty.
func RawRow(id, geonameID, language, name string, flags ...string) string {
	cols := make([]string, 10)
	cols[0], cols[1], cols[2], cols[3] = id, geonameID, language, name
	copy(cols[4:], flags)
	return strings.Join(cols, "\t")
}

// WriteRawTable writes rows as a newline terminated raw table at path.
func WriteRawTable(t testing.TB, path string, rows ...string) {
	t.Helper()

	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(strings.TrimSuffix(row, "\n"))
		buf.WriteByte('\n')
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write raw table %s: %v", path, err)
	}
}

// WriteOutputStub places size bytes of filler at the output path so status
// has a real file to describe. It is not valid Parquet.
func WriteOutputStub(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := fileutil.WriteFileAtomic(path, bytes.Repeat([]byte{'P'}, int(size)), 0o644); err != nil {
		t.Fatalf("write output stub %s: %v", path, err)
	}
}
