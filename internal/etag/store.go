// Package etag persists the HTTP entity tag of the last archive that was fully
// transformed, so the next run can ask the server whether anything changed.
package etag

import (
	"errors"
	"os"
	"strings"

	"altnames/internal/fileutil"
	"altnames/internal/services"
)

// Store abstracts persistence for the cache-validation token.
type Store interface {
	// Read returns the stored token. ok is false when no token has been
	// written yet.
	Read() (token string, ok bool, err error)
	// Write replaces the stored token.
	Write(token string) error
}

// FileStore keeps the token as a single text file.
type FileStore struct {
	path string
}

// NewFileStore builds a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Read loads the token from disk. A missing or blank file resolves to no
// token; any other I/O failure is returned.
func (s *FileStore) Read() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, services.Wrap(services.ErrTokenStore, "token", "read", s.path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Write atomically replaces the token file.
func (s *FileStore) Write(token string) error {
	if err := fileutil.WriteFileAtomic(s.path, []byte(token), 0o644); err != nil {
		return services.Wrap(services.ErrTokenStore, "token", "write", s.path, err)
	}
	return nil
}
