//go:build !unix

package preflight

import "os"

// accessReadWrite checks writability by creating and removing a temp file.
func accessReadWrite(path string) error {
	f, err := os.CreateTemp(path, ".altnames-access-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}
