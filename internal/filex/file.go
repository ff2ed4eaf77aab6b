// Package filex contains filesystem helpers for the CLI: preparing the local
// database directory and reading solution sources from disk.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxSourceSize bounds the size of a solution file loaded from disk.
const MaxSourceSize = 256 << 10

var ErrSourceTooLarge = errors.New("source file too large")

// EnsureParentDir creates the directory that will hold path. Paths without a
// directory component (and SQLite's ":memory:") need nothing.
func EnsureParentDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadSource reads a solution file, refusing anything above MaxSourceSize.
func ReadSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, MaxSourceSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(b) > MaxSourceSize {
		return "", fmt.Errorf("%s: %w", path, ErrSourceTooLarge)
	}
	return string(b), nil
}
