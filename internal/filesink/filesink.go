// Package filesink writes downloaded upstream artifacts to local disk.
package filesink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Save streams r to path, creating parent directories as needed, and
// returns the absolute path written. An existing file is overwritten.
func Save(r io.Reader, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %q: %w", abs, err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", abs, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(abs)
		return "", fmt.Errorf("write %q: %w", abs, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %q: %w", abs, err)
	}
	return abs, nil
}
