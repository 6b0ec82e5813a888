// Package dataset enumerates input scans, manages the output directory and
// keeps track of which source image produced which form.
package dataset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"form-snippets/internal/image"
)

// Collect returns every supported image under dir, recursively, in lexical
// order. Directories, .DS_Store and unsupported files are skipped.
func Collect(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == ".DS_Store" || !image.IsSupportedFormat(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ResetOutput empties dir, creating it if needed, and reports how many
// entries were removed.
func ResetOutput(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("read output dir: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return 0, fmt.Errorf("clear output dir: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	return len(entries), nil
}
