// Package files provides spreadsheet discovery and the post-run archiver
// for the reporting pipeline.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindExcelFiles returns the paths of all Excel workbooks in dir, sorted by
// file name for a deterministic merge order. Office lock files ("~$" prefix)
// are skipped.
func FindExcelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}

	sort.Strings(paths)
	return paths, nil
}
