package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bstardust/photo-geotagger/internal/logger"
)

// ListImages returns the names of regular files in folder whose
// extension matches exts (case-insensitive). Only the first directory
// level is scanned. Names are returned sorted for stable reporting.
func ListImages(folder string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder: %w", err)
	}

	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = true
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if extSet[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// OrganizeByExtension moves every first-level file in folder into a
// subdirectory named after its upper-cased extension ("NO_EXT" for
// files without one). Returns the number of files moved; individual
// move failures are logged and skipped.
func OrganizeByExtension(folder string) (int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, fmt.Errorf("failed to list folder: %w", err)
	}

	moved := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(name), "."))
		if ext == "" {
			ext = "NO_EXT"
		}

		targetDir := filepath.Join(folder, ext)
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			logger.Error("Failed to create %s: %v", targetDir, err)
			continue
		}

		src := filepath.Join(folder, name)
		dst := filepath.Join(targetDir, name)
		if _, err := os.Stat(dst); err == nil {
			logger.Warn("Skipping %s: already exists in %s", name, ext)
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			logger.Error("Failed to move %s: %v", name, err)
			continue
		}
		moved++
	}
	return moved, nil
}
