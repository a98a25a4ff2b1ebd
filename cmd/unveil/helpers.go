package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"unveil/internal/screenshot"
)

// listScreenshots returns the capture files under dir in capture order.
// Files that do not match the capture naming grammar are skipped here and
// never reach the recognition pipeline.
func listScreenshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read screenshots directory %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !screenshot.IsValid(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Slice(paths, func(i, j int) bool {
		a, _ := screenshot.Parse(paths[i])
		b, _ := screenshot.Parse(paths[j])
		return a.SortKey() < b.SortKey()
	})
	return paths, nil
}

// listHandFiles returns the hand-history text files under dir, sorted by
// name.
func listHandFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read hands directory %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// latestDump resolves the most recent recognition dump under dir. Dump file
// names embed their write timestamp, so lexical order is chronological.
func latestDump(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "recognition_*.toml"))
	if err != nil {
		return "", fmt.Errorf("scan dump directory %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no recognition dumps found in %s", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
