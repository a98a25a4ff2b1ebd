package handhistory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteConverted writes the successful outcomes' rewritten text to path,
// separated by blank lines. When no outcome succeeded nothing is written and
// the ledger in the skipped file is the only record of the batch.
func WriteConverted(outcomes []Outcome, path string) error {
	var converted []string
	for _, outcome := range outcomes {
		if outcome.Success && outcome.ConvertedText != "" {
			converted = append(converted, outcome.ConvertedText)
		}
	}
	if len(converted) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	content := strings.Join(converted, "\n\n\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write converted hands: %w", err)
	}
	return nil
}

// WriteSkipped writes the failed outcomes to path as a skip ledger: a reason
// line per hand followed by its unmodified original text.
func WriteSkipped(outcomes []Outcome, path string) error {
	var lines []string
	for _, outcome := range outcomes {
		if outcome.Success {
			continue
		}
		lines = append(lines, fmt.Sprintf("# Hand %s: %s", outcome.HandID, outcome.Reason))
		lines = append(lines, outcome.OriginalText)
		lines = append(lines, "")
	}
	if len(lines) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write skipped hands: %w", err)
	}
	return nil
}
