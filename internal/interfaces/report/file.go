package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"batchsend/internal/domain"
)

// FileWriter stores each summary as an indented JSON document under Dir.
type FileWriter struct {
	Dir string
}

func (w FileWriter) WriteSummary(summary domain.BatchSummary) (string, error) {
	if summary.Timestamp == "" {
		return "", fmt.Errorf("summary has no timestamp")
	}
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	path := filepath.Join(dir, domain.ResultsFileName(summary.Timestamp))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
