package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"batchsend/internal/domain"
	"batchsend/internal/infrastructure/sheet"
	"batchsend/internal/interfaces/report"
)

type failingWriter struct{}

func (failingWriter) WriteSummary(summary domain.BatchSummary) (string, error) {
	return "", errors.New("disk full")
}

func TestRunnerEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "addresses.xlsx")
	rows := [][]string{
		{"0xAAA", "0x01"},
		{"0xBBB", "02"},
		{"0xCCC", "0x03"},
	}
	if err := sheet.WriteWorkbook(input, "Addresses", []string{"address", "privatekey"}, rows); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	submitter := &scriptedSubmitter{outcomes: map[string]domain.SubmissionResult{
		"0xBBB": domain.Failed("0xBBB", "insufficient funds"),
	}}
	sleeper := &sleepRecorder{}
	driver := NewDriver(submitter, nil, nil, DriverConfig{Sleep: sleeper.sleep})
	var console bytes.Buffer
	runner := NewRunner(
		CredentialLoaderFunc(sheet.Load),
		driver,
		report.FileWriter{Dir: dir},
		report.NewConsole(&console, false),
	)

	summary, location, err := runner.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(submitter.calls) != 3 || len(sleeper.delays) != 2 {
		t.Fatalf("expected 3 submissions and 2 delays, got %d and %d", len(submitter.calls), len(sleeper.delays))
	}
	if summary.Total != 3 || len(summary.Successful) != 2 || len(summary.Failed) != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	raw, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	var persisted domain.BatchSummary
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if persisted.Total != 3 || len(persisted.Successful) != 2 || len(persisted.Failed) != 1 {
		t.Fatalf("unexpected persisted summary %+v", persisted)
	}
	if filepath.Base(location) != domain.ResultsFileName(persisted.Timestamp) {
		t.Fatalf("file name %s does not match timestamp %s", location, persisted.Timestamp)
	}

	out := console.String()
	if !strings.Contains(out, "Successful Transactions:") || !strings.Contains(out, "Failed Transactions:") {
		t.Fatalf("expected both buckets in console output:\n%s", out)
	}
	if !strings.Contains(out, "- Address: 0xBBB, Error: insufficient funds") {
		t.Fatalf("expected failure line in console output:\n%s", out)
	}
}

func TestRunnerWithoutRecordsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	submitter := &scriptedSubmitter{}
	runner := NewRunner(
		CredentialLoaderFunc(sheet.Load),
		NewDriver(submitter, nil, nil, DriverConfig{Sleep: (&sleepRecorder{}).sleep}),
		report.FileWriter{Dir: dir},
		nil,
	)

	_, location, err := runner.Execute(context.Background(), filepath.Join(dir, "missing.xlsx"))
	if !errors.Is(err, ErrNothingToProcess) {
		t.Fatalf("expected ErrNothingToProcess, got %v", err)
	}
	if location != "" || len(submitter.calls) != 0 {
		t.Fatalf("expected no work, got location=%q calls=%d", location, len(submitter.calls))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files written, got %d", len(entries))
	}
}

func TestRunnerSurfacesWriteFailure(t *testing.T) {
	loader := CredentialLoaderFunc(func(path string) ([]domain.Credential, error) {
		return credentials("0x1"), nil
	})
	runner := NewRunner(loader, NewDriver(&scriptedSubmitter{}, nil, nil, DriverConfig{}), failingWriter{}, nil)

	summary, _, err := runner.Execute(context.Background(), "ignored")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected write error, got %v", err)
	}
	if summary.Total != 1 {
		t.Fatalf("expected summary to be returned alongside the error")
	}
}
