package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"batchsend/internal/domain"
)

func sampleSummary() domain.BatchSummary {
	summary := domain.NewBatchSummary("", 2)
	summary.Add(domain.Succeeded("0xAAA", "0xABC"))
	summary.Add(domain.Failed("0xBBB", "insufficient funds"))
	summary.Timestamp = "2026-10-17T09:30:15.123Z"
	return summary
}

func TestFileWriterWritesIndentedJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := FileWriter{Dir: dir}.WriteSummary(sampleSummary())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "results-2026-10-17T09-30-15-123Z.json" {
		t.Fatalf("unexpected file name %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "\n  \"total\": 2") {
		t.Fatalf("expected two-space indentation, got %s", raw)
	}
	if strings.Contains(string(raw), "run_id") {
		t.Fatalf("expected empty run id to be omitted, got %s", raw)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["timestamp"] != "2026-10-17T09:30:15.123Z" {
		t.Fatalf("unexpected timestamp %v", decoded["timestamp"])
	}
	failed := decoded["failed"].([]any)
	entry := failed[0].(map[string]any)
	if entry["success"] != false || entry["error"] != "insufficient funds" {
		t.Fatalf("unexpected failed entry %v", entry)
	}
	if _, ok := entry["hash"]; ok {
		t.Fatalf("failed entry should not carry a hash")
	}
}

func TestFileWriterRequiresTimestamp(t *testing.T) {
	if _, err := (FileWriter{Dir: t.TempDir()}).WriteSummary(domain.NewBatchSummary("", 0)); err == nil {
		t.Fatalf("expected error for unsealed summary")
	}
}

func TestConsolePrintsBothBuckets(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(&buf, false)
	console.PrintSummary(sampleSummary())
	console.PrintSaved("results.json")

	out := buf.String()
	for _, want := range []string{
		"--- RESULTS SUMMARY ---",
		"Total addresses: 2",
		"Successful: 1",
		"Failed: 1",
		"Successful Transactions:\n- Address: 0xAAA, Hash: 0xABC",
		"Failed Transactions:\n- Address: 0xBBB, Error: insufficient funds",
		"Results saved to results.json",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestConsoleOmitsEmptyBuckets(t *testing.T) {
	var buf bytes.Buffer
	summary := domain.NewBatchSummary("", 1)
	summary.Add(domain.Succeeded("0xAAA", "0xABC"))
	NewConsole(&buf, false).PrintSummary(summary)

	if strings.Contains(buf.String(), "Failed Transactions:") {
		t.Fatalf("did not expect failed section:\n%s", buf.String())
	}
}
