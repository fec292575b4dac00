package domain

import (
	"strings"
	"time"
)

// TimestampLayout renders UTC timestamps with millisecond precision and a Z suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Run identifies one execution of the batch.
type Run struct {
	ID        string
	Source    string
	StartedAt time.Time
	Total     int
}

// BatchSummary accumulates the results of a run.
type BatchSummary struct {
	RunID      string             `json:"run_id,omitempty"`
	Timestamp  string             `json:"timestamp"`
	Total      int                `json:"total"`
	Successful []SubmissionResult `json:"successful"`
	Failed     []SubmissionResult `json:"failed"`
}

func NewBatchSummary(runID string, total int) BatchSummary {
	return BatchSummary{
		RunID:      runID,
		Total:      total,
		Successful: []SubmissionResult{},
		Failed:     []SubmissionResult{},
	}
}

// Add files the result into the bucket matching its Success flag.
func (s *BatchSummary) Add(result SubmissionResult) {
	if result.Success {
		s.Successful = append(s.Successful, result)
		return
	}
	s.Failed = append(s.Failed, result)
}

// Recorded is the number of results added so far.
func (s BatchSummary) Recorded() int {
	return len(s.Successful) + len(s.Failed)
}

// Seal stamps the summary with its completion time.
func (s *BatchSummary) Seal(at time.Time) {
	s.Timestamp = FormatTimestamp(at)
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ResultsFileName derives a collision-free file name from a summary timestamp.
func ResultsFileName(timestamp string) string {
	safe := strings.NewReplacer(":", "-", ".", "-").Replace(timestamp)
	return "results-" + safe + ".json"
}
