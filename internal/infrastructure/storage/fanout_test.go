package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"batchsend/internal/domain"
)

type countingSink struct {
	starts, records, finishes int
	err                       error
}

func (s *countingSink) StartRun(ctx context.Context, run domain.Run) error {
	s.starts++
	return s.err
}

func (s *countingSink) RecordResult(ctx context.Context, run domain.Run, seq int, result domain.SubmissionResult) error {
	s.records++
	return s.err
}

func (s *countingSink) FinishRun(ctx context.Context, run domain.Run, summary domain.BatchSummary) error {
	s.finishes++
	return s.err
}

func TestFanoutForwardsToEverySink(t *testing.T) {
	healthy := &countingSink{}
	broken := &countingSink{err: errors.New("connection refused")}
	fanout := NewFanout()
	fanout.Add("kafka", broken)
	fanout.Add("sqlite", healthy)
	fanout.Add("nil", nil)
	if fanout.Len() != 2 {
		t.Fatalf("expected 2 sinks, got %d", fanout.Len())
	}

	ctx := context.Background()
	run := domain.Run{ID: "run-1"}
	err := fanout.StartRun(ctx, run)
	if err == nil || !strings.Contains(err.Error(), "kafka: connection refused") {
		t.Fatalf("expected named sink error, got %v", err)
	}
	_ = fanout.RecordResult(ctx, run, 1, domain.Succeeded("0xAAA", "0x1"))
	_ = fanout.FinishRun(ctx, run, domain.NewBatchSummary(run.ID, 1))

	for name, sink := range map[string]*countingSink{"healthy": healthy, "broken": broken} {
		if sink.starts != 1 || sink.records != 1 || sink.finishes != 1 {
			t.Fatalf("%s sink saw %+v", name, sink)
		}
	}
}

func TestEmptyFanoutIsNoop(t *testing.T) {
	if err := NewFanout().StartRun(context.Background(), domain.Run{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
