package storage

import (
	"context"
	"errors"
	"fmt"

	"batchsend/internal/application"
	"batchsend/internal/domain"
)

type namedSink struct {
	name string
	sink application.ResultSink
}

// Fanout forwards every run event to each registered sink. A failing sink
// does not stop the others; their errors are joined.
type Fanout struct {
	sinks []namedSink
}

func NewFanout() *Fanout {
	return &Fanout{}
}

func (f *Fanout) Add(name string, sink application.ResultSink) {
	if sink == nil {
		return
	}
	f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
}

func (f *Fanout) Len() int {
	return len(f.sinks)
}

func (f *Fanout) StartRun(ctx context.Context, run domain.Run) error {
	return f.each(func(sink application.ResultSink) error {
		return sink.StartRun(ctx, run)
	})
}

func (f *Fanout) RecordResult(ctx context.Context, run domain.Run, seq int, result domain.SubmissionResult) error {
	return f.each(func(sink application.ResultSink) error {
		return sink.RecordResult(ctx, run, seq, result)
	})
}

func (f *Fanout) FinishRun(ctx context.Context, run domain.Run, summary domain.BatchSummary) error {
	return f.each(func(sink application.ResultSink) error {
		return sink.FinishRun(ctx, run, summary)
	})
}

func (f *Fanout) each(fn func(application.ResultSink) error) error {
	var errs []error
	for _, s := range f.sinks {
		if err := fn(s.sink); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
