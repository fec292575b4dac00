package application

import (
	"context"
	"log/slog"
	"time"

	"batchsend/internal/domain"
)

// CredentialSubmitter turns one credential into exactly one result.
type CredentialSubmitter interface {
	Submit(ctx context.Context, credential domain.Credential) domain.SubmissionResult
}

// SleepFunc waits between submissions. A cancelled ctx ends the wait early.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ResultSink receives run events as they happen. Errors are logged, never fatal.
type ResultSink interface {
	StartRun(ctx context.Context, run domain.Run) error
	RecordResult(ctx context.Context, run domain.Run, seq int, result domain.SubmissionResult) error
	FinishRun(ctx context.Context, run domain.Run, summary domain.BatchSummary) error
}

type ProgressObserver interface {
	OnStart(total int)
	OnSubmitting(index int, credential domain.Credential)
	OnResult(result domain.SubmissionResult, elapsed time.Duration)
}

type DriverConfig struct {
	Delay  time.Duration
	RunID  string
	Source string
	Sleep  SleepFunc
}

// Driver submits credentials one after another with a fixed pause in between.
type Driver struct {
	submitter CredentialSubmitter
	sink      ResultSink
	observer  ProgressObserver
	cfg       DriverConfig
	now       func() time.Time
}

func NewDriver(submitter CredentialSubmitter, sink ResultSink, observer ProgressObserver, cfg DriverConfig) *Driver {
	if cfg.Sleep == nil {
		cfg.Sleep = ContextSleep
	}
	return &Driver{
		submitter: submitter,
		sink:      sink,
		observer:  observer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ContextSleep blocks for d or until ctx is done.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run processes records in order. The returned summary always holds one
// result per record; records left unsent after cancellation are marked failed.
func (d *Driver) Run(ctx context.Context, records []domain.Credential) domain.BatchSummary {
	run := domain.Run{
		ID:        d.cfg.RunID,
		Source:    d.cfg.Source,
		StartedAt: d.now(),
		Total:     len(records),
	}
	summary := domain.NewBatchSummary(run.ID, len(records))
	sinkCtx := context.WithoutCancel(ctx)

	if d.sink != nil {
		if err := d.sink.StartRun(sinkCtx, run); err != nil {
			slog.Warn("result sink start failed", "run_id", run.ID, "err", err)
		}
	}
	if d.observer != nil {
		d.observer.OnStart(len(records))
	}

	for i, record := range records {
		var (
			result  domain.SubmissionResult
			elapsed time.Duration
		)
		if err := ctx.Err(); err != nil {
			result = domain.Failed(record.Address, "skipped: "+err.Error())
		} else {
			slog.Info("Processing address", "index", i+1, "total", len(records), "address", record.Address)
			if d.observer != nil {
				d.observer.OnSubmitting(i, record)
			}
			started := d.now()
			result = d.submitter.Submit(ctx, record)
			elapsed = d.now().Sub(started)
		}
		// Skipped records reach the observer too, with zero elapsed time.
		if d.observer != nil {
			d.observer.OnResult(result, elapsed)
		}
		summary.Add(result)
		if d.sink != nil {
			if err := d.sink.RecordResult(sinkCtx, run, i+1, result); err != nil {
				slog.Warn("result sink record failed", "run_id", run.ID, "seq", i+1, "err", err)
			}
		}

		if i < len(records)-1 && ctx.Err() == nil {
			slog.Debug("Waiting before next transaction", "delay", d.cfg.Delay)
			if err := d.cfg.Sleep(ctx, d.cfg.Delay); err != nil {
				slog.Warn("delay interrupted", "err", err)
			}
		}
	}

	summary.Seal(d.now())
	if d.sink != nil {
		if err := d.sink.FinishRun(sinkCtx, run, summary); err != nil {
			slog.Warn("result sink finish failed", "run_id", run.ID, "err", err)
		}
	}
	return summary
}
