package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"batchsend/internal/domain"
)

// ErrNothingToProcess means the input held no usable credentials.
var ErrNothingToProcess = errors.New("no addresses to process")

type CredentialLoader interface {
	Load(path string) ([]domain.Credential, error)
}

type CredentialLoaderFunc func(path string) ([]domain.Credential, error)

func (f CredentialLoaderFunc) Load(path string) ([]domain.Credential, error) {
	return f(path)
}

// SummaryWriter persists a sealed summary and returns where it went.
type SummaryWriter interface {
	WriteSummary(summary domain.BatchSummary) (string, error)
}

type SummaryPrinter interface {
	PrintSummary(summary domain.BatchSummary)
	PrintSaved(location string)
}

type BatchDriver interface {
	Run(ctx context.Context, records []domain.Credential) domain.BatchSummary
}

// Runner executes one batch end to end: load, submit, print, persist.
type Runner struct {
	loader  CredentialLoader
	driver  BatchDriver
	writer  SummaryWriter
	printer SummaryPrinter
}

func NewRunner(loader CredentialLoader, driver BatchDriver, writer SummaryWriter, printer SummaryPrinter) *Runner {
	return &Runner{loader: loader, driver: driver, writer: writer, printer: printer}
}

func (r *Runner) Execute(ctx context.Context, path string) (domain.BatchSummary, string, error) {
	slog.Info("Reading addresses from spreadsheet", "path", path)
	records, err := r.loader.Load(path)
	if err != nil {
		slog.Error("Error reading spreadsheet", "path", path, "err", err)
		records = nil
	}
	if len(records) == 0 {
		slog.Error("No addresses to process. Exiting...")
		return domain.BatchSummary{}, "", ErrNothingToProcess
	}
	slog.Info("Found addresses to process", "count", len(records))

	summary := r.driver.Run(ctx, records)
	if r.printer != nil {
		r.printer.PrintSummary(summary)
	}

	location, err := r.writer.WriteSummary(summary)
	if err != nil {
		return summary, "", fmt.Errorf("write results: %w", err)
	}
	if r.printer != nil {
		r.printer.PrintSaved(location)
	}
	return summary, location, nil
}
