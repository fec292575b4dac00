package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"batchsend/internal/application"
	"batchsend/internal/config"
	"batchsend/internal/domain"
	"batchsend/internal/infrastructure/ethrpc"
	"batchsend/internal/infrastructure/kafka"
	"batchsend/internal/infrastructure/logging"
	"batchsend/internal/infrastructure/mysql"
	"batchsend/internal/infrastructure/redis"
	"batchsend/internal/infrastructure/sheet"
	"batchsend/internal/infrastructure/sqlite"
	"batchsend/internal/infrastructure/storage"
	"batchsend/internal/infrastructure/telemetry"
	"batchsend/internal/interfaces/httpapi"
	"batchsend/internal/interfaces/report"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const rpcRequestTimeout = 30 * time.Second

// resultStore is a result sink that can also answer history queries.
type resultStore interface {
	application.ResultSink
	RunSubmissions(ctx context.Context, runID string) ([]domain.SubmissionResult, error)
	Ping(ctx context.Context) error
	Close() error
}

func runBatch(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	rotating, err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		NoColor:    color.NoColor,
	})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if rotating != nil {
		defer rotating.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	slog.Info("Base contract batch submitter",
		"version", version,
		"run_id", runID,
		"rpc", cfg.RPCURL,
		"contract", cfg.ContractAddress.Hex(),
		"input_data", cfg.InputDataHex(),
		"gas_limit", cfg.GasLimit,
		"max_priority_fee_gwei", cfg.MaxPriorityFeeGwei,
		"max_fee_gwei", cfg.MaxFeeGwei,
		"delay", cfg.TxDelay,
	)

	shutdownTracing, err := telemetry.InitTracer(ctx, "batchsend", version, cfg.OtelEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "err", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown error", "err", err)
		}
	}()

	if cfg.RedisAddr != "" {
		release, err := acquireRunLock(ctx, cfg)
		if err != nil {
			return err
		}
		defer release()
	}

	client, err := ethrpc.NewClient(ctx, ethrpc.Config{URL: cfg.RPCURL, RequestTimeout: rpcRequestTimeout})
	if err != nil {
		return fmt.Errorf("rpc: %w", err)
	}
	defer client.Close()

	submitter, err := application.NewSubmitter(client, application.SubmitterConfig{
		ContractAddress:      cfg.ContractAddress,
		InputData:            cfg.InputData,
		GasLimit:             cfg.GasLimit,
		MaxPriorityFeePerGas: cfg.MaxPriorityFee,
		MaxFeePerGas:         cfg.MaxFee,
		ReceiptTimeout:       cfg.ReceiptTimeout,
	})
	if err != nil {
		return err
	}

	fanout := storage.NewFanout()
	store, err := openStore(cfg)
	if err != nil {
		slog.Warn("result store disabled", "store", cfg.ResultsStore, "err", err)
		store = nil
	} else if store != nil {
		defer store.Close()
		fanout.Add(cfg.ResultsStore, store)
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			slog.Warn("kafka publishing disabled", "err", err)
		} else {
			defer producer.Close()
			fanout.Add("kafka", producer)
		}
	}
	var sink application.ResultSink
	if fanout.Len() > 0 {
		sink = fanout
	}

	metrics := httpapi.NewMetrics()
	if cfg.StatusAddr != "" {
		server, err := httpapi.NewServer(client, metrics, httpapi.BuildInfo{
			Version:   version,
			Commit:    commit,
			BuildTime: buildTime,
		}, runID)
		if err != nil {
			return err
		}
		if store != nil {
			server.AddReadinessCheck("store", store)
		}
		serverCtx, stopServer := context.WithCancel(context.WithoutCancel(ctx))
		defer stopServer()
		go func() {
			slog.Info("status server listening", "addr", cfg.StatusAddr)
			if err := server.ListenAndServe(serverCtx, cfg.StatusAddr); err != nil {
				slog.Error("status server error", "err", err)
			}
		}()
	}

	driver := application.NewDriver(submitter, sink, metrics, application.DriverConfig{
		Delay:  cfg.TxDelay,
		RunID:  runID,
		Source: cfg.InputFile,
	})
	runner := application.NewRunner(
		application.CredentialLoaderFunc(sheet.Load),
		driver,
		report.FileWriter{Dir: cfg.ResultsDir},
		report.NewConsole(cmd.OutOrStdout(), !color.NoColor),
	)

	summary, _, err := runner.Execute(ctx, cfg.InputFile)
	if errors.Is(err, application.ErrNothingToProcess) {
		return nil
	}
	if err != nil {
		return err
	}
	if cfg.StrictExit && len(summary.Failed) > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d of %d submissions failed", len(summary.Failed), summary.Total)}
	}
	return nil
}

func acquireRunLock(ctx context.Context, cfg config.Config) (func(), error) {
	locker, err := redis.NewLocker(ctx, redis.LockConfig{Addr: cfg.RedisAddr, TTL: cfg.LockTTL})
	if err != nil {
		return nil, fmt.Errorf("run lock: %w", err)
	}
	lock, err := locker.Acquire(ctx, cfg.InputFile)
	if err != nil {
		_ = locker.Close()
		return nil, fmt.Errorf("run lock: %w", err)
	}
	slog.Info("run lock acquired", "key", lock.Key(), "ttl", cfg.LockTTL)
	return func() {
		if err := lock.Release(context.Background()); err != nil {
			slog.Warn("run lock release failed", "key", lock.Key(), "err", err)
		}
		_ = locker.Close()
	}, nil
}

// openStore returns nil without error when no store is configured.
func openStore(cfg config.Config) (resultStore, error) {
	switch cfg.ResultsStore {
	case config.StoreSQLite:
		return sqlite.NewRepository(cfg.ResultsDBPath)
	case config.StoreMySQL:
		return mysql.NewRepository(cfg.ResultsDBDSN)
	default:
		return nil, nil
	}
}
