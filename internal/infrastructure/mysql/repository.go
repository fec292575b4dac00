package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"batchsend/internal/domain"

	_ "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(dsn string) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("db dsn is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db, now: time.Now}, nil
}

func createSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR(36) NOT NULL,
			source VARCHAR(1024) NOT NULL,
			started_at VARCHAR(24) NOT NULL,
			finished_at VARCHAR(24) NULL,
			total INT UNSIGNED NOT NULL,
			succeeded INT UNSIGNED NOT NULL DEFAULT 0,
			failed INT UNSIGNED NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id)
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			run_id VARCHAR(36) NOT NULL,
			seq INT UNSIGNED NOT NULL,
			address VARCHAR(64) NOT NULL,
			success TINYINT(1) NOT NULL,
			tx_hash VARCHAR(66) NOT NULL,
			error TEXT NOT NULL,
			recorded_at VARCHAR(24) NOT NULL,
			PRIMARY KEY (run_id, seq),
			KEY submissions_address_idx (address)
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) StartRun(ctx context.Context, run domain.Run) error {
	ctx, span := startDBSpan(ctx, "mysql.StartRun",
		attribute.String("run.id", run.ID),
		attribute.Int("run.total", run.Total),
	)
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT IGNORE INTO runs (run_id, source, started_at, total)
		VALUES (?, ?, ?, ?)`, run.ID, run.Source, domain.FormatTimestamp(run.StartedAt), run.Total)
	return endSpan(span, err)
}

func (r *Repository) RecordResult(ctx context.Context, run domain.Run, seq int, result domain.SubmissionResult) error {
	ctx, span := startDBSpan(ctx, "mysql.RecordResult",
		attribute.String("run.id", run.ID),
		attribute.Int("submission.seq", seq),
		attribute.Bool("submission.success", result.Success),
	)
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO submissions (run_id, seq, address, success, tx_hash, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			address = VALUES(address),
			success = VALUES(success),
			tx_hash = VALUES(tx_hash),
			error = VALUES(error),
			recorded_at = VALUES(recorded_at)`,
		run.ID, seq, result.Address, result.Success, result.Hash, result.Error, domain.FormatTimestamp(r.now()))
	return endSpan(span, err)
}

func (r *Repository) FinishRun(ctx context.Context, run domain.Run, summary domain.BatchSummary) error {
	ctx, span := startDBSpan(ctx, "mysql.FinishRun",
		attribute.String("run.id", run.ID),
		attribute.Int("run.succeeded", len(summary.Successful)),
		attribute.Int("run.failed", len(summary.Failed)),
	)
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `UPDATE runs SET finished_at = ?, succeeded = ?, failed = ? WHERE run_id = ?`,
		summary.Timestamp, len(summary.Successful), len(summary.Failed), run.ID)
	return endSpan(span, err)
}

func (r *Repository) RunSubmissions(ctx context.Context, runID string) ([]domain.SubmissionResult, error) {
	ctx, span := startDBSpan(ctx, "mysql.RunSubmissions", attribute.String("run.id", runID))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT address, success, tx_hash, error FROM submissions
		WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, endSpan(span, err)
	}
	defer rows.Close()

	var results []domain.SubmissionResult
	for rows.Next() {
		var result domain.SubmissionResult
		if err := rows.Scan(&result.Address, &result.Success, &result.Hash, &result.Error); err != nil {
			return nil, endSpan(span, err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, endSpan(span, err)
	}
	span.SetAttributes(attribute.Int("db.rows", len(results)))
	return results, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func startDBSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", "mysql"))
	return otel.Tracer("batchsend/mysql").Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
