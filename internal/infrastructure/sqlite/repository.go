package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"batchsend/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository keeps run history in an embedded database file.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(dbPath string) (*Repository, error) {
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db, now: time.Now}, nil
}

func createSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			total INTEGER NOT NULL,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			address TEXT NOT NULL,
			success INTEGER NOT NULL,
			tx_hash TEXT NOT NULL,
			error TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
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
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `INSERT INTO runs (run_id, source, started_at, total)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING`, run.ID, run.Source, domain.FormatTimestamp(run.StartedAt), run.Total)
	return err
}

func (r *Repository) RecordResult(ctx context.Context, run domain.Run, seq int, result domain.SubmissionResult) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	success := 0
	if result.Success {
		success = 1
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO submissions (run_id, seq, address, success, tx_hash, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO UPDATE SET
			address = excluded.address,
			success = excluded.success,
			tx_hash = excluded.tx_hash,
			error = excluded.error,
			recorded_at = excluded.recorded_at`,
		run.ID, seq, result.Address, success, result.Hash, result.Error, domain.FormatTimestamp(r.now()))
	return err
}

func (r *Repository) FinishRun(ctx context.Context, run domain.Run, summary domain.BatchSummary) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE runs SET finished_at = ?, succeeded = ?, failed = ? WHERE run_id = ?`,
		summary.Timestamp, len(summary.Successful), len(summary.Failed), run.ID)
	return err
}

// RunSubmissions returns the stored results of a run in submission order.
func (r *Repository) RunSubmissions(ctx context.Context, runID string) ([]domain.SubmissionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT address, success, tx_hash, error FROM submissions
		WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SubmissionResult
	for rows.Next() {
		var result domain.SubmissionResult
		var success int
		if err := rows.Scan(&result.Address, &success, &result.Hash, &result.Error); err != nil {
			return nil, err
		}
		result.Success = success != 0
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
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
