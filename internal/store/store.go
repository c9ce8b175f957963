// Package store keeps the round journal in SQLite.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/parry/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// MemoryPath opens a process-local database that is discarded on Close.
const MemoryPath = ":memory:"

// Store wraps SQLite access for round data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			seq INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			success INTEGER NOT NULL,
			response_ms INTEGER NOT NULL,
			resolved_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_run_id ON rounds(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRound appends a resolved round to the journal and returns its sequence number.
func (s *Store) InsertRound(ctx context.Context, runID string, outcome model.RoundOutcome, resolvedAt time.Duration) (int64, error) {
	success := 0
	if outcome.Success {
		success = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (run_id, success, response_ms, resolved_at_ms) VALUES (?, ?, ?, ?)`,
		runID, success, outcome.ResponseTimeMs, resolvedAt.Milliseconds(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRounds returns the rounds of a run in chronological order.
func (s *Store) ListRounds(ctx context.Context, runID string) ([]model.JournalRound, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, run_id, success, response_ms, resolved_at_ms
		FROM rounds
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.JournalRound
	for rows.Next() {
		var r model.JournalRound
		var success int
		var resolvedMs int64
		if err := rows.Scan(&r.Seq, &r.RunID, &success, &r.ResponseTimeMs, &resolvedMs); err != nil {
			return nil, err
		}
		r.Success = success != 0
		r.ResolvedAt = time.Duration(resolvedMs) * time.Millisecond
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LatencyBuckets groups successful response times into fixed-width buckets.
func (s *Store) LatencyBuckets(ctx context.Context, runID string, widthMs int64) ([]model.LatencyBucket, error) {
	if widthMs <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT (response_ms / ?) * ? AS low, COUNT(*)
		FROM rounds
		WHERE run_id = ? AND success = 1
		GROUP BY low
		ORDER BY low ASC`, widthMs, widthMs, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LatencyBucket
	for rows.Next() {
		var b model.LatencyBucket
		if err := rows.Scan(&b.LowMs, &b.Count); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
