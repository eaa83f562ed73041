// Package store persists batch run history to sqlite so successive
// benchmark runs can be compared.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/openmot/trackbench/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	detector     TEXT NOT NULL,
	sequences    INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	total_frames INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	fps          REAL NOT NULL,
	created_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_sequences (
	run_id      TEXT NOT NULL REFERENCES runs(run_id),
	sequence    TEXT NOT NULL,
	frames      INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	fps         REAL NOT NULL,
	skipped     INTEGER NOT NULL,
	error       TEXT,
	PRIMARY KEY (run_id, sequence)
);
`

// Run is a persisted batch summary row.
type Run struct {
	RunID       string
	Detector    string
	Sequences   int
	Failed      int
	TotalFrames int
	DurationMs  int64
	FPS         float64
	CreatedAt   int64
}

// RunStore provides persistence for batch results.
type RunStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the run history database at path.
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run store %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create run store schema: %w", err)
	}
	return &RunStore{db: db}, nil
}

// Close releases the database handle.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// SaveBatch persists one batch result and its per-sequence rows in a
// single transaction, returning the generated run ID.
func (s *RunStore) SaveBatch(detector string, batch pipeline.BatchResult) (string, error) {
	runID := uuid.New().String()
	now := time.Now().UnixNano()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin run store tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, detector, sequences, failed, total_frames, duration_ms, fps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, detector, len(batch.Results), batch.Failed,
		batch.TotalFrames, batch.TotalDuration.Milliseconds(), batch.Throughput(), now,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, res := range batch.Results {
		var errText sql.NullString
		if res.Err != nil {
			errText = sql.NullString{String: res.Err.Error(), Valid: true}
		}
		_, err = tx.Exec(`
			INSERT INTO run_sequences (run_id, sequence, frames, duration_ms, fps, skipped, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, res.Sequence, res.FrameCount, res.Duration.Milliseconds(),
			res.Throughput(), boolToInt(res.Skipped), errText,
		)
		if err != nil {
			return "", fmt.Errorf("insert run sequence %s: %w", res.Sequence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run store tx: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit batch summaries, newest first.
func (s *RunStore) RecentRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, detector, sequences, failed, total_frames, duration_ms, fps, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		err := rows.Scan(&r.RunID, &r.Detector, &r.Sequences, &r.Failed,
			&r.TotalFrames, &r.DurationMs, &r.FPS, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
