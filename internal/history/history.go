// Package history keeps an optional SQLite index of runs and pair outcomes.
// The append-only text logs stay the source of truth; the index exists so
// past runs can be queried without re-reading every metrics file.
package history

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/ocr-bench/internal/bench"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	providers  TEXT NOT NULL,
	documents  INTEGER NOT NULL,
	started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pairs (
	run_id       TEXT NOT NULL,
	provider     TEXT NOT NULL,
	pdf          TEXT NOT NULL,
	success      INTEGER NOT NULL,
	cause        TEXT,
	duration_ms  INTEGER,
	pages        INTEGER,
	tokens       INTEGER,
	credits      REAL,
	cost         REAL,
	model        TEXT,
	recorded_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pairs_run ON pairs(run_id);
`

// Store implements bench.RunHistory on a local SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the history database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single writer; the harness is sequential by design.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("history database ready", "path", path)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun registers a run before its first pair is attempted.
func (s *Store) RecordRun(ctx context.Context, runID string, providers []string, documents int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, providers, documents, started_at) VALUES (?, ?, ?, ?)`,
		runID, strings.Join(providers, ","), documents, time.Now().UTC().Format(time.RFC3339))
	return err
}

// RecordPair appends one pair outcome.
func (s *Store) RecordPair(ctx context.Context, runID string, pair bench.PairOutcome) error {
	m := pair.Metrics
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pairs
		 (run_id, provider, pdf, success, cause, duration_ms, pages, tokens, credits, cost, model, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, pair.Provider, pair.Document, boolToInt(pair.Success), nullString(pair.Cause),
		m.Duration.Milliseconds(), nullInt(m.Pages), nullInt(m.Tokens),
		nullFloat(m.Credits), nullFloat(m.EstimatedCost), nullString(m.Model),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// PairRow is one stored pair outcome.
type PairRow struct {
	RunID    string
	Provider string
	PDF      string
	Success  bool
	Cause    string
	Duration time.Duration
	Pages    *int
	Tokens   *int
	Credits  *float64
	Cost     *float64
	Model    string
}

// PairsForRun returns the stored outcomes of one run in insertion order.
func (s *Store) PairsForRun(ctx context.Context, runID string) ([]PairRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, provider, pdf, success, COALESCE(cause, ''), duration_ms,
		        pages, tokens, credits, cost, COALESCE(model, '')
		 FROM pairs WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PairRow
	for rows.Next() {
		var r PairRow
		var success int
		var durationMS int64
		var pages, tokens sql.NullInt64
		var credits, cost sql.NullFloat64
		if err := rows.Scan(&r.RunID, &r.Provider, &r.PDF, &success, &r.Cause, &durationMS,
			&pages, &tokens, &credits, &cost, &r.Model); err != nil {
			return nil, err
		}
		r.Success = success != 0
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Pages = intFromNull(pages)
		r.Tokens = intFromNull(tokens)
		r.Credits = floatFromNull(credits)
		r.Cost = floatFromNull(cost)
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func floatFromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
