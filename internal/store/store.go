// Package store handles SQLite persistence of analysis results.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/rtlab/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const (
	kindRange      = "range"
	kindComparison = "comparison"
	kindTrend      = "trend"
)

// Store wraps SQLite access for the latest analysis result.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
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
		`CREATE TABLE IF NOT EXISTS run_info (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			participants INTEGER NOT NULL,
			saved_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trials (
			participant TEXT NOT NULL,
			stimulus INTEGER NOT NULL,
			reaction_time REAL,
			no_target INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS delay_summary (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			trial_count INTEGER NOT NULL,
			max_delay REAL,
			mean_delay REAL,
			std_delay REAL
		);`,
		`CREATE TABLE IF NOT EXISTS delay_buckets (
			position INTEGER PRIMARY KEY,
			label TEXT NOT NULL,
			lower REAL NOT NULL,
			upper REAL,
			count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS invalid_delays (
			participant TEXT NOT NULL,
			stimulus INTEGER NOT NULL,
			reaction_time REAL NOT NULL,
			excess_delay REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS stimulus_stats (
			stimulus INTEGER PRIMARY KEY,
			n INTEGER NOT NULL,
			mean REAL,
			median REAL
		);`,
		`CREATE TABLE IF NOT EXISTS range_stats (
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			start_stimulus INTEGER NOT NULL,
			end_stimulus INTEGER NOT NULL,
			n INTEGER NOT NULL,
			mean REAL,
			median REAL,
			PRIMARY KEY (kind, position)
		);`,
		`CREATE TABLE IF NOT EXISTS correlations (
			position INTEGER PRIMARY KEY,
			label TEXT NOT NULL,
			start_stimulus INTEGER NOT NULL,
			end_stimulus INTEGER NOT NULL,
			n INTEGER NOT NULL,
			r REAL,
			p_value REAL
		);`,
		`CREATE TABLE IF NOT EXISTS correlation_points (
			correlation INTEGER NOT NULL,
			participant TEXT NOT NULL,
			stimulus INTEGER NOT NULL,
			distractors INTEGER NOT NULL,
			reaction_time REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS load_warnings (
			path TEXT NOT NULL,
			message TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trials_stimulus ON trials(stimulus);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

var resultTables = []string{
	"run_info", "trials", "delay_summary", "delay_buckets", "invalid_delays",
	"stimulus_stats", "range_stats", "correlations", "correlation_points", "load_warnings",
}

// SaveResult replaces the stored result with res in a single transaction.
func (s *Store) SaveResult(ctx context.Context, res model.Result) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	for _, table := range resultTables {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO run_info (id, participants, saved_at) VALUES (1, ?, ?)`,
		res.Participants, s.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if err = insertRows(ctx, tx,
		`INSERT INTO trials (participant, stimulus, reaction_time, no_target) VALUES (?, ?, ?, ?)`,
		len(res.Trials), func(i int) []any {
			t := res.Trials[i]
			return []any{t.Participant, t.Stimulus, nullFloat(t.ReactionTime), t.NoTarget}
		}); err != nil {
		return fmt.Errorf("failed to save trials: %w", err)
	}

	d := res.Delays
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO delay_summary (id, trial_count, max_delay, mean_delay, std_delay) VALUES (1, ?, ?, ?, ?)`,
		d.Count, nullFloat(d.Max), nullFloat(d.Mean), nullFloat(d.StdDev)); err != nil {
		return err
	}
	if err = insertRows(ctx, tx,
		`INSERT INTO delay_buckets (position, label, lower, upper, count) VALUES (?, ?, ?, ?, ?)`,
		len(d.Buckets), func(i int) []any {
			b := d.Buckets[i]
			return []any{i, b.Label, b.Lower, nullFloat(b.Upper), b.Count}
		}); err != nil {
		return fmt.Errorf("failed to save delay buckets: %w", err)
	}
	if err = insertRows(ctx, tx,
		`INSERT INTO invalid_delays (participant, stimulus, reaction_time, excess_delay) VALUES (?, ?, ?, ?)`,
		len(d.Invalid), func(i int) []any {
			inv := d.Invalid[i]
			return []any{inv.Participant, inv.Stimulus, inv.ReactionTime, inv.ExcessDelay}
		}); err != nil {
		return fmt.Errorf("failed to save invalid delays: %w", err)
	}

	if err = insertRows(ctx, tx,
		`INSERT INTO stimulus_stats (stimulus, n, mean, median) VALUES (?, ?, ?, ?)`,
		len(res.Stimuli), func(i int) []any {
			st := res.Stimuli[i]
			return []any{st.Stimulus, st.N, nullFloat(st.Mean), nullFloat(st.Median)}
		}); err != nil {
		return fmt.Errorf("failed to save stimulus stats: %w", err)
	}

	var ranges []rangeRow
	for i, r := range res.Ranges {
		ranges = append(ranges, rangeRow{kind: kindRange, position: i, summary: r})
	}
	for i, c := range res.Comparisons {
		ranges = append(ranges,
			rangeRow{kind: kindComparison, position: 2 * i, summary: c.First},
			rangeRow{kind: kindComparison, position: 2*i + 1, summary: c.Second})
	}
	for i, tr := range res.Trends {
		ranges = append(ranges, rangeRow{kind: kindTrend, position: i, summary: model.RangeSummary{Range: tr.Range}})
	}
	if err = insertRows(ctx, tx,
		`INSERT INTO range_stats (kind, position, label, start_stimulus, end_stimulus, n, mean, median) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		len(ranges), func(i int) []any {
			r := ranges[i]
			return []any{r.kind, r.position, r.summary.Range.Label, r.summary.Range.Start, r.summary.Range.End,
				r.summary.N, nullFloat(r.summary.Mean), nullFloat(r.summary.Median)}
		}); err != nil {
		return fmt.Errorf("failed to save range stats: %w", err)
	}

	if err = insertRows(ctx, tx,
		`INSERT INTO correlations (position, label, start_stimulus, end_stimulus, n, r, p_value) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(res.Correlations), func(i int) []any {
			c := res.Correlations[i]
			return []any{i, c.Range.Label, c.Range.Start, c.Range.End, c.N, nullFloat(c.R), nullFloat(c.PValue)}
		}); err != nil {
		return fmt.Errorf("failed to save correlations: %w", err)
	}
	var points [][]any
	for i, c := range res.Correlations {
		for _, p := range c.Points {
			points = append(points, []any{i, p.Participant, p.Stimulus, p.Distractors, p.ReactionTime})
		}
	}
	if err = insertRows(ctx, tx,
		`INSERT INTO correlation_points (correlation, participant, stimulus, distractors, reaction_time) VALUES (?, ?, ?, ?, ?)`,
		len(points), func(i int) []any { return points[i] }); err != nil {
		return fmt.Errorf("failed to save correlation points: %w", err)
	}

	if err = insertRows(ctx, tx,
		`INSERT INTO load_warnings (path, message) VALUES (?, ?)`,
		len(res.Warnings), func(i int) []any {
			return []any{res.Warnings[i].Path, res.Warnings[i].Message}
		}); err != nil {
		return fmt.Errorf("failed to save warnings: %w", err)
	}

	return tx.Commit()
}

type rangeRow struct {
	kind     string
	position int
	summary  model.RangeSummary
}

func insertRows(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// nullFloat stores NaN and infinities as NULL.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOr(v sql.NullFloat64, fallback float64) float64 {
	if !v.Valid {
		return fallback
	}
	return v.Float64
}
