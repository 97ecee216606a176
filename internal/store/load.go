package store

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/verte-zerg/rtlab/internal/model"
)

// ErrNoResult is returned by LoadResult before any result was saved.
var ErrNoResult = errors.New("no stored analysis result")

// LoadResult rebuilds the last saved result.
func (s *Store) LoadResult(ctx context.Context) (model.Result, error) {
	var res model.Result
	err := s.db.QueryRowContext(ctx, `SELECT participants FROM run_info WHERE id = 1`).Scan(&res.Participants)
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrNoResult
	}
	if err != nil {
		return res, err
	}

	if err := s.each(ctx, `SELECT participant, stimulus, reaction_time, no_target FROM trials ORDER BY rowid`, func(rows *sql.Rows) error {
		var t model.Trial
		var rt sql.NullFloat64
		if err := rows.Scan(&t.Participant, &t.Stimulus, &rt, &t.NoTarget); err != nil {
			return err
		}
		t.ReactionTime = floatOr(rt, math.NaN())
		res.Trials = append(res.Trials, t)
		return nil
	}); err != nil {
		return res, err
	}

	if res.Delays, err = s.loadDelays(ctx); err != nil {
		return res, err
	}

	if err := s.each(ctx, `SELECT stimulus, n, mean, median FROM stimulus_stats ORDER BY stimulus`, func(rows *sql.Rows) error {
		var st model.StimulusSummary
		var mean, median sql.NullFloat64
		if err := rows.Scan(&st.Stimulus, &st.N, &mean, &median); err != nil {
			return err
		}
		st.Mean = floatOr(mean, math.NaN())
		st.Median = floatOr(median, math.NaN())
		res.Stimuli = append(res.Stimuli, st)
		return nil
	}); err != nil {
		return res, err
	}

	var comparisonSides []model.RangeSummary
	if err := s.each(ctx, `SELECT kind, label, start_stimulus, end_stimulus, n, mean, median
		FROM range_stats ORDER BY kind, position`, func(rows *sql.Rows) error {
		var kind string
		var rs model.RangeSummary
		var mean, median sql.NullFloat64
		if err := rows.Scan(&kind, &rs.Range.Label, &rs.Range.Start, &rs.Range.End, &rs.N, &mean, &median); err != nil {
			return err
		}
		rs.Mean = floatOr(mean, math.NaN())
		rs.Median = floatOr(median, math.NaN())
		switch kind {
		case kindRange:
			res.Ranges = append(res.Ranges, rs)
		case kindComparison:
			comparisonSides = append(comparisonSides, rs)
		case kindTrend:
			res.Trends = append(res.Trends, trendFromStimuli(rs.Range, res.Stimuli))
		}
		return nil
	}); err != nil {
		return res, err
	}
	for i := 0; i+1 < len(comparisonSides); i += 2 {
		res.Comparisons = append(res.Comparisons, model.Comparison{First: comparisonSides[i], Second: comparisonSides[i+1]})
	}

	if res.Correlations, err = s.loadCorrelations(ctx); err != nil {
		return res, err
	}

	if err := s.each(ctx, `SELECT path, message FROM load_warnings ORDER BY rowid`, func(rows *sql.Rows) error {
		var w model.LoadWarning
		if err := rows.Scan(&w.Path, &w.Message); err != nil {
			return err
		}
		res.Warnings = append(res.Warnings, w)
		return nil
	}); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Store) loadDelays(ctx context.Context) (model.DelayAnalysis, error) {
	var d model.DelayAnalysis
	var maxDelay, mean, std sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT trial_count, max_delay, mean_delay, std_delay FROM delay_summary WHERE id = 1`).
		Scan(&d.Count, &maxDelay, &mean, &std)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return d, err
	}
	d.Max = floatOr(maxDelay, math.NaN())
	d.Mean = floatOr(mean, math.NaN())
	d.StdDev = floatOr(std, math.NaN())

	if err := s.each(ctx, `SELECT label, lower, upper, count FROM delay_buckets ORDER BY position`, func(rows *sql.Rows) error {
		var b model.DelayBucket
		var upper sql.NullFloat64
		if err := rows.Scan(&b.Label, &b.Lower, &upper, &b.Count); err != nil {
			return err
		}
		// The last bucket is unbounded.
		b.Upper = floatOr(upper, math.Inf(1))
		d.Buckets = append(d.Buckets, b)
		return nil
	}); err != nil {
		return d, err
	}

	err = s.each(ctx, `SELECT participant, stimulus, reaction_time, excess_delay FROM invalid_delays ORDER BY rowid`, func(rows *sql.Rows) error {
		var inv model.InvalidDelay
		if err := rows.Scan(&inv.Participant, &inv.Stimulus, &inv.ReactionTime, &inv.ExcessDelay); err != nil {
			return err
		}
		inv.NoTarget = true
		d.Invalid = append(d.Invalid, inv)
		return nil
	})
	return d, err
}

func (s *Store) loadCorrelations(ctx context.Context) ([]model.Correlation, error) {
	var out []model.Correlation
	if err := s.each(ctx, `SELECT label, start_stimulus, end_stimulus, n, r, p_value FROM correlations ORDER BY position`, func(rows *sql.Rows) error {
		var c model.Correlation
		var r, p sql.NullFloat64
		if err := rows.Scan(&c.Range.Label, &c.Range.Start, &c.Range.End, &c.N, &r, &p); err != nil {
			return err
		}
		c.R = floatOr(r, math.NaN())
		c.PValue = floatOr(p, math.NaN())
		out = append(out, c)
		return nil
	}); err != nil {
		return nil, err
	}
	err := s.each(ctx, `SELECT correlation, participant, stimulus, distractors, reaction_time
		FROM correlation_points ORDER BY rowid`, func(rows *sql.Rows) error {
		var idx int
		var p model.CorrelationPoint
		if err := rows.Scan(&idx, &p.Participant, &p.Stimulus, &p.Distractors, &p.ReactionTime); err != nil {
			return err
		}
		if idx >= 0 && idx < len(out) {
			out[idx].Points = append(out[idx].Points, p)
		}
		return nil
	})
	return out, err
}

func trendFromStimuli(r model.StimulusRange, stimuli []model.StimulusSummary) model.Trend {
	tr := model.Trend{Range: r}
	for _, st := range stimuli {
		if r.Contains(st.Stimulus) {
			tr.Points = append(tr.Points, st)
		}
	}
	return tr
}

// each runs query and calls scan for every row.
func (s *Store) each(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
