package config

import (
	"fmt"

	"github.com/verte-zerg/rtlab/internal/model"
)

// Defaults mirror the experiment's folder layout and trial design.
const (
	DefaultDataDir        = "data"
	DefaultResultsDir     = "results"
	DefaultWideCSV        = "stimulus_times.csv"
	DefaultLogGlob        = "Participant_*.json"
	DefaultStimulusCount  = 20
	DefaultNoTargetWindow = 20.0
)

// Default returns the analysis configuration used by the experiment.
func Default() model.Config {
	r := func(start, end int) model.StimulusRange {
		return model.StimulusRange{Label: RangeLabel(start, end), Start: start, End: end}
	}
	return model.Config{
		DataDir:        DefaultDataDir,
		ResultsDir:     DefaultResultsDir,
		WideCSV:        DefaultWideCSV,
		LogGlob:        DefaultLogGlob,
		StimulusCount:  DefaultStimulusCount,
		NoTargetWindow: DefaultNoTargetWindow,
		Workbook:       true,
		Ranges:         []model.StimulusRange{r(1, 5), r(6, 10), r(11, 15), r(16, 20)},
		Trends:         []model.StimulusRange{r(1, 5), r(11, 15)},
		Comparisons: []model.RangePair{
			{First: r(1, 5), Second: r(6, 10)},
			{First: r(11, 15), Second: r(16, 20)},
			{First: r(1, 5), Second: r(11, 15)},
			{First: r(6, 10), Second: r(16, 20)},
		},
		Correlations: []model.StimulusRange{r(1, 5), r(11, 15)},
	}
}

// DefaultFor returns Default for an experiment with count stimuli. Default
// ranges that do not fit in 1..count are dropped, and so are comparisons
// with a dropped side.
func DefaultFor(count int) model.Config {
	cfg := Default()
	cfg.StimulusCount = count
	fits := func(r model.StimulusRange) bool { return r.End <= count }
	keep := func(in []model.StimulusRange) []model.StimulusRange {
		out := make([]model.StimulusRange, 0, len(in))
		for _, r := range in {
			if fits(r) {
				out = append(out, r)
			}
		}
		return out
	}
	cfg.Ranges = keep(cfg.Ranges)
	cfg.Trends = keep(cfg.Trends)
	cfg.Correlations = keep(cfg.Correlations)
	pairs := cfg.Comparisons[:0]
	for _, p := range cfg.Comparisons {
		if fits(p.First) && fits(p.Second) {
			pairs = append(pairs, p)
		}
	}
	cfg.Comparisons = pairs
	return cfg
}

// Validate checks that a configuration can drive a run.
func Validate(cfg model.Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("--data must not be empty")
	}
	if cfg.ResultsDir == "" {
		return fmt.Errorf("--results must not be empty")
	}
	if cfg.WideCSV == "" {
		return fmt.Errorf("--csv must not be empty")
	}
	if cfg.StimulusCount <= 0 {
		return fmt.Errorf("--stimuli must be > 0")
	}
	if cfg.NoTargetWindow < 0 {
		return fmt.Errorf("--window must be >= 0")
	}
	lists := [][]model.StimulusRange{cfg.Ranges, cfg.Trends, cfg.Correlations}
	for _, p := range cfg.Comparisons {
		lists = append(lists, []model.StimulusRange{p.First, p.Second})
	}
	for _, list := range lists {
		for _, r := range list {
			if err := validateRange(r, cfg.StimulusCount); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateRange(r model.StimulusRange, count int) error {
	if r.Start < 1 || r.End < r.Start {
		return fmt.Errorf("invalid stimulus range %d-%d", r.Start, r.End)
	}
	if r.End > count {
		return fmt.Errorf("stimulus range %d-%d exceeds stimulus count %d", r.Start, r.End, count)
	}
	return nil
}
