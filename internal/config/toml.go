// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/rtlab/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
}

// AnalysisConfig maps analysis-related settings.
type AnalysisConfig struct {
	DataDir        *string       `toml:"data-dir"`
	ResultsDir     *string       `toml:"results-dir"`
	WideCSV        *string       `toml:"wide-csv"`
	LogGlob        *string       `toml:"log-glob"`
	StimulusCount  *int          `toml:"stimulus-count"`
	NoTargetWindow *float64      `toml:"no-target-window"`
	SkipBadLogs    *bool         `toml:"skip-bad-logs"`
	Workbook       *bool         `toml:"workbook"`
	Ranges         []RangeConfig `toml:"ranges"`
	Trends         []RangeConfig `toml:"trends"`
	Comparisons    []PairConfig  `toml:"comparisons"`
	Correlations   []RangeConfig `toml:"correlations"`
}

// RangeConfig maps a stimulus range table.
type RangeConfig struct {
	Label string `toml:"label"`
	Start int    `toml:"start"`
	End   int    `toml:"end"`
}

// PairConfig maps a range comparison table.
type PairConfig struct {
	First  RangeConfig `toml:"first"`
	Second RangeConfig `toml:"second"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Encode writes cfg as TOML. Unset values are omitted.
func Encode(w io.Writer, cfg FileConfig) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// FromModel returns a file config with every setting of cfg filled in.
func FromModel(cfg model.Config) FileConfig {
	pairs := make([]PairConfig, len(cfg.Comparisons))
	for i, p := range cfg.Comparisons {
		pairs[i] = PairConfig{First: fromRange(p.First), Second: fromRange(p.Second)}
	}
	return FileConfig{Analysis: AnalysisConfig{
		DataDir:        &cfg.DataDir,
		ResultsDir:     &cfg.ResultsDir,
		WideCSV:        &cfg.WideCSV,
		LogGlob:        &cfg.LogGlob,
		StimulusCount:  &cfg.StimulusCount,
		NoTargetWindow: &cfg.NoTargetWindow,
		SkipBadLogs:    &cfg.SkipBadLogs,
		Workbook:       &cfg.Workbook,
		Ranges:         fromRanges(cfg.Ranges),
		Trends:         fromRanges(cfg.Trends),
		Comparisons:    pairs,
		Correlations:   fromRanges(cfg.Correlations),
	}}
}

func fromRanges(in []model.StimulusRange) []RangeConfig {
	out := make([]RangeConfig, len(in))
	for i, r := range in {
		out[i] = fromRange(r)
	}
	return out
}

func fromRange(r model.StimulusRange) RangeConfig {
	return RangeConfig{Label: r.Label, Start: r.Start, End: r.End}
}

// ApplyRanges overrides the range lists of cfg with any lists set in the file.
func (a AnalysisConfig) ApplyRanges(cfg *model.Config) {
	if len(a.Ranges) > 0 {
		cfg.Ranges = toRanges(a.Ranges)
	}
	if len(a.Trends) > 0 {
		cfg.Trends = toRanges(a.Trends)
	}
	if len(a.Comparisons) > 0 {
		pairs := make([]model.RangePair, 0, len(a.Comparisons))
		for _, p := range a.Comparisons {
			pairs = append(pairs, model.RangePair{First: p.First.toRange(), Second: p.Second.toRange()})
		}
		cfg.Comparisons = pairs
	}
	if len(a.Correlations) > 0 {
		cfg.Correlations = toRanges(a.Correlations)
	}
}

func toRanges(in []RangeConfig) []model.StimulusRange {
	out := make([]model.StimulusRange, 0, len(in))
	for _, r := range in {
		out = append(out, r.toRange())
	}
	return out
}

func (r RangeConfig) toRange() model.StimulusRange {
	label := r.Label
	if label == "" {
		label = RangeLabel(r.Start, r.End)
	}
	return model.StimulusRange{Label: label, Start: r.Start, End: r.End}
}

// RangeLabel builds the default display label for a range.
func RangeLabel(start, end int) string {
	return fmt.Sprintf("Stimuli %d-%d", start, end)
}
