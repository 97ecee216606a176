package stats

import (
	"github.com/verte-zerg/rtlab/internal/model"
)

// Analyze computes every aggregate of a run from loaded inputs.
// It performs no I/O.
func Analyze(wide model.WideTable, logs []model.TrialLog, cfg model.Config) model.Result {
	trials := Melt(wide, cfg.StimulusCount)
	present, noTarget := SplitByTarget(trials)

	res := model.Result{
		Participants: len(wide.Rows),
		Trials:       trials,
		Delays:       AnalyzeDelays(noTarget, cfg.NoTargetWindow),
		Stimuli:      StimulusStats(present),
	}
	for _, r := range cfg.Trends {
		res.Trends = append(res.Trends, Trend(present, r))
	}
	for _, pair := range cfg.Comparisons {
		res.Comparisons = append(res.Comparisons, CompareRanges(present, pair))
	}
	for _, r := range cfg.Ranges {
		res.Ranges = append(res.Ranges, RangeStats(present, r))
	}
	for _, r := range cfg.Correlations {
		if corr, ok := Correlate(logs, r); ok {
			res.Correlations = append(res.Correlations, corr)
		}
	}
	return res
}
