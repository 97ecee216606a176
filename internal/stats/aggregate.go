package stats

import (
	"sort"

	"github.com/verte-zerg/rtlab/internal/model"
)

// StimulusStats computes mean and median reaction time per stimulus index.
// Only stimuli with at least one trial are returned, in ascending order.
func StimulusStats(trials []model.Trial) []model.StimulusSummary {
	groups := map[int][]float64{}
	for _, t := range trials {
		groups[t.Stimulus] = append(groups[t.Stimulus], t.ReactionTime)
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]model.StimulusSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, model.StimulusSummary{Stimulus: k, Summary: Describe(groups[k])})
	}
	return out
}

// RangeStats computes mean and median over trials whose stimulus lies in r.
func RangeStats(trials []model.Trial, r model.StimulusRange) model.RangeSummary {
	return model.RangeSummary{Range: r, Summary: Describe(reactionTimes(inRange(trials, r)))}
}

// CompareRanges summarizes two ranges side by side.
func CompareRanges(trials []model.Trial, pair model.RangePair) model.Comparison {
	return model.Comparison{
		First:  RangeStats(trials, pair.First),
		Second: RangeStats(trials, pair.Second),
	}
}

// Trend returns per-stimulus stats across the span of r.
func Trend(trials []model.Trial, r model.StimulusRange) model.Trend {
	return model.Trend{Range: r, Points: StimulusStats(inRange(trials, r))}
}

func inRange(trials []model.Trial, r model.StimulusRange) []model.Trial {
	var out []model.Trial
	for _, t := range trials {
		if r.Contains(t.Stimulus) {
			out = append(out, t)
		}
	}
	return out
}
