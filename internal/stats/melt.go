package stats

import "github.com/verte-zerg/rtlab/internal/model"

// Melt unpivots the wide table into one trial per (participant, stimulus).
// Rows are ordered by stimulus, then by the participant order of the wide table.
func Melt(wide model.WideTable, stimulusCount int) []model.Trial {
	trials := make([]model.Trial, 0, len(wide.Rows)*stimulusCount)
	for i := 1; i <= stimulusCount; i++ {
		for _, row := range wide.Rows {
			trial := model.Trial{Participant: row.Participant, Stimulus: i}
			if i <= len(row.Times) {
				trial.ReactionTime = row.Times[i-1]
			}
			if i <= len(row.NoTarget) {
				trial.NoTarget = row.NoTarget[i-1]
			}
			trials = append(trials, trial)
		}
	}
	return trials
}

// SplitByTarget separates target-present trials from no-target trials.
func SplitByTarget(trials []model.Trial) (present, noTarget []model.Trial) {
	for _, t := range trials {
		if t.NoTarget {
			noTarget = append(noTarget, t)
			continue
		}
		present = append(present, t)
	}
	return present, noTarget
}
