package stats

import (
	"fmt"
	"testing"

	"github.com/verte-zerg/rtlab/internal/model"
)

func wideTable(participants, stimuli int) model.WideTable {
	table := model.WideTable{StimulusCount: stimuli}
	for p := 0; p < participants; p++ {
		row := model.WideRow{
			Participant: fmt.Sprintf("P%d", p+1),
			Times:       make([]float64, stimuli),
			NoTarget:    make([]bool, stimuli),
		}
		for s := 0; s < stimuli; s++ {
			row.Times[s] = float64(p*100 + s)
			row.NoTarget[s] = (p+s)%3 == 0
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func TestMeltRowCountAndValues(t *testing.T) {
	for _, participants := range []int{0, 1, 2, 7} {
		wide := wideTable(participants, 20)
		trials := Melt(wide, 20)
		if len(trials) != participants*20 {
			t.Fatalf("participants=%d: expected %d rows, got %d", participants, participants*20, len(trials))
		}
		seen := map[string]bool{}
		for _, tr := range trials {
			key := fmt.Sprintf("%s/%d", tr.Participant, tr.Stimulus)
			if seen[key] {
				t.Fatalf("duplicate row %s", key)
			}
			seen[key] = true
			var row model.WideRow
			for _, r := range wide.Rows {
				if r.Participant == tr.Participant {
					row = r
				}
			}
			if tr.ReactionTime != row.Times[tr.Stimulus-1] || tr.NoTarget != row.NoTarget[tr.Stimulus-1] {
				t.Fatalf("row %s does not match wide table", key)
			}
		}
	}
}

func TestMeltOrder(t *testing.T) {
	trials := Melt(wideTable(2, 3), 3)
	want := []struct {
		participant string
		stimulus    int
	}{
		{"P1", 1}, {"P2", 1}, {"P1", 2}, {"P2", 2}, {"P1", 3}, {"P2", 3},
	}
	for i, w := range want {
		if trials[i].Participant != w.participant || trials[i].Stimulus != w.stimulus {
			t.Fatalf("row %d: expected %s/%d, got %s/%d", i, w.participant, w.stimulus, trials[i].Participant, trials[i].Stimulus)
		}
	}
}

func TestSplitByTarget(t *testing.T) {
	trials := []model.Trial{
		{Stimulus: 1, NoTarget: true},
		{Stimulus: 2},
		{Stimulus: 3},
	}
	present, noTarget := SplitByTarget(trials)
	if len(present) != 2 || len(noTarget) != 1 {
		t.Fatalf("unexpected split: %d present, %d no-target", len(present), len(noTarget))
	}
	if noTarget[0].Stimulus != 1 {
		t.Fatalf("unexpected no-target trial: %+v", noTarget[0])
	}
}
