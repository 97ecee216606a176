// Package model defines shared data structures.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Config defines analysis settings.
type Config struct {
	DataDir        string
	ResultsDir     string
	WideCSV        string
	LogGlob        string
	StimulusCount  int
	NoTargetWindow float64
	SkipBadLogs    bool
	Workbook       bool
	Ranges         []StimulusRange
	Trends         []StimulusRange
	Comparisons    []RangePair
	Correlations   []StimulusRange
}

// StimulusRange is an inclusive block of stimulus indices.
type StimulusRange struct {
	Label string
	Start int
	End   int
}

// Contains reports whether the stimulus index lies in the range, both ends inclusive.
func (r StimulusRange) Contains(stimulus int) bool {
	return stimulus >= r.Start && stimulus <= r.End
}

// Slug returns the range as used in output file names, e.g. "1_5".
func (r StimulusRange) Slug() string {
	return fmt.Sprintf("%d_%d", r.Start, r.End)
}

// RangePair names two ranges compared side by side.
type RangePair struct {
	First  StimulusRange
	Second StimulusRange
}

// WideRow is one participant row of the wide table.
type WideRow struct {
	Participant string
	Times       []float64
	NoTarget    []bool
}

// WideTable holds the wide-format stimulus table.
type WideTable struct {
	StimulusCount int
	Rows          []WideRow
}

// Trial is one (participant, stimulus) row of the long table.
type Trial struct {
	Participant  string
	Stimulus     int
	ReactionTime float64
	NoTarget     bool
}

// ParticipantID accepts both JSON numbers and strings.
type ParticipantID string

// UnmarshalJSON implements json.Unmarshaler.
func (p *ParticipantID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ParticipantID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("participant_number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("participant_number: %w", err)
	}
	*p = ParticipantID(n.String())
	return nil
}

// TrialLog is the decoded content of one Participant_*.json file.
type TrialLog struct {
	Path        string        `json:"-"`
	Participant ParticipantID `json:"participant_number"`
	Entries     []LogEntry    `json:"stimulus_log"`
}

// LogEntry is a single stimulus presentation in a trial log.
type LogEntry struct {
	Stimulus     int     `json:"stimulus_number"`
	ReactionTime float64 `json:"reaction_time_seconds"`
	Distractors  int     `json:"number_of_distractors"`
	NoTarget     bool    `json:"no_target"`
}

// Summary is a mean/median pair over a set of reaction times.
type Summary struct {
	N      int
	Mean   float64
	Median float64
}

// StimulusSummary is the summary for a single stimulus index.
type StimulusSummary struct {
	Stimulus int
	Summary
}

// RangeSummary is the summary for a stimulus range.
type RangeSummary struct {
	Range StimulusRange
	Summary
}

// DelayBucket counts excess delays in [Lower, Upper).
type DelayBucket struct {
	Label string
	Lower float64
	Upper float64
	Count int
}

// InvalidDelay is a no-target row recorded before the window elapsed.
type InvalidDelay struct {
	Trial
	ExcessDelay float64
}

// DelayAnalysis summarizes excess delays of no-target trials.
type DelayAnalysis struct {
	Count   int
	Max     float64
	Mean    float64
	StdDev  float64
	Buckets []DelayBucket
	Invalid []InvalidDelay
}

// Comparison is a side-by-side summary of two ranges.
type Comparison struct {
	First  RangeSummary
	Second RangeSummary
}

// Trend is the per-stimulus summary across a contiguous span.
type Trend struct {
	Range  StimulusRange
	Points []StimulusSummary
}

// CorrelationPoint is one (distractors, reaction time) pair.
type CorrelationPoint struct {
	Participant  string
	Stimulus     int
	Distractors  int
	ReactionTime float64
}

// Correlation is the Pearson correlation for one stimulus range.
type Correlation struct {
	Range  StimulusRange
	N      int
	R      float64
	PValue float64
	Points []CorrelationPoint
}

// LoadWarning records a non-fatal input problem.
type LoadWarning struct {
	Path    string
	Message string
}

// Result bundles every aggregate computed in one run.
type Result struct {
	Participants int
	Trials       []Trial
	Delays       DelayAnalysis
	Stimuli      []StimulusSummary
	Ranges       []RangeSummary
	Comparisons  []Comparison
	Trends       []Trend
	Correlations []Correlation
	Warnings     []LoadWarning
}
