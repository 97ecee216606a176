// Package loader reads the experiment's stimulus table and trial logs.
package loader

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/rtlab/internal/model"
)

const participantColumn = "participant_number"

// TimeColumn returns the wide-table column holding stimulus i's reaction time.
func TimeColumn(i int) string {
	return fmt.Sprintf("stimulus_%d_time", i)
}

// NoTargetColumn returns the wide-table column holding stimulus i's no-target flag.
func NoTargetColumn(i int) string {
	return fmt.Sprintf("stimulus_%d_no_target", i)
}

// LoadWide reads the wide stimulus table from a CSV file.
func LoadWide(path string, stimulusCount int) (model.WideTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.WideTable{}, fmt.Errorf("failed to open stimulus table: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	table, err := ReadWide(file, stimulusCount)
	if err != nil {
		return model.WideTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ReadWide parses a wide stimulus table. Extra columns are ignored.
func ReadWide(r io.Reader, stimulusCount int) (model.WideTable, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.WideTable{}, fmt.Errorf("stimulus table is empty")
		}
		return model.WideTable{}, fmt.Errorf("failed to read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	lookup := func(name string) (int, error) {
		col, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("missing column %q", name)
		}
		return col, nil
	}

	participantCol, err := lookup(participantColumn)
	if err != nil {
		return model.WideTable{}, err
	}
	timeCols := make([]int, stimulusCount)
	flagCols := make([]int, stimulusCount)
	for i := 1; i <= stimulusCount; i++ {
		if timeCols[i-1], err = lookup(TimeColumn(i)); err != nil {
			return model.WideTable{}, err
		}
		if flagCols[i-1], err = lookup(NoTargetColumn(i)); err != nil {
			return model.WideTable{}, err
		}
	}

	table := model.WideTable{StimulusCount: stimulusCount}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.WideTable{}, fmt.Errorf("failed to read row: %w", err)
		}
		row := model.WideRow{
			Participant: strings.TrimSpace(record[participantCol]),
			Times:       make([]float64, stimulusCount),
			NoTarget:    make([]bool, stimulusCount),
		}
		for i := 0; i < stimulusCount; i++ {
			if row.Times[i], err = parseTime(record[timeCols[i]]); err != nil {
				return model.WideTable{}, fmt.Errorf("line %d, %s: %w", line, TimeColumn(i+1), err)
			}
			if row.NoTarget[i], err = parseFlag(record[flagCols[i]]); err != nil {
				return model.WideTable{}, fmt.Errorf("line %d, %s: %w", line, NoTargetColumn(i+1), err)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func parseTime(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(value, 64)
}

func parseFlag(value string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(value))
}

// LogOptions controls how trial logs are read.
type LogOptions struct {
	// SkipBad turns unreadable logs into warnings instead of failing the run.
	SkipBad bool
	Logger  *zap.Logger
}

// LoadTrialLogs reads every file in dir matching pattern, in lexical order.
func LoadTrialLogs(dir, pattern string, opts LogOptions) ([]model.TrialLog, []model.LoadWarning, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)

	logs := make([]model.TrialLog, 0, len(paths))
	var warnings []model.LoadWarning
	for _, path := range paths {
		log, err := LoadTrialLog(path)
		if err != nil {
			if !opts.SkipBad {
				return nil, nil, err
			}
			logger.Warn("skipping trial log", zap.String("path", path), zap.Error(err))
			warnings = append(warnings, model.LoadWarning{Path: path, Message: err.Error()})
			continue
		}
		logs = append(logs, log)
	}
	logger.Debug("loaded trial logs", zap.Int("files", len(paths)), zap.Int("loaded", len(logs)))
	return logs, warnings, nil
}

// LoadTrialLog decodes a single participant trial log.
func LoadTrialLog(path string) (model.TrialLog, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.TrialLog{}, fmt.Errorf("failed to open trial log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()

	log, err := decodeTrialLog(file)
	if err != nil {
		return model.TrialLog{}, fmt.Errorf("failed to decode trial log %s: %w", path, err)
	}
	log.Path = path
	return log, nil
}

// rawTrialLog mirrors model.TrialLog with pointer fields so absent keys can
// be told apart from zero values.
type rawTrialLog struct {
	Participant *model.ParticipantID `json:"participant_number"`
	Entries     []rawLogEntry        `json:"stimulus_log"`
}

type rawLogEntry struct {
	Stimulus     *int     `json:"stimulus_number"`
	ReactionTime *float64 `json:"reaction_time_seconds"`
	Distractors  *int     `json:"number_of_distractors"`
	NoTarget     *bool    `json:"no_target"`
}

// decodeTrialLog reads exactly one log object from r. Every key of the log
// and of each entry is required.
func decodeTrialLog(r io.Reader) (model.TrialLog, error) {
	dec := json.NewDecoder(r)
	var raw rawTrialLog
	if err := dec.Decode(&raw); err != nil {
		return model.TrialLog{}, err
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return model.TrialLog{}, errors.New("unexpected data after trial log object")
	}
	if raw.Participant == nil {
		return model.TrialLog{}, errors.New("missing participant_number")
	}
	if raw.Entries == nil {
		return model.TrialLog{}, errors.New("missing stimulus_log")
	}
	log := model.TrialLog{Participant: *raw.Participant, Entries: make([]model.LogEntry, len(raw.Entries))}
	for i, e := range raw.Entries {
		switch {
		case e.Stimulus == nil:
			return model.TrialLog{}, fmt.Errorf("stimulus_log[%d]: missing stimulus_number", i)
		case e.ReactionTime == nil:
			return model.TrialLog{}, fmt.Errorf("stimulus_log[%d]: missing reaction_time_seconds", i)
		case e.Distractors == nil:
			return model.TrialLog{}, fmt.Errorf("stimulus_log[%d]: missing number_of_distractors", i)
		case e.NoTarget == nil:
			return model.TrialLog{}, fmt.Errorf("stimulus_log[%d]: missing no_target", i)
		}
		log.Entries[i] = model.LogEntry{
			Stimulus:     *e.Stimulus,
			ReactionTime: *e.ReactionTime,
			Distractors:  *e.Distractors,
			NoTarget:     *e.NoTarget,
		}
	}
	return log, nil
}
