package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/rtlab/internal/config"
)

func TestResolveRunConfigFlagsOverrideFile(t *testing.T) {
	root := newRootCmd()
	if err := root.Flags().Set("stimuli", "10"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	dataDir := "experiment"
	count := 15
	skip := true
	fileCfg := config.FileConfig{Analysis: config.AnalysisConfig{
		DataDir:       &dataDir,
		StimulusCount: &count,
		SkipBadLogs:   &skip,
		Correlations:  []config.RangeConfig{{Start: 2, End: 4}},
	}}

	cfg := resolveRunConfig(root, fileCfg)
	if cfg.StimulusCount != 10 {
		t.Fatalf("expected flag to win, got %d", cfg.StimulusCount)
	}
	if cfg.DataDir != "experiment" || !cfg.SkipBadLogs {
		t.Fatalf("expected file values to apply, got %+v", cfg)
	}
	if cfg.ResultsDir != config.DefaultResultsDir {
		t.Fatalf("expected default results dir, got %q", cfg.ResultsDir)
	}
	if len(cfg.Correlations) != 1 || cfg.Correlations[0].Label != "Stimuli 2-4" {
		t.Fatalf("unexpected correlations: %+v", cfg.Correlations)
	}
	if len(cfg.Ranges) != 2 || cfg.Ranges[1].End != 10 {
		t.Fatalf("expected default ranges within 10 stimuli, got %+v", cfg.Ranges)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("fewer stimuli must still give a valid config: %v", err)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if cfg.Analysis.DataDir != nil {
		t.Fatalf("expected every template value to be commented out")
	}
}

func writeInputs(t *testing.T, dir string) {
	t.Helper()
	header := []string{"participant_number"}
	row1 := []string{"1"}
	row2 := []string{"2"}
	for i := 1; i <= 20; i++ {
		header = append(header, "stimulus_"+strconv.Itoa(i)+"_time", "stimulus_"+strconv.Itoa(i)+"_no_target")
		noTarget := i%5 == 0
		t1, t2 := "1.5", "2.5"
		if noTarget {
			t1, t2 = "20.004", "20.03"
		}
		row1 = append(row1, t1, boolCell(noTarget))
		row2 = append(row2, t2, boolCell(noTarget))
	}
	csv := strings.Join(header, ",") + "\n" + strings.Join(row1, ",") + "\n" + strings.Join(row2, ",") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "stimulus_times.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	log := `{"participant_number": 1, "stimulus_log": [
		{"stimulus_number": 1, "reaction_time_seconds": 1.2, "number_of_distractors": 2, "no_target": false},
		{"stimulus_number": 2, "reaction_time_seconds": 1.6, "number_of_distractors": 5, "no_target": false},
		{"stimulus_number": 3, "reaction_time_seconds": 1.4, "number_of_distractors": 3, "no_target": false}
	]}`
	if err := os.WriteFile(filepath.Join(dir, "Participant_1.json"), []byte(log), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func boolCell(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func TestRunAndSummary(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dataDir := t.TempDir()
	resultsDir := filepath.Join(t.TempDir(), "results")
	writeInputs(t, dataDir)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--data", dataDir, "--results", resultsDir})
	if err := root.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "=== Delay Statistics ===") {
		t.Fatalf("expected summary on stdout:\n%s", out.String())
	}
	for _, name := range []string{"stimulus_stats_individual.csv", "stimulus_stats_ranges.csv", "analysis.db", "analysis.xlsx"} {
		if _, err := os.Stat(filepath.Join(resultsDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	summary := newRootCmd()
	var summaryOut bytes.Buffer
	summary.SetOut(&summaryOut)
	summary.SetArgs([]string{"summary", "--results", resultsDir})
	if err := summary.Execute(); err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !strings.Contains(summaryOut.String(), "Participants: 2") {
		t.Fatalf("unexpected summary output:\n%s", summaryOut.String())
	}
}

func TestSummaryWithoutResults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"summary", "--results", filepath.Join(t.TempDir(), "none")})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error without a results database")
	}
}

func TestConfigShowMergesFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("[analysis]\nstimulus-count = 12\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--show"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config --show failed: %v", err)
	}
	var shown config.FileConfig
	if _, err := toml.Decode(out.String(), &shown); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, out.String())
	}
	if shown.Analysis.StimulusCount == nil || *shown.Analysis.StimulusCount != 12 {
		t.Fatalf("expected file value in output:\n%s", out.String())
	}
	if shown.Analysis.DataDir == nil || *shown.Analysis.DataDir != config.DefaultDataDir {
		t.Fatalf("expected default data dir in output:\n%s", out.String())
	}
	if len(shown.Analysis.Ranges) != 4 {
		t.Fatalf("expected default ranges in output, got %d", len(shown.Analysis.Ranges))
	}
}
