package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/rtlab/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Analysis.DataDir != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigRanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[analysis]
data-dir = "input"
stimulus-count = 10
skip-bad-logs = true

[[analysis.ranges]]
start = 1
end = 5

[[analysis.ranges]]
label = "Late"
start = 6
end = 10

[[analysis.comparisons]]
first = { start = 1, end = 5 }
second = { start = 6, end = 10 }
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fileCfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if fileCfg.Analysis.DataDir == nil || *fileCfg.Analysis.DataDir != "input" {
		t.Fatalf("unexpected data dir: %v", fileCfg.Analysis.DataDir)
	}
	if fileCfg.Analysis.StimulusCount == nil || *fileCfg.Analysis.StimulusCount != 10 {
		t.Fatalf("unexpected stimulus count")
	}
	if fileCfg.Analysis.SkipBadLogs == nil || !*fileCfg.Analysis.SkipBadLogs {
		t.Fatalf("expected skip-bad-logs to be set")
	}

	cfg := Default()
	fileCfg.Analysis.ApplyRanges(&cfg)
	wantRanges := []model.StimulusRange{
		{Label: "Stimuli 1-5", Start: 1, End: 5},
		{Label: "Late", Start: 6, End: 10},
	}
	if diff := cmp.Diff(wantRanges, cfg.Ranges); diff != "" {
		t.Fatalf("ranges mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Comparisons) != 1 || cfg.Comparisons[0].Second.Label != "Stimuli 6-10" {
		t.Fatalf("unexpected comparisons: %+v", cfg.Comparisons)
	}
	if len(cfg.Trends) != 2 {
		t.Fatalf("expected default trends to be kept, got %d", len(cfg.Trends))
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	cfg.StimulusCount = 10
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for range beyond stimulus count")
	}
	cfg = Default()
	cfg.Ranges = append(cfg.Ranges, model.StimulusRange{Start: 5, End: 3})
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	want := Default()
	want.DataDir = "experiment"
	want.SkipBadLogs = true

	var buf bytes.Buffer
	if err := Encode(&buf, FromModel(want)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var decoded FileConfig
	if _, err := toml.Decode(buf.String(), &decoded); err != nil {
		t.Fatalf("decode encoded config: %v\n%s", err, buf.String())
	}
	a := decoded.Analysis
	got := model.Config{
		DataDir:        *a.DataDir,
		ResultsDir:     *a.ResultsDir,
		WideCSV:        *a.WideCSV,
		LogGlob:        *a.LogGlob,
		StimulusCount:  *a.StimulusCount,
		NoTargetWindow: *a.NoTargetWindow,
		SkipBadLogs:    *a.SkipBadLogs,
		Workbook:       *a.Workbook,
	}
	a.ApplyRanges(&got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestDefaultForFewerStimuli(t *testing.T) {
	cfg := DefaultFor(12)
	if err := Validate(cfg); err != nil {
		t.Fatalf("DefaultFor(12) is not valid: %v", err)
	}
	labels := func(in []model.StimulusRange) []string {
		out := make([]string, len(in))
		for i, r := range in {
			out[i] = r.Label
		}
		return out
	}
	if diff := cmp.Diff([]string{"Stimuli 1-5", "Stimuli 6-10"}, labels(cfg.Ranges)); diff != "" {
		t.Fatalf("ranges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Stimuli 1-5"}, labels(cfg.Trends)); diff != "" {
		t.Fatalf("trends mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Comparisons) != 1 || cfg.Comparisons[0].Second.Label != "Stimuli 6-10" {
		t.Fatalf("unexpected comparisons: %+v", cfg.Comparisons)
	}

	if diff := cmp.Diff(Default(), DefaultFor(DefaultStimulusCount)); diff != "" {
		t.Fatalf("DefaultFor(20) differs from Default (-want +got):\n%s", diff)
	}
}
