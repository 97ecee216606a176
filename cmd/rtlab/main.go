// Package main provides the CLI entrypoint for rtlab.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/rtlab/internal/config"
	"github.com/verte-zerg/rtlab/internal/model"
	"github.com/verte-zerg/rtlab/internal/pipeline"
	"github.com/verte-zerg/rtlab/internal/report"
	"github.com/verte-zerg/rtlab/internal/stats"
	"github.com/verte-zerg/rtlab/internal/statsui"
	"github.com/verte-zerg/rtlab/internal/store"
)

var (
	runDataDir     string
	runResultsDir  string
	runWideCSV     string
	runLogGlob     string
	runStimuli     int
	runWindow      float64
	runSkipBadLogs bool
	runWorkbook    bool

	configShow bool
	verbose    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rtlab",
		Short:         "Reaction-time experiment analysis",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runAnalysisCmd,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	addRunFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the analysis pipeline",
		Args:  cobra.NoArgs,
		RunE:  runAnalysisCmd,
	}
	addRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runDataDir, "data", config.DefaultDataDir, "input data directory")
	cmd.Flags().StringVar(&runResultsDir, "results", config.DefaultResultsDir, "output directory")
	cmd.Flags().StringVar(&runWideCSV, "csv", config.DefaultWideCSV, "wide stimulus table file name inside --data")
	cmd.Flags().StringVar(&runLogGlob, "logs", config.DefaultLogGlob, "trial log file pattern inside --data")
	cmd.Flags().IntVar(&runStimuli, "stimuli", config.DefaultStimulusCount, "number of stimuli per participant; default ranges past this count are dropped, set others in the config file")
	cmd.Flags().Float64Var(&runWindow, "window", config.DefaultNoTargetWindow, "no-target display window in seconds")
	cmd.Flags().BoolVar(&runSkipBadLogs, "skip-bad-logs", false, "skip unparsable trial logs with a warning")
	cmd.Flags().BoolVar(&runWorkbook, "workbook", true, "also export all tables to analysis.xlsx")
}

// resolveRunConfig merges defaults, the config file and changed flags.
func resolveRunConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.Config {
	a := fileCfg.Analysis
	applyStringConfig(cmd, "data", &runDataDir, a.DataDir)
	applyStringConfig(cmd, "results", &runResultsDir, a.ResultsDir)
	applyStringConfig(cmd, "csv", &runWideCSV, a.WideCSV)
	applyStringConfig(cmd, "logs", &runLogGlob, a.LogGlob)
	applyIntConfig(cmd, "stimuli", &runStimuli, a.StimulusCount)
	applyFloatConfig(cmd, "window", &runWindow, a.NoTargetWindow)
	applyBoolConfig(cmd, "skip-bad-logs", &runSkipBadLogs, a.SkipBadLogs)
	applyBoolConfig(cmd, "workbook", &runWorkbook, a.Workbook)

	cfg := config.DefaultFor(runStimuli)
	cfg.DataDir = runDataDir
	cfg.ResultsDir = runResultsDir
	cfg.WideCSV = runWideCSV
	cfg.LogGlob = runLogGlob
	cfg.StimulusCount = runStimuli
	cfg.NoTargetWindow = runWindow
	cfg.SkipBadLogs = runSkipBadLogs
	cfg.Workbook = runWorkbook
	a.ApplyRanges(&cfg)
	return cfg
}

func runAnalysisCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := resolveRunConfig(cmd, fileCfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		// Sync on stderr fails on some terminals.
		_ = logger.Sync()
	}()

	workbookPath := ""
	if cfg.Workbook {
		workbookPath = config.WorkbookPath(cfg.ResultsDir)
	}
	dir, err := report.NewDir(cfg.ResultsDir, workbookPath)
	if err != nil {
		return err
	}

	st, err := store.Open(config.ResultsDBPath(cfg.ResultsDir))
	if err != nil {
		return fmt.Errorf("failed to open results db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if _, err := pipeline.Run(context.Background(), cfg, dir, st, logger, cmd.OutOrStdout()); err != nil {
		return err
	}
	if err := dir.Close(); err != nil {
		return err
	}
	if workbookPath != "" {
		logger.Debug("wrote workbook", zap.String("path", workbookPath))
	}
	return nil
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the stored results of the last run",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
	cmd.Flags().StringVar(&runResultsDir, "results", config.DefaultResultsDir, "results directory")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStoredResults(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	res, err := st.LoadResult(context.Background())
	if err != nil {
		if errors.Is(err, store.ErrNoResult) {
			return fmt.Errorf("no stored results in %s; run rtlab first", runResultsDir)
		}
		return fmt.Errorf("failed to load results: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderResult(out, res); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrends(out, res.Trends); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the stored results interactively",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
	cmd.Flags().StringVar(&runResultsDir, "results", config.DefaultResultsDir, "results directory")
	return cmd
}

func runViewCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStoredResults(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := statsui.NewModel(st, config.ResultsDBPath(runResultsDir))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run results TUI: %w", err)
	}
	return nil
}

// openStoredResults opens the results database of an existing run without
// creating a new one.
func openStoredResults(cmd *cobra.Command) (*store.Store, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "results", &runResultsDir, fileCfg.Analysis.ResultsDir)
	path := config.ResultsDBPath(runResultsDir)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no results database at %s; run rtlab first", path)
		}
		return nil, fmt.Errorf("failed to stat results db: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results db: %w", err)
	}
	return st, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file, or show the effective settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.Flags().BoolVar(&configShow, "show", false, "print the effective analysis settings as TOML")
	return cmd
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if configShow {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return config.Encode(cmd.OutOrStdout(), config.FromModel(resolveRunConfig(cmd, fileCfg)))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	return openInEditor(path)
}

// openInEditor runs $EDITOR (vi when unset) on path, attached to the terminal.
func openInEditor(path string) error {
	editor := strings.Fields(os.Getenv("EDITOR"))
	if len(editor) == 0 {
		editor = []string{"vi"}
	}
	c := exec.Command(editor[0], append(editor[1:], path)...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# rtlab configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# data-dir = %q            # Input directory
# results-dir = %q      # Output directory
# wide-csv = %q  # Wide stimulus table inside data-dir
# log-glob = %q  # Trial log pattern inside data-dir
# stimulus-count = %d          # Stimuli per participant
# no-target-window = %.1f      # No-target display window (seconds)
# skip-bad-logs = false        # Skip unparsable trial logs with a warning
# workbook = true              # Export analysis.xlsx

# Range lists replace the built-in ones when present.
# ranges = [
#   { label = "Stimuli 1-5", start = 1, end = 5 },
#   { label = "Stimuli 6-10", start = 6, end = 10 },
# ]
# trends = [{ start = 1, end = 5 }]
# correlations = [{ start = 1, end = 5 }]
# comparisons = [
#   { first = { start = 1, end = 5 }, second = { start = 6, end = 10 } },
# ]
`,
		config.DefaultDataDir,
		config.DefaultResultsDir,
		config.DefaultWideCSV,
		config.DefaultLogGlob,
		config.DefaultStimulusCount,
		config.DefaultNoTargetWindow,
	)
}

// newLogger builds a console logger on stderr. Stdout stays reserved for
// the analysis summary.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = ""
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
