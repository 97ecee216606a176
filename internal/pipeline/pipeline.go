// Package pipeline runs one end-to-end analysis: load, compute, write.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/verte-zerg/rtlab/internal/config"
	"github.com/verte-zerg/rtlab/internal/loader"
	"github.com/verte-zerg/rtlab/internal/model"
	"github.com/verte-zerg/rtlab/internal/report"
	"github.com/verte-zerg/rtlab/internal/stats"
)

// ResultSaver persists a finished result.
type ResultSaver interface {
	SaveResult(ctx context.Context, res model.Result) error
}

// Run loads the inputs named by cfg, computes every aggregate, writes tables
// and charts through rep, saves the result through saver when non-nil and
// prints a text summary to stdout.
func Run(ctx context.Context, cfg model.Config, rep report.Reporter, saver ResultSaver, logger *zap.Logger, stdout io.Writer) (model.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := config.Validate(cfg); err != nil {
		return model.Result{}, err
	}

	widePath := config.WideCSVPath(cfg.DataDir, cfg.WideCSV)
	wide, err := loader.LoadWide(widePath, cfg.StimulusCount)
	if err != nil {
		return model.Result{}, err
	}
	logger.Debug("loaded wide table", zap.String("path", widePath), zap.Int("participants", len(wide.Rows)))

	logs, warnings, err := loader.LoadTrialLogs(cfg.DataDir, cfg.LogGlob, loader.LogOptions{
		SkipBad: cfg.SkipBadLogs,
		Logger:  logger,
	})
	if err != nil {
		return model.Result{}, err
	}
	if len(logs) == 0 {
		logger.Warn("no trial logs found", zap.String("pattern", filepath.Join(cfg.DataDir, cfg.LogGlob)))
	}

	res := stats.Analyze(wide, logs, cfg)
	res.Warnings = warnings

	if n := len(res.Delays.Invalid); n > 0 {
		logger.Warn("no-target trials answered before the window elapsed were excluded", zap.Int("rows", n))
		if err := stats.RenderInvalidDelays(stdout, res.Delays.Invalid); err != nil {
			return res, err
		}
	}
	logSkippedCorrelations(logger, logs, cfg, res)

	err = report.Emit(rep, res, cfg, func(name string, err error) {
		logger.Warn("chart not rendered", zap.String("chart", name), zap.Error(err))
	})
	if err != nil {
		return res, err
	}

	if saver != nil {
		if err := saver.SaveResult(ctx, res); err != nil {
			return res, fmt.Errorf("failed to save results: %w", err)
		}
	}

	if err := stats.RenderResult(stdout, res); err != nil {
		return res, err
	}
	logger.Info("analysis complete",
		zap.Int("participants", res.Participants),
		zap.Int("trials", len(res.Trials)),
		zap.String("results", cfg.ResultsDir))
	return res, nil
}

// logSkippedCorrelations reports configured ranges that produced no
// correlation. A single pair is worth a warning; no pairs at all is normal
// when logs are absent.
func logSkippedCorrelations(logger *zap.Logger, logs []model.TrialLog, cfg model.Config, res model.Result) {
	done := map[model.StimulusRange]bool{}
	for _, c := range res.Correlations {
		done[c.Range] = true
	}
	for _, r := range cfg.Correlations {
		if done[r] {
			continue
		}
		n := len(stats.CorrelationPoints(logs, r))
		if n == 0 {
			logger.Debug("no data for correlation", zap.String("range", r.Label))
			continue
		}
		logger.Warn("too few pairs for correlation", zap.String("range", r.Label), zap.Int("pairs", n))
	}
}
