// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "rtlab"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// WideCSVPath returns the wide stimulus table path inside the data directory.
func WideCSVPath(dataDir, name string) string {
	return filepath.Join(dataDir, name)
}

// ResultsDBPath returns the results database path inside the results directory.
func ResultsDBPath(resultsDir string) string {
	return filepath.Join(resultsDir, "analysis.db")
}

// WorkbookPath returns the XLSX export path inside the results directory.
func WorkbookPath(resultsDir string) string {
	return filepath.Join(resultsDir, "analysis.xlsx")
}
