package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PerformanceStats is the fixed-schema output of the metrics engine.
// Ratios that are undefined for the input (e.g. Calmar with zero drawdown)
// are reported as NaN; Sortino with no losing bars is +Inf.
type PerformanceStats struct {
	// WinRate is the fraction of closed trades with positive P&L.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Sharpe is the annualized mean/stdev ratio of per-bar returns.
	Sharpe float64 `yaml:"sharpe" json:"sharpe"`
	// Sortino is the annualized ratio penalizing only downside returns.
	Sortino float64 `yaml:"sortino" json:"sortino"`
	// MaxDrawdown is the largest fractional decline from a running equity peak.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// CAGR is the geometric annualized return over the run.
	CAGR float64 `yaml:"cagr" json:"cagr"`
	// Calmar is CAGR divided by MaxDrawdown.
	Calmar float64 `yaml:"calmar" json:"calmar"`
}

// RunInfo identifies a single backtest run.
type RunInfo struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Strategy is the name of the strategy that produced the result.
	Strategy string `yaml:"strategy" json:"strategy"`
	// Bars is the number of bars replayed.
	Bars int `yaml:"bars" json:"bars"`
}

// Result is the complete output of one backtest run.
type Result struct {
	Run         RunInfo          `yaml:"run" json:"run"`
	Stats       PerformanceStats `yaml:"stats" json:"stats"`
	EquityCurve EquityCurve      `yaml:"-" json:"-"`
	Trades      []Trade          `yaml:"-" json:"-"`
}

// WriteResultSummary writes the run info and stats to a YAML file.
func WriteResultSummary(path string, result Result) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result summary to file: %w", err)
	}

	return nil
}
