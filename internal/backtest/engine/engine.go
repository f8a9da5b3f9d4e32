package engine

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/barsim/internal/strategy"
	"github.com/rxtech-lab/barsim/internal/types"
)

// OnProcessDataCallback is called for each bar processed. Returning an error
// aborts the run.
type OnProcessDataCallback func(current int, total int) error

type Engine interface {
	// Initialize the engine with the given YAML configuration. An empty
	// string uses the engine defaults.
	Initialize(config string) error
	// LoadBars validates the bars and loads them as the series to replay.
	// Bars outside the configured start/end window are dropped first.
	LoadBars(bars []types.Bar) error
	// SetStrategy sets the strategy to drive. The strategy must already be
	// initialized.
	SetStrategy(s strategy.Strategy) error
	// SetResultsFolder sets the output directory for run artifacts. Leaving
	// it unset skips writing artifacts.
	SetResultsFolder(folder string) error
	// Run replays the series through the strategy and returns the result.
	// Use the callback to observe per-bar progress.
	Run(onProcessDataCallback optional.Option[OnProcessDataCallback]) (*types.Result, error)
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
