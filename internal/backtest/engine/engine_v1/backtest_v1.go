// Package engine_v1 is the reference implementation of the backtest engine:
// a single-series, single-strategy, one-position replay with market-on-close
// fills and a DuckDB audit ledger.
package engine_v1

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/barsim/internal/backtest/engine"
	"github.com/rxtech-lab/barsim/internal/backtest/engine/engine_v1/commission"
	"github.com/rxtech-lab/barsim/internal/indicator"
	"github.com/rxtech-lab/barsim/internal/logger"
	"github.com/rxtech-lab/barsim/internal/metrics"
	"github.com/rxtech-lab/barsim/internal/series"
	"github.com/rxtech-lab/barsim/internal/strategy"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	log           *logger.Logger
	series        *series.Series
	indicators    *indicator.Engine
	strategy      strategy.Strategy
	ledger        *Ledger
	resultsFolder string
}

// NewBacktestEngineV1 creates an engine with default configuration and an
// empty indicator cache.
func NewBacktestEngineV1(log *logger.Logger) engine.Engine {
	return &BacktestEngineV1{
		config:        DefaultConfig(),
		log:           log,
		series:        nil,
		indicators:    indicator.NewEngine(),
		strategy:      nil,
		ledger:        NewLedger(log),
		resultsFolder: "",
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	if config == "" {
		b.config = DefaultConfig()
		return nil
	}

	parsed := DefaultConfig()
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse engine config", err)
	}

	if err := parsed.Validate(); err != nil {
		return err
	}

	b.config = parsed
	b.log.Debug("Engine initialized",
		zap.Float64("initial_capital", parsed.InitialCapital),
		zap.Float64("position_size", parsed.PositionSize),
	)

	return nil
}

// LoadBars implements engine.Engine.
func (b *BacktestEngineV1) LoadBars(bars []types.Bar) error {
	filtered := b.filterBars(bars)

	loaded, err := series.Load(filtered)
	if err != nil {
		return err
	}

	b.series = loaded
	b.log.Info("Series loaded",
		zap.String("series_id", loaded.ID()),
		zap.Int("bars", loaded.Len()),
	)

	return nil
}

// SetStrategy implements engine.Engine.
func (b *BacktestEngineV1) SetStrategy(s strategy.Strategy) error {
	if s == nil {
		return errors.New(errors.ErrCodeBacktestNoStrategy, "strategy is nil")
	}

	b.strategy = s

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

// Run implements engine.Engine. The replay visits every bar in order: the
// strategy decides, the simulator settles the intent at the bar's close,
// then the account is marked to market. On the final bar any open position
// is force-closed before the last equity point is taken, so the curve always
// ends flat. Two runs over the same inputs produce identical results.
func (b *BacktestEngineV1) Run(onProcessDataCallback optional.Option[engine.OnProcessDataCallback]) (*types.Result, error) {
	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	if err := b.ledger.Initialize(); err != nil {
		return nil, err
	}

	b.indicators.Reset()

	simulator := NewSimulator(
		b.config.InitialCapital,
		b.config.PositionSize,
		commission.GetModel(b.config.CommissionModel, b.config.CommissionRate),
	)

	total := b.series.Len()
	lastIndex := total - 1

	for index := 0; index < total; index++ {
		bar, err := b.series.Bar(index)
		if err != nil {
			return nil, err
		}

		if err := b.processBar(simulator, index, bar); err != nil {
			return nil, err
		}

		if index == lastIndex {
			if err := b.forceClose(simulator, index, bar); err != nil {
				return nil, err
			}
		}

		simulator.MarkToMarket(bar)

		if onProcessDataCallback.IsSome() {
			if err := onProcessDataCallback.Unwrap()(index+1, total); err != nil {
				return nil, err
			}
		}
	}

	result := &types.Result{
		Run: types.RunInfo{
			ID:        uuid.New().String(),
			Timestamp: time.Now().UTC(),
			Strategy:  b.strategy.Name(),
			Bars:      total,
		},
		Stats:       metrics.Compute(simulator.EquityCurve(), simulator.Trades(), b.config.Annualization),
		EquityCurve: simulator.EquityCurve(),
		Trades:      simulator.Trades(),
	}

	b.log.Info("Run complete",
		zap.String("run_id", result.Run.ID),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("final_equity", result.EquityCurve.Final(b.config.InitialCapital)),
	)

	if b.resultsFolder != "" {
		if err := b.writeResults(result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// processBar settles one bar: the strategy's intent is executed at the
// bar's close and mirrored into the ledger.
func (b *BacktestEngineV1) processBar(simulator *Simulator, index int, bar types.Bar) error {
	ctx := strategy.Context{
		Series:     b.series,
		Indicators: b.indicators,
		Account:    simulator.Account(),
	}

	intent, err := b.strategy.OnBar(ctx, index)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err, "strategy %s failed at bar %d", b.strategy.Name(), index)
	}

	if intent == types.IntentHold {
		return nil
	}

	tradesBefore := len(simulator.Trades())

	if err := simulator.Apply(intent, index, bar); err != nil {
		return err
	}

	if err := b.ledger.RecordFill(intent, index, bar, b.config.PositionSize, b.strategy.Name()); err != nil {
		return err
	}

	return b.recordNewTrades(simulator, tradesBefore)
}

// forceClose liquidates whatever is still open on the final bar.
func (b *BacktestEngineV1) forceClose(simulator *Simulator, index int, bar types.Bar) error {
	if simulator.Account().IsFlat() {
		return nil
	}

	tradesBefore := len(simulator.Trades())

	if err := simulator.ForceClose(index, bar); err != nil {
		return err
	}

	b.log.Debug("Force-closed open position at end of series", zap.Int("bar", index))

	return b.recordNewTrades(simulator, tradesBefore)
}

func (b *BacktestEngineV1) recordNewTrades(simulator *Simulator, from int) error {
	trades := simulator.Trades()
	for _, trade := range trades[from:] {
		if err := b.ledger.RecordTrade(trade); err != nil {
			return err
		}
	}

	return nil
}

// filterBars keeps bars inside the configured closed time window.
func (b *BacktestEngineV1) filterBars(bars []types.Bar) []types.Bar {
	if b.config.StartTime.IsNone() && b.config.EndTime.IsNone() {
		return bars
	}

	filtered := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		if b.config.StartTime.IsSome() && bar.Time.Before(b.config.StartTime.Unwrap()) {
			continue
		}

		if b.config.EndTime.IsSome() && bar.Time.After(b.config.EndTime.Unwrap()) {
			continue
		}

		filtered = append(filtered, bar)
	}

	return filtered
}

func (b *BacktestEngineV1) preRunCheck() error {
	if b.series == nil {
		return errors.New(errors.ErrCodeBacktestNoSeries, "no series loaded")
	}

	if b.strategy == nil {
		return errors.New(errors.ErrCodeBacktestNoStrategy, "no strategy set")
	}

	if b.ledger == nil {
		return errors.New(errors.ErrCodeLedgerFailed, "ledger is not available")
	}

	return nil
}

// writeResults saves the stats summary and the Parquet ledger export under
// the results folder.
func (b *BacktestEngineV1) writeResults(result *types.Result) error {
	runFolder := filepath.Join(b.resultsFolder, result.Run.ID)

	if err := b.ledger.Write(runFolder); err != nil {
		return err
	}

	summaryPath := filepath.Join(runFolder, "stats.yaml")
	if err := types.WriteResultSummary(summaryPath, *result); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to write result summary", err)
	}

	b.log.Info("Results written", zap.String("folder", runFolder))

	return nil
}

// Cleanup releases the ledger's database.
func (b *BacktestEngineV1) Cleanup() error {
	return b.ledger.Cleanup()
}
