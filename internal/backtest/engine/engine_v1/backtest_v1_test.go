package engine_v1

import (
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/barsim/internal/backtest/engine"
	"github.com/rxtech-lab/barsim/internal/indicator"
	"github.com/rxtech-lab/barsim/internal/logger"
	"github.com/rxtech-lab/barsim/internal/series"
	"github.com/rxtech-lab/barsim/internal/strategy"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// scriptedStrategy replays a fixed intent per bar index, holding everywhere
// else.
type scriptedStrategy struct {
	intents map[int]types.OrderIntent
}

func (s *scriptedStrategy) Initialize(config string) error { return nil }

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) OnBar(ctx strategy.Context, index int) (types.OrderIntent, error) {
	if intent, ok := s.intents[index]; ok {
		return intent, nil
	}

	return types.IntentHold, nil
}

func barsFromCloses(closes ...float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	for i, close := range closes {
		bars[i] = barAt(i, close)
	}

	return bars
}

// reboundCloses descends from 1.50 in 0.02 steps for 14 bars, then recovers
// in 0.03 steps for 10 bars: RSI(14) bottoms at 0, crosses back over 50
// during the recovery, and stays under 70 through the last bar.
func reboundCloses() []float64 {
	closes := make([]float64, 0, 25)

	price := 1.50
	closes = append(closes, price)

	for i := 0; i < 14; i++ {
		price -= 0.02
		closes = append(closes, price)
	}

	for i := 0; i < 10; i++ {
		price += 0.03
		closes = append(closes, price)
	}

	return closes
}

func newTestEngine(suite *BacktestEngineV1TestSuite, config string, s strategy.Strategy, bars []types.Bar) engine.Engine {
	b := NewBacktestEngineV1(logger.NewNopLogger())

	suite.Require().NoError(b.Initialize(config))
	suite.Require().NoError(b.LoadBars(bars))
	suite.Require().NoError(b.SetStrategy(s))

	return b
}

type BacktestEngineV1TestSuite struct {
	suite.Suite
}

func TestBacktestEngineV1Suite(t *testing.T) {
	suite.Run(t, new(BacktestEngineV1TestSuite))
}

func (suite *BacktestEngineV1TestSuite) TestPreRunChecks() {
	b := NewBacktestEngineV1(logger.NewNopLogger())
	suite.Require().NoError(b.Initialize(""))

	_, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoSeries))

	suite.Require().NoError(b.LoadBars(barsFromCloses(1, 2, 3)))

	_, err = b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoStrategy))

	err = b.SetStrategy(nil)
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoStrategy))
}

func (suite *BacktestEngineV1TestSuite) TestInitializeRejectsBadConfig() {
	b := NewBacktestEngineV1(logger.NewNopLogger())

	err := b.Initialize("initial_capital: -5\nposition_size: 1\nannualization: 252")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestConfigError))
}

func (suite *BacktestEngineV1TestSuite) TestConstantSeriesStaysFlat() {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 1.1
	}

	s := strategy.NewRSIMeanReversion()
	suite.Require().NoError(s.Initialize(""))

	b := newTestEngine(suite, "", s, barsFromCloses(closes...))

	result, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.Require().NoError(err)

	// RSI sits at its midpoint on constant closes, so no threshold ever
	// trips.
	suite.Empty(result.Trades)
	suite.Require().Len(result.EquityCurve, 20)

	for _, point := range result.EquityCurve {
		suite.Equal(10000.0, point.Equity)
	}

	suite.Equal(0.0, result.Stats.WinRate)
	suite.Equal(0.0, result.Stats.MaxDrawdown)
}

func (suite *BacktestEngineV1TestSuite) TestSeriesShorterThanWarmup() {
	s := strategy.NewRSIMeanReversion()
	suite.Require().NoError(s.Initialize(""))

	b := newTestEngine(suite, "", s, barsFromCloses(1.0, 1.1, 1.2, 1.3, 1.4))

	result, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.Require().NoError(err)

	suite.Empty(result.Trades)
	suite.Len(result.EquityCurve, 5)
	suite.Equal(10000.0, result.EquityCurve.Final(0))
}

func (suite *BacktestEngineV1TestSuite) TestMeanReversionRoundTrip() {
	closes := reboundCloses()

	// Derive the expected entry and exit bars from the indicator itself.
	priceSeries, err := series.Load(barsFromCloses(closes...))
	suite.Require().NoError(err)

	rsi, err := indicator.RSI(priceSeries, indicator.Params{"period": 14})
	suite.Require().NoError(err)

	expectedEntry, expectedExit := -1, -1

	for i := 0; i < rsi.Len(); i++ {
		if expectedEntry == -1 && rsi.Valid(i) && rsi[i] < 30 {
			expectedEntry = i
			continue
		}

		if expectedEntry != -1 && rsi.Valid(i) && rsi[i] > 50 {
			expectedExit = i
			break
		}
	}

	suite.Require().NotEqual(-1, expectedEntry)
	suite.Require().NotEqual(-1, expectedExit)
	suite.Require().Less(expectedExit, len(closes)-1, "the exit must not rely on the forced liquidation")

	s := strategy.NewRSIMeanReversion()
	suite.Require().NoError(s.Initialize(""))

	b := newTestEngine(suite, "", s, barsFromCloses(closes...))

	result, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.Require().NoError(err)

	suite.Require().Len(result.Trades, 1)
	trade := result.Trades[0]
	suite.Equal(types.DirectionLong, trade.Direction)
	suite.Equal(expectedEntry, trade.EntryIndex)
	suite.Equal(expectedExit, trade.ExitIndex)
	suite.Equal(closes[expectedEntry], trade.EntryPrice)
	suite.Equal(closes[expectedExit], trade.ExitPrice)

	suite.Len(result.EquityCurve, len(closes))
	suite.InDelta(10000.0+trade.PnL, result.EquityCurve.Final(0), 1e-9)
	suite.Equal(1.0, result.Stats.WinRate)
}

func (suite *BacktestEngineV1TestSuite) TestDeterministicRuns() {
	closes := reboundCloses()

	run := func() *types.Result {
		s := strategy.NewRSIMeanReversion()
		suite.Require().NoError(s.Initialize(""))

		b := newTestEngine(suite, "", s, barsFromCloses(closes...))

		result, err := b.Run(optional.None[engine.OnProcessDataCallback]())
		suite.Require().NoError(err)

		return result
	}

	first := run()
	second := run()

	// NaN-valued ratios (Calmar with zero drawdown) defeat a plain struct
	// comparison, so the stats are checked field by field.
	suite.Equal(first.Stats.WinRate, second.Stats.WinRate)
	suite.Equal(first.Stats.Sharpe, second.Stats.Sharpe)
	suite.Equal(first.Stats.MaxDrawdown, second.Stats.MaxDrawdown)
	suite.Equal(first.Stats.CAGR, second.Stats.CAGR)
	suite.Equal(math.IsNaN(first.Stats.Calmar), math.IsNaN(second.Stats.Calmar))
	suite.Equal(math.IsInf(first.Stats.Sortino, 1), math.IsInf(second.Stats.Sortino, 1))

	suite.Equal(first.EquityCurve, second.EquityCurve)
	suite.Require().Equal(len(first.Trades), len(second.Trades))

	for i := range first.Trades {
		a, b := first.Trades[i], second.Trades[i]
		// Trade IDs are freshly generated per run; everything else must
		// match exactly.
		a.ID, b.ID = "", ""
		suite.Equal(a, b)
	}
}

func (suite *BacktestEngineV1TestSuite) TestForceCloseAtEnd() {
	// Buy on bar 1 and never exit: the engine liquidates on the final bar
	// before taking the last equity point.
	scripted := &scriptedStrategy{intents: map[int]types.OrderIntent{1: types.IntentBuy}}

	b := newTestEngine(suite, "", scripted, barsFromCloses(100, 100, 104, 108, 112))

	result, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.Require().NoError(err)

	suite.Require().Len(result.Trades, 1)
	trade := result.Trades[0]
	suite.Equal(1, trade.EntryIndex)
	suite.Equal(4, trade.ExitIndex)
	suite.Equal(12.0, trade.PnL)

	suite.Require().Len(result.EquityCurve, 5)
	suite.Equal([]float64{10000, 10000, 10004, 10008, 10012}, []float64{
		result.EquityCurve[0].Equity,
		result.EquityCurve[1].Equity,
		result.EquityCurve[2].Equity,
		result.EquityCurve[3].Equity,
		result.EquityCurve[4].Equity,
	})
}

func (suite *BacktestEngineV1TestSuite) TestCommissionReducesCash() {
	config := `
initial_capital: 10000
commission_model: fractional
commission_rate: 0.001
position_size: 1
annualization: 252
`

	scripted := &scriptedStrategy{intents: map[int]types.OrderIntent{
		0: types.IntentBuy,
		2: types.IntentCloseLong,
	}}

	b := newTestEngine(suite, config, scripted, barsFromCloses(100, 150, 200, 200))

	result, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.Require().NoError(err)

	suite.Require().Len(result.Trades, 1)
	trade := result.Trades[0]
	suite.InDelta(100.0, trade.PnL, 1e-9)
	// 0.1 on the 100 entry, 0.2 on the 200 exit.
	suite.InDelta(0.3, trade.Commission, 1e-9)
	suite.InDelta(10099.7, result.EquityCurve.Final(0), 1e-9)
}

func (suite *BacktestEngineV1TestSuite) TestLedgerMirrorsTrades() {
	scripted := &scriptedStrategy{intents: map[int]types.OrderIntent{
		0: types.IntentBuy,
		2: types.IntentCloseLong,
		3: types.IntentSell,
	}}

	// The short opened on bar 3 rides into the forced liquidation.
	b := newTestEngine(suite, "", scripted, barsFromCloses(100, 110, 120, 120, 130))

	result, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.Require().NoError(err)
	suite.Require().Len(result.Trades, 2)

	summary, err := b.(*BacktestEngineV1).ledger.Summary()
	suite.Require().NoError(err)

	suite.Equal(len(result.Trades), summary.Total)

	winning := 0
	for _, trade := range result.Trades {
		if trade.PnL > 0 {
			winning++
		}
	}

	suite.Equal(winning, summary.Winning)
	suite.Equal(len(result.Trades)-winning, summary.Losing)
}

func (suite *BacktestEngineV1TestSuite) TestInvalidIntentAbortsRun() {
	scripted := &scriptedStrategy{intents: map[int]types.OrderIntent{
		0: types.IntentBuy,
		1: types.IntentBuy,
	}}

	b := newTestEngine(suite, "", scripted, barsFromCloses(100, 101, 102))

	_, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidIntent))
}

func (suite *BacktestEngineV1TestSuite) TestTimeWindowFiltersBars() {
	config := `
initial_capital: 10000
position_size: 1
annualization: 252
start_time: 2024-01-03T00:00:00Z
end_time: 2024-01-05T00:00:00Z
`

	s := strategy.NewRSIMeanReversion()
	suite.Require().NoError(s.Initialize(""))

	// Bars run daily from 2024-01-01; the window keeps days 3 through 5.
	b := newTestEngine(suite, config, s, barsFromCloses(1, 2, 3, 4, 5, 6, 7))

	result, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.Require().NoError(err)

	suite.Equal(3, result.Run.Bars)
	suite.Len(result.EquityCurve, 3)
}

func (suite *BacktestEngineV1TestSuite) TestProgressCallback() {
	s := strategy.NewRSIMeanReversion()
	suite.Require().NoError(s.Initialize(""))

	b := newTestEngine(suite, "", s, barsFromCloses(1, 2, 3, 4))

	var seen []int

	callback := engine.OnProcessDataCallback(func(current int, total int) error {
		suite.Equal(4, total)
		seen = append(seen, current)

		return nil
	})

	_, err := b.Run(optional.Some(callback))
	suite.Require().NoError(err)
	suite.Equal([]int{1, 2, 3, 4}, seen)
}

func (suite *BacktestEngineV1TestSuite) TestCallbackErrorAborts() {
	s := strategy.NewRSIMeanReversion()
	suite.Require().NoError(s.Initialize(""))

	b := newTestEngine(suite, "", s, barsFromCloses(1, 2, 3, 4))

	callback := engine.OnProcessDataCallback(func(current int, total int) error {
		return errors.New(errors.ErrCodeUnknown, "stop")
	})

	_, err := b.Run(optional.Some(callback))
	suite.Require().Error(err)
}

func (suite *BacktestEngineV1TestSuite) TestResultsWrittenToFolder() {
	s := strategy.NewRSIMeanReversion()
	suite.Require().NoError(s.Initialize(""))

	b := newTestEngine(suite, "", s, barsFromCloses(1, 2, 3, 4))
	suite.Require().NoError(b.SetResultsFolder(suite.T().TempDir()))

	result, err := b.Run(optional.None[engine.OnProcessDataCallback]())
	suite.Require().NoError(err)
	suite.NotEmpty(result.Run.ID)
}

func (suite *BacktestEngineV1TestSuite) TestGetConfigSchema() {
	b := NewBacktestEngineV1(logger.NewNopLogger())
	suite.Require().NoError(b.Initialize(""))

	schema, err := b.GetConfigSchema()
	suite.Require().NoError(err)
	suite.Contains(schema, "initial_capital")
}
