package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TrendFilteredRSIConfig holds the indicator periods, RSI thresholds and
// the ATR stop multiple of the strategy.
type TrendFilteredRSIConfig struct {
	RSIPeriod      int     `yaml:"rsi_period" validate:"gt=0"`
	EMAPeriod      int     `yaml:"ema_period" validate:"gt=0"`
	ATRPeriod      int     `yaml:"atr_period" validate:"gt=0"`
	Oversold       float64 `yaml:"oversold" validate:"gte=0,lte=100"`
	Overbought     float64 `yaml:"overbought" validate:"gte=0,lte=100"`
	ExitLevel      float64 `yaml:"exit_level" validate:"gte=0,lte=100"`
	StopMultiplier float64 `yaml:"stop_loss_atr_multiplier" validate:"gt=0"`
}

// TrendFilteredRSI gates RSI mean-reversion entries behind an EMA trend
// filter and protects open positions with an ATR-based stop fixed at entry:
// longs only in an uptrend (close above the long EMA), shorts only in a
// downtrend. Exits fire when RSI crosses the exit level or when the close
// breaches the stop.
type TrendFilteredRSI struct {
	config TrendFilteredRSIConfig
}

// NewTrendFilteredRSI creates the strategy with its standard parameters
// (RSI 14, EMA 200, ATR 14, entries at 30/70, exit at 50, 2x ATR stop).
func NewTrendFilteredRSI() *TrendFilteredRSI {
	return &TrendFilteredRSI{
		config: TrendFilteredRSIConfig{
			RSIPeriod:      14,
			EMAPeriod:      200,
			ATRPeriod:      14,
			Oversold:       30,
			Overbought:     70,
			ExitLevel:      50,
			StopMultiplier: 2.0,
		},
	}
}

// Name implements Strategy.
func (s *TrendFilteredRSI) Name() string {
	return "trend_filtered_rsi"
}

// Initialize implements Strategy.
func (s *TrendFilteredRSI) Initialize(config string) error {
	if config == "" {
		return nil
	}

	if err := yaml.Unmarshal([]byte(config), &s.config); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse trend_filtered_rsi config", err)
	}

	if err := validator.New().Struct(s.config); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid trend_filtered_rsi config", err)
	}

	if s.config.Oversold >= s.config.Overbought {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"oversold threshold %.1f must be below overbought threshold %.1f",
			s.config.Oversold, s.config.Overbought)
	}

	return nil
}

// OnBar implements Strategy.
func (s *TrendFilteredRSI) OnBar(ctx Context, index int) (types.OrderIntent, error) {
	rsi, err := ctx.Indicators.Compute(ctx.Series, types.IndicatorTypeRSI, indicatorParams(s.config.RSIPeriod))
	if err != nil {
		return types.IntentHold, err
	}

	emaLong, err := ctx.Indicators.Compute(ctx.Series, types.IndicatorTypeEMA, indicatorParams(s.config.EMAPeriod))
	if err != nil {
		return types.IntentHold, err
	}

	atr, err := ctx.Indicators.Compute(ctx.Series, types.IndicatorTypeATR, indicatorParams(s.config.ATRPeriod))
	if err != nil {
		return types.IntentHold, err
	}

	// The seeded EMA is numerically defined from the first bar, but it only
	// means anything as a trend filter once a full period has passed.
	warmup := max(s.config.RSIPeriod, max(s.config.EMAPeriod, s.config.ATRPeriod))
	if index+1 < warmup {
		return types.IntentHold, nil
	}

	if !rsi.Valid(index) || !emaLong.Valid(index) || !atr.Valid(index) || atr[index] <= 0 {
		return types.IntentHold, nil
	}

	bar, err := ctx.Series.Bar(index)
	if err != nil {
		return types.IntentHold, err
	}

	close := bar.Close

	if ctx.Account.IsFlat() {
		uptrend := close > emaLong[index]
		downtrend := close < emaLong[index]

		if uptrend && rsi[index] < s.config.Oversold {
			return types.IntentBuy, nil
		}

		if downtrend && rsi[index] > s.config.Overbought {
			return types.IntentSell, nil
		}

		return types.IntentHold, nil
	}

	position := ctx.Account.Position.Unwrap()

	// The stop is anchored to the ATR at entry, so it stays fixed for the
	// lifetime of the position.
	if !atr.Valid(position.EntryIndex) {
		return types.IntentHold, nil
	}

	stopDistance := s.config.StopMultiplier * atr[position.EntryIndex]

	if position.Direction == types.DirectionLong {
		if close <= position.EntryPrice-stopDistance {
			return types.IntentCloseLong, nil
		}

		if crossedAbove(rsi, index, s.config.ExitLevel) {
			return types.IntentCloseLong, nil
		}

		return types.IntentHold, nil
	}

	if close >= position.EntryPrice+stopDistance {
		return types.IntentCloseShort, nil
	}

	if crossedBelow(rsi, index, s.config.ExitLevel) {
		return types.IntentCloseShort, nil
	}

	return types.IntentHold, nil
}

func crossedAbove(values types.IndicatorSeries, index int, level float64) bool {
	return index >= 1 && values.Valid(index-1) && values.Valid(index) &&
		values[index-1] <= level && values[index] > level
}

func crossedBelow(values types.IndicatorSeries, index int, level float64) bool {
	return index >= 1 && values.Valid(index-1) && values.Valid(index) &&
		values[index-1] >= level && values[index] < level
}
