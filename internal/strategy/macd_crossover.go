package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/barsim/internal/indicator"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MACDCrossoverConfig holds the EMA periods of the MACD and signal lines.
type MACDCrossoverConfig struct {
	FastPeriod   int `yaml:"fast_period" validate:"gt=0"`
	SlowPeriod   int `yaml:"slow_period" validate:"gt=0"`
	SignalPeriod int `yaml:"signal_period" validate:"gt=0"`
}

// MACDCrossover trades MACD/signal line crossovers: long on a bullish cross,
// short on a bearish cross, and exits on the opposite cross.
type MACDCrossover struct {
	config MACDCrossoverConfig
}

// NewMACDCrossover creates the strategy with the conventional 12/26/9 periods.
func NewMACDCrossover() *MACDCrossover {
	return &MACDCrossover{
		config: MACDCrossoverConfig{
			FastPeriod:   12,
			SlowPeriod:   26,
			SignalPeriod: 9,
		},
	}
}

// Name implements Strategy.
func (s *MACDCrossover) Name() string {
	return "macd_crossover"
}

// Initialize implements Strategy.
func (s *MACDCrossover) Initialize(config string) error {
	if config == "" {
		return nil
	}

	if err := yaml.Unmarshal([]byte(config), &s.config); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse macd_crossover config", err)
	}

	if err := validator.New().Struct(s.config); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid macd_crossover config", err)
	}

	if s.config.FastPeriod >= s.config.SlowPeriod {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"fast period %d must be below slow period %d", s.config.FastPeriod, s.config.SlowPeriod)
	}

	return nil
}

// OnBar implements Strategy.
func (s *MACDCrossover) OnBar(ctx Context, index int) (types.OrderIntent, error) {
	params := indicator.Params{
		"fast_period":   float64(s.config.FastPeriod),
		"slow_period":   float64(s.config.SlowPeriod),
		"signal_period": float64(s.config.SignalPeriod),
	}

	line, err := ctx.Indicators.Compute(ctx.Series, types.IndicatorTypeMACD, params)
	if err != nil {
		return types.IntentHold, err
	}

	signal, err := ctx.Indicators.Compute(ctx.Series, types.IndicatorTypeMACDSignal, params)
	if err != nil {
		return types.IntentHold, err
	}

	// A crossover needs two consecutive defined bars.
	if index < 1 || !line.Valid(index-1) || !line.Valid(index) ||
		!signal.Valid(index-1) || !signal.Valid(index) {
		return types.IntentHold, nil
	}

	bullish := line[index-1] < signal[index-1] && line[index] > signal[index]
	bearish := line[index-1] > signal[index-1] && line[index] < signal[index]

	if ctx.Account.IsFlat() {
		if bullish {
			return types.IntentBuy, nil
		}

		if bearish {
			return types.IntentSell, nil
		}

		return types.IntentHold, nil
	}

	position := ctx.Account.Position.Unwrap()

	if position.Direction == types.DirectionLong && bearish {
		return types.IntentCloseLong, nil
	}

	if position.Direction == types.DirectionShort && bullish {
		return types.IntentCloseShort, nil
	}

	return types.IntentHold, nil
}
