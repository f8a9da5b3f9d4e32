package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RSIMeanReversionConfig holds the tunable thresholds of the strategy.
type RSIMeanReversionConfig struct {
	RSIPeriod  int     `yaml:"rsi_period" validate:"gt=0"`
	Oversold   float64 `yaml:"oversold" validate:"gte=0,lte=100"`
	Overbought float64 `yaml:"overbought" validate:"gte=0,lte=100"`
	ExitLevel  float64 `yaml:"exit_level" validate:"gte=0,lte=100"`
}

// RSIMeanReversion fades RSI extremes: it buys when the oscillator drops
// below the oversold threshold, sells short above the overbought threshold,
// and exits either side once RSI reverts past the exit level.
type RSIMeanReversion struct {
	config RSIMeanReversionConfig
}

// NewRSIMeanReversion creates the strategy with its standard thresholds
// (period 14, entries at 30/70, exit at 50).
func NewRSIMeanReversion() *RSIMeanReversion {
	return &RSIMeanReversion{
		config: RSIMeanReversionConfig{
			RSIPeriod:  14,
			Oversold:   30,
			Overbought: 70,
			ExitLevel:  50,
		},
	}
}

// Name implements Strategy.
func (s *RSIMeanReversion) Name() string {
	return "rsi_mean_reversion"
}

// Initialize implements Strategy. The YAML config overrides defaults field
// by field.
func (s *RSIMeanReversion) Initialize(config string) error {
	if config == "" {
		return nil
	}

	if err := yaml.Unmarshal([]byte(config), &s.config); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse rsi_mean_reversion config", err)
	}

	if err := validator.New().Struct(s.config); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid rsi_mean_reversion config", err)
	}

	if s.config.Oversold >= s.config.Overbought {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"oversold threshold %.1f must be below overbought threshold %.1f",
			s.config.Oversold, s.config.Overbought)
	}

	return nil
}

// OnBar implements Strategy.
func (s *RSIMeanReversion) OnBar(ctx Context, index int) (types.OrderIntent, error) {
	rsi, err := ctx.Indicators.Compute(ctx.Series, types.IndicatorTypeRSI, indicatorParams(s.config.RSIPeriod))
	if err != nil {
		return types.IntentHold, err
	}

	// Warm-up bars carry no signal. The check is explicit so an undefined
	// value can never satisfy a threshold comparison.
	if !rsi.Valid(index) {
		return types.IntentHold, nil
	}

	value := rsi[index]

	if ctx.Account.IsFlat() {
		if value < s.config.Oversold {
			return types.IntentBuy, nil
		}

		if value > s.config.Overbought {
			return types.IntentSell, nil
		}

		return types.IntentHold, nil
	}

	position := ctx.Account.Position.Unwrap()

	if position.Direction == types.DirectionLong && value > s.config.ExitLevel {
		return types.IntentCloseLong, nil
	}

	if position.Direction == types.DirectionShort && value < s.config.ExitLevel {
		return types.IntentCloseShort, nil
	}

	return types.IntentHold, nil
}
