package indicator

import (
	"github.com/rxtech-lab/barsim/internal/series"
	"github.com/rxtech-lab/barsim/internal/types"
)

// MACD computes the MACD line: EMA(close, fast_period) - EMA(close, slow_period).
//
// Parameters: fast_period, slow_period (positive integers).
func MACD(s *series.Series, params Params) (types.IndicatorSeries, error) {
	return macdLine(s, params)
}

// MACDSignal computes the signal line: EMA(MACD line, signal_period).
//
// Parameters: fast_period, slow_period, signal_period (positive integers).
func MACDSignal(s *series.Series, params Params) (types.IndicatorSeries, error) {
	signalPeriod, err := params.Int("signal_period")
	if err != nil {
		return nil, err
	}

	line, err := macdLine(s, params)
	if err != nil {
		return nil, err
	}

	return types.IndicatorSeries(ema(line, signalPeriod)), nil
}

func macdLine(s *series.Series, params Params) (types.IndicatorSeries, error) {
	fastPeriod, err := params.Int("fast_period")
	if err != nil {
		return nil, err
	}

	slowPeriod, err := params.Int("slow_period")
	if err != nil {
		return nil, err
	}

	closes := s.Closes()
	fast := ema(closes, fastPeriod)
	slow := ema(closes, slowPeriod)

	line := make(types.IndicatorSeries, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}

	return line, nil
}
