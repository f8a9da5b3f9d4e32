package indicator

import (
	"github.com/rxtech-lab/barsim/internal/series"
	"github.com/rxtech-lab/barsim/internal/types"
)

// RSI computes the Relative Strength Index over close prices using Wilder's
// smoothing: average gain/loss seeded by a simple mean over `period` bars,
// then exponentially smoothed. Values at indices below `period` are
// undefined; a series shorter than period+1 bars yields an all-undefined
// result rather than an error.
//
// Parameters: period (positive integer).
func RSI(s *series.Series, params Params) (types.IndicatorSeries, error) {
	period, err := params.Int("period")
	if err != nil {
		return nil, err
	}

	closes := s.Closes()
	out := types.NewIndicatorSeries(len(closes))

	if len(closes) <= period {
		return out, nil
	}

	var avgGain, avgLoss float64

	// Seed with the simple average over the first `period` changes.
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]

		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}

	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	// A run of identical closes has neither gains nor losses; the oscillator
	// sits at its midpoint.
	if avgGain == 0 && avgLoss == 0 {
		return 50
	}

	if avgLoss == 0 {
		return 100
	}

	if avgGain == 0 {
		return 0
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
