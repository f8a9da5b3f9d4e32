package indicator

import (
	"math"

	"github.com/rxtech-lab/barsim/internal/series"
	"github.com/rxtech-lab/barsim/internal/types"
)

// ATR computes the Average True Range with Wilder's smoothing, seeded by the
// simple mean of the first `period` true ranges. Values at indices below
// `period` are undefined.
//
// Parameters: period (positive integer).
func ATR(s *series.Series, params Params) (types.IndicatorSeries, error) {
	period, err := params.Int("period")
	if err != nil {
		return nil, err
	}

	highs := s.Highs()
	lows := s.Lows()
	closes := s.Closes()
	out := types.NewIndicatorSeries(len(closes))

	if len(closes) <= period {
		return out, nil
	}

	var avg float64

	for i := 1; i <= period; i++ {
		avg += trueRange(highs[i], lows[i], closes[i-1])
	}

	avg /= float64(period)
	out[period] = avg

	for i := period + 1; i < len(closes); i++ {
		tr := trueRange(highs[i], lows[i], closes[i-1])
		avg = (avg*float64(period-1) + tr) / float64(period)
		out[i] = avg
	}

	return out, nil
}

func trueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}
