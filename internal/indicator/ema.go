package indicator

import (
	"github.com/rxtech-lab/barsim/internal/series"
	"github.com/rxtech-lab/barsim/internal/types"
)

// EMA computes an exponential moving average of close prices, seeded with
// the first close and alpha = 2/(period+1). Every index is defined.
//
// Parameters: period (positive integer).
func EMA(s *series.Series, params Params) (types.IndicatorSeries, error) {
	period, err := params.Int("period")
	if err != nil {
		return nil, err
	}

	return types.IndicatorSeries(ema(s.Closes(), period)), nil
}
