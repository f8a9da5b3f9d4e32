// Package series holds the immutable, time-ordered OHLC series a backtest
// replays. A Series is validated once at load time and read-only afterwards;
// bars are referenced by index everywhere else in the engine.
package series

import (
	"github.com/google/uuid"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
)

// Series is an ordered sequence of bars with strictly increasing timestamps.
type Series struct {
	id   string
	bars []types.Bar
}

// Load validates and copies the given bars into a new Series. It fails when
// the input is empty, timestamps are not strictly increasing, or any bar
// carries a non-finite or negative price.
func Load(bars []types.Bar) (*Series, error) {
	if len(bars) < 1 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "series requires at least one bar")
	}

	copied := make([]types.Bar, len(bars))
	copy(copied, bars)

	for i, bar := range copied {
		if !bar.IsValid() {
			return nil, errors.Newf(errors.ErrCodeInvalidBar, "bar %d has non-finite or negative prices", i)
		}

		if i > 0 && !copied[i-1].Time.Before(bar.Time) {
			return nil, errors.Newf(errors.ErrCodeNonMonotonicSeries,
				"bar %d timestamp %s does not increase over bar %d timestamp %s",
				i, bar.Time, i-1, copied[i-1].Time)
		}
	}

	return &Series{
		id:   uuid.New().String(),
		bars: copied,
	}, nil
}

// ID returns the identity of this series. Indicator caches key on it, so two
// loads of identical bars are still distinct series.
func (s *Series) ID() string {
	return s.id
}

// Len returns the number of bars.
func (s *Series) Len() int {
	return len(s.bars)
}

// Bar returns the bar at index i.
func (s *Series) Bar(i int) (types.Bar, error) {
	if i < 0 || i >= len(s.bars) {
		return types.Bar{}, errors.Newf(errors.ErrCodeIndexOutOfRange,
			"bar index %d out of range [0, %d)", i, len(s.bars))
	}

	return s.bars[i], nil
}

// LastBar returns the final bar of the series.
func (s *Series) LastBar() types.Bar {
	return s.bars[len(s.bars)-1]
}

// Closes returns a copy of all close prices in bar order.
func (s *Series) Closes() []float64 {
	return s.column(func(b types.Bar) float64 { return b.Close })
}

// Highs returns a copy of all high prices in bar order.
func (s *Series) Highs() []float64 {
	return s.column(func(b types.Bar) float64 { return b.High })
}

// Lows returns a copy of all low prices in bar order.
func (s *Series) Lows() []float64 {
	return s.column(func(b types.Bar) float64 { return b.Low })
}

func (s *Series) column(pick func(types.Bar) float64) []float64 {
	values := make([]float64, len(s.bars))
	for i, bar := range s.bars {
		values[i] = pick(bar)
	}

	return values
}
