package types

import "math"

type IndicatorType string

const (
	IndicatorTypeRSI        IndicatorType = "rsi"
	IndicatorTypeEMA        IndicatorType = "ema"
	IndicatorTypeMACD       IndicatorType = "macd"
	IndicatorTypeMACDSignal IndicatorType = "macd_signal"
	IndicatorTypeATR        IndicatorType = "atr"
)

// IndicatorSeries maps bar index to a computed value. Warm-up indices hold
// NaN; callers must check Valid before comparing values.
type IndicatorSeries []float64

// NewIndicatorSeries returns a series of the given length with every value
// undefined.
func NewIndicatorSeries(length int) IndicatorSeries {
	s := make(IndicatorSeries, length)
	for i := range s {
		s[i] = math.NaN()
	}

	return s
}

// Len returns the number of entries, defined or not.
func (s IndicatorSeries) Len() int {
	return len(s)
}

// Valid reports whether the value at index i is defined.
func (s IndicatorSeries) Valid(i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}
