package types

import "time"

// EquityPoint is a single mark-to-market valuation of the account.
type EquityPoint struct {
	Time   time.Time `csv:"time" yaml:"time"`
	Equity float64   `csv:"equity" yaml:"equity"`
}

// EquityCurve holds one EquityPoint per bar, in bar order.
type EquityCurve []EquityPoint

// Final returns the last equity value, or the fallback when the curve is empty.
func (c EquityCurve) Final(fallback float64) float64 {
	if len(c) == 0 {
		return fallback
	}

	return c[len(c)-1].Equity
}
