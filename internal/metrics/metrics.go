// Package metrics computes risk and return statistics from a realized
// equity curve and trade log. Every function is a pure, deterministic
// function of its inputs; numeric edge cases resolve to NaN or +Inf
// sentinels rather than errors.
package metrics

import (
	"math"

	"github.com/rxtech-lab/barsim/internal/types"
)

// DefaultAnnualization is the factor for daily bars.
const DefaultAnnualization = 252

// Compute assembles the full statistics schema from an equity curve and its
// trade log.
func Compute(curve types.EquityCurve, trades []types.Trade, annualization float64) types.PerformanceStats {
	returns := Returns(curve)
	maxDrawdown := MaxDrawdown(curve)
	cagr := CAGR(curve, annualization)

	return types.PerformanceStats{
		WinRate:     WinRate(trades),
		Sharpe:      Sharpe(returns, annualization),
		Sortino:     Sortino(returns, annualization),
		MaxDrawdown: maxDrawdown,
		CAGR:        cagr,
		Calmar:      Calmar(cagr, maxDrawdown),
	}
}

// WinRate is the fraction of trades with positive P&L, or 0 with no trades.
func WinRate(trades []types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}

	wins := 0

	for _, trade := range trades {
		if trade.PnL > 0 {
			wins++
		}
	}

	return float64(wins) / float64(len(trades))
}

// Returns is the simple per-bar percentage change of equity.
func Returns(curve types.EquityCurve) []float64 {
	if len(curve) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(curve)-1)

	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			returns = append(returns, math.NaN())

			continue
		}

		returns = append(returns, (curve[i].Equity-prev)/prev)
	}

	return returns
}

// Sharpe is mean(returns)/stdev(returns) scaled by sqrt(annualization).
// NaN when there are no returns or the returns have zero variance.
func Sharpe(returns []float64, annualization float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}

	sd := stdev(returns)
	if sd == 0 {
		return math.NaN()
	}

	return mean(returns) / sd * math.Sqrt(annualization)
}

// Sortino is mean(returns)/stdev(negative returns) scaled by
// sqrt(annualization). +Inf when no negative returns exist (and the mean is
// non-negative), NaN when there are no returns at all.
func Sortino(returns []float64, annualization float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}

	var downside []float64

	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	if len(downside) == 0 {
		return math.Inf(1)
	}

	sd := stdev(downside)
	if sd == 0 {
		return math.Inf(1)
	}

	return mean(returns) / sd * math.Sqrt(annualization)
}

// MaxDrawdown is the largest fractional decline from a running equity peak.
func MaxDrawdown(curve types.EquityCurve) float64 {
	var peak, maxDD float64

	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}

		if peak > 0 {
			dd := (peak - point.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// CAGR is the geometric annualized return:
// (final/initial)^(annualization/bars) - 1. NaN when the curve is empty or
// starts at or below zero.
func CAGR(curve types.EquityCurve, annualization float64) float64 {
	if len(curve) == 0 || curve[0].Equity <= 0 {
		return math.NaN()
	}

	growth := curve.Final(curve[0].Equity) / curve[0].Equity
	if growth <= 0 {
		return math.NaN()
	}

	return math.Pow(growth, annualization/float64(len(curve))) - 1
}

// Calmar is CAGR divided by max drawdown, NaN when drawdown is zero.
func Calmar(cagr, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return math.NaN()
	}

	return cagr / maxDrawdown
}

func mean(values []float64) float64 {
	var sum float64

	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// stdev is the population standard deviation. The subset selections used
// here (all returns, negative returns) can legitimately hold one element,
// where a sample estimator would be undefined.
func stdev(values []float64) float64 {
	m := mean(values)

	var sum float64

	for _, v := range values {
		d := v - m
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(values)))
}
