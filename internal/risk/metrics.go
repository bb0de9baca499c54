// Package risk computes volatility, drawdown, Sharpe, value-at-risk, and a
// composite risk score from price series. The same metric formulas are reused
// by the backtest engine on equity curves.
package risk

import (
	"math"
	"sort"
)

const (
	// TradingDays is the annualization factor for daily data.
	TradingDays = 252

	// RiskFreeRate is the annual risk-free rate used in Sharpe calculations.
	RiskFreeRate = 0.02
)

// Returns computes bar-over-bar percentage changes of a value series. The
// result has len(values)-1 entries; zero-valued predecessors yield a zero
// return rather than a non-finite value.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (values[i]-values[i-1])/values[i-1])
	}
	return out
}

// mean returns the arithmetic mean, 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev returns the sample standard deviation (n-1 denominator), 0 when
// fewer than two samples are available.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// AnnualizedVolatility returns the sample standard deviation of the trailing
// window of daily returns, annualized by sqrt(252), as a percentage. A
// window of 0 (or one larger than the series) uses all available returns.
func AnnualizedVolatility(returns []float64, window int) float64 {
	if window <= 0 || window > len(returns) {
		window = len(returns)
	}
	tail := returns[len(returns)-window:]
	return stddev(tail) * math.Sqrt(TradingDays) * 100
}

// SharpeRatio returns annualized excess return per unit of annualized
// volatility over the full return series. Defined as 0 when volatility is 0.
func SharpeRatio(returns []float64) float64 {
	vol := stddev(returns) * math.Sqrt(TradingDays)
	if vol == 0 {
		return 0
	}
	excess := mean(returns)*TradingDays - RiskFreeRate
	return excess / vol
}

// MaxDrawdown returns the worst peak-to-trough decline of the cumulative
// return series implied by the daily returns, as a percentage. The result is
// always <= 0.
func MaxDrawdown(returns []float64) float64 {
	cum := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if dd := (cum - peak) / peak * 100; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Percentile returns the p-th percentile (0-100) of xs using linear
// interpolation between closest ranks, matching numpy's default behavior.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// finite reports whether every argument is a finite number.
func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
