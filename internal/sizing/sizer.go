// Package sizing derives trade sizes from portfolio value, risk budget, and
// stop distance. All functions are pure; the position cap is applied
// silently, which means the realized risk can come in under the requested
// risk percentage when the cap binds.
package sizing

import (
	"errors"
	"math"

	"quantlab/internal/domain"
)

var (
	errInvalidPortfolio = errors.New("portfolio value must be positive")
	errInvalidEntry     = errors.New("entry price must be positive")
)

// DefaultMaxPositionPct caps any single position at this percentage of the
// portfolio unless the caller overrides it.
const DefaultMaxPositionPct = 20.0

// RiskBased sizes a position so that the distance to the stop loses at most
// riskPct percent of the portfolio. The result is capped at maxPositionPct
// of the portfolio; when the cap binds, shares are recomputed from the cap
// and the realized risk drops below the request. A zero stop distance sizes
// to zero shares. maxPositionPct <= 0 selects the default cap.
func RiskBased(portfolio, entry, stop, riskPct, maxPositionPct float64) (domain.SizingRecommendation, error) {
	if portfolio <= 0 {
		return domain.SizingRecommendation{}, errInvalidPortfolio
	}
	if entry <= 0 {
		return domain.SizingRecommendation{}, errInvalidEntry
	}
	if maxPositionPct <= 0 {
		maxPositionPct = DefaultMaxPositionPct
	}

	riskPerShare := math.Abs(entry - stop)
	if riskPerShare == 0 {
		return domain.SizingRecommendation{}, nil
	}

	riskAmount := portfolio * riskPct / 100
	shares := riskAmount / riskPerShare

	maxValue := portfolio * maxPositionPct / 100
	if shares*entry > maxValue {
		shares = maxValue / entry
	}

	n := int(shares)
	return domain.SizingRecommendation{Shares: n, Value: float64(n) * entry}, nil
}

// HalfKelly returns the half-Kelly allocation as a percentage of portfolio.
// The full Kelly fraction is clamped to [0, 25%] before halving. winRate is
// a probability in [0, 1]; a zero average loss yields 0.
func HalfKelly(winRate, avgWin, avgLoss float64) float64 {
	if winRate < 0 || winRate > 1 || avgLoss == 0 {
		return 0
	}
	ratio := math.Abs(avgWin / avgLoss)
	if ratio == 0 {
		return 0
	}
	kelly := (winRate*ratio - (1 - winRate)) / ratio
	kelly = math.Max(0, math.Min(kelly, 0.25))
	return kelly * 100 / 2
}

// FixedFractional returns the dollar risk budget for one trade: a fixed
// fraction of the portfolio.
func FixedFractional(portfolio, riskPct float64) float64 {
	return portfolio * riskPct / 100
}

// volatilityTarget is the annualized volatility (percent) a volatility-scaled
// position is normalized against.
const volatilityTarget = 15.0

// VolatilityTarget returns a position value inversely scaled to realized
// volatility against a 15% target. Non-positive volatility falls back to 10%
// of the portfolio.
func VolatilityTarget(portfolio, volatility, maxPositionPct float64) float64 {
	if maxPositionPct <= 0 {
		maxPositionPct = DefaultMaxPositionPct
	}
	if volatility <= 0 {
		return portfolio * 0.1
	}
	fraction := math.Min(volatilityTarget/volatility*0.1, maxPositionPct/100)
	return portfolio * fraction
}

// EqualWeight splits the portfolio evenly across n positions, capped per
// position.
func EqualWeight(portfolio float64, n int, maxPositionPct float64) float64 {
	if n <= 0 {
		return 0
	}
	if maxPositionPct <= 0 {
		maxPositionPct = DefaultMaxPositionPct
	}
	size := portfolio / float64(n)
	return math.Min(size, portfolio*maxPositionPct/100)
}

// RiskParity allocates across a basket by inverse volatility, capping each
// leg. Zero or negative volatilities receive no allocation. An empty or
// all-zero basket returns nil.
func RiskParity(portfolio float64, volatilities []float64, maxPositionPct float64) []float64 {
	if maxPositionPct <= 0 {
		maxPositionPct = DefaultMaxPositionPct
	}
	var totalInverse float64
	inverse := make([]float64, len(volatilities))
	for i, v := range volatilities {
		if v > 0 {
			inverse[i] = 1 / v
			totalInverse += inverse[i]
		}
	}
	if totalInverse == 0 {
		return nil
	}

	maxValue := portfolio * maxPositionPct / 100
	out := make([]float64, len(volatilities))
	for i := range inverse {
		out[i] = math.Min(portfolio*inverse[i]/totalInverse, maxValue)
	}
	return out
}
