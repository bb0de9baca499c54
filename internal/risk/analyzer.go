package risk

import (
	"errors"
	"fmt"
	"math"

	"quantlab/internal/domain"
)

var (
	errNoData         = errors.New("no bar data")
	errInvalidPrice   = errors.New("current price must be positive")
	errNonFiniteValue = errors.New("non-finite metric value")
)

// Tolerance adjusts the composite risk score for the caller's appetite.
type Tolerance string

// The closed set of risk tolerances.
const (
	ToleranceLow    Tolerance = "Low"
	ToleranceMedium Tolerance = "Medium"
	ToleranceHigh   Tolerance = "High"
)

// volatilityWindow is the trailing bar count used for point-in-time
// volatility. Shorter series fall back to all available returns.
const volatilityWindow = 30

// Analyze derives a RiskProfile from the frame's close series. Beta is
// reported as 1.0; use BetaAgainst when a market series is available.
func Analyze(frame *domain.Frame, currentPrice float64, tolerance Tolerance) (domain.RiskProfile, error) {
	if frame == nil || frame.Len() == 0 {
		return domain.RiskProfile{}, errNoData
	}
	if currentPrice <= 0 {
		return domain.RiskProfile{}, errInvalidPrice
	}

	returns := Returns(frame.Closes())

	p := domain.RiskProfile{
		Volatility:  AnnualizedVolatility(returns, volatilityWindow),
		Beta:        1.0,
		MaxDrawdown: MaxDrawdown(returns),
		SharpeRatio: SharpeRatio(returns),
		ValueAtRisk: valueAtRisk(returns, currentPrice),
	}
	p.RiskScore = riskScore(p.Volatility, p.MaxDrawdown, tolerance)

	if !finite(p.RiskScore, p.Volatility, p.Beta, p.MaxDrawdown, p.SharpeRatio, p.ValueAtRisk) {
		return domain.RiskProfile{}, errNonFiniteValue
	}
	return p, nil
}

// BetaAgainst computes beta of the frame's returns against a market return
// series. Series are right-aligned when lengths differ; a zero-variance
// market yields 1.0.
func BetaAgainst(frame *domain.Frame, marketReturns []float64) (float64, error) {
	if frame == nil || frame.Len() == 0 {
		return 0, errNoData
	}
	stock := Returns(frame.Closes())
	if len(stock) == 0 || len(marketReturns) == 0 {
		return 1.0, nil
	}

	n := len(stock)
	if len(marketReturns) < n {
		n = len(marketReturns)
	}
	stock = stock[len(stock)-n:]
	market := marketReturns[len(marketReturns)-n:]

	ms, mm := mean(stock), mean(market)
	var cov, varM float64
	for i := 0; i < n; i++ {
		cov += (stock[i] - ms) * (market[i] - mm)
		varM += (market[i] - mm) * (market[i] - mm)
	}
	if varM == 0 {
		return 1.0, nil
	}
	beta := cov / varM
	if !finite(beta) {
		return 0, fmt.Errorf("beta: %w", errNonFiniteValue)
	}
	return beta, nil
}

// valueAtRisk is the 95% one-day value at risk in absolute dollars: the
// current price scaled by the 5th percentile of the daily return
// distribution.
func valueAtRisk(returns []float64, currentPrice float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return math.Abs(currentPrice * Percentile(returns, 5))
}

// riskScore combines volatility and drawdown into a 1-10 score. Low
// tolerance inflates the score by 1.2x, high tolerance deflates it by 0.8x.
func riskScore(volatility, maxDrawdown float64, tolerance Tolerance) float64 {
	base := volatility*0.6 + math.Abs(maxDrawdown)*0.4

	switch tolerance {
	case ToleranceLow:
		base *= 1.2
	case ToleranceHigh:
		base *= 0.8
	}

	return math.Min(10, math.Max(1, base))
}
