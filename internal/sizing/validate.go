package sizing

import "fmt"

// Validation carries non-blocking findings about a proposed position. Unlike
// stop validation, sizing findings never reject a trade outright; oversize
// positions are flagged as errors but the caller decides.
type Validation struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate inspects a proposed position value against the portfolio. It
// flags positions under 1% as possibly uneconomical, over 15% as
// concentration risk, and aggregate exposure over 80% as a low cash-reserve
// risk. openPositions is the count of positions the exposure check assumes
// at this size.
func Validate(portfolio, positionValue float64, openPositions int, maxPositionPct float64) Validation {
	v := Validation{Valid: true}
	if portfolio <= 0 {
		v.Valid = false
		v.Errors = append(v.Errors, "portfolio value must be positive")
		return v
	}
	if maxPositionPct <= 0 {
		maxPositionPct = DefaultMaxPositionPct
	}
	if openPositions < 1 {
		openPositions = 1
	}

	pct := positionValue / portfolio * 100

	if pct > maxPositionPct {
		v.Valid = false
		v.Errors = append(v.Errors, fmt.Sprintf(
			"position size (%.1f%%) exceeds maximum allowed (%.0f%%)", pct, maxPositionPct))
	}

	if pct > 15 {
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"large position size (%.1f%%), consider diversification", pct))
	}
	if pct < 1 {
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"very small position (%.2f%%), may not be worth transaction costs", pct))
	}

	exposurePct := positionValue * float64(openPositions) / portfolio * 100
	if exposurePct > 80 {
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"high total market exposure (%.1f%%), consider keeping cash reserves", exposurePct))
	}

	return v
}

// ScaleEntry is one staggered entry of a scaled accumulation plan.
type ScaleEntry struct {
	Entry       int     `json:"entry_number"`
	Shares      int     `json:"shares"`
	TargetPrice float64 `json:"target_price"`
	Value       float64 `json:"value"`
	PctOfTotal  float64 `json:"percentage_of_total"`
}

// ScalePlan splits a risk-based position across n staggered entries, each 2%
// below the previous, with the final entry absorbing the rounding remainder.
// Returns nil when the position sizes to zero shares.
func ScalePlan(portfolio, entry, stop, riskPct, maxPositionPct float64, n int) ([]ScaleEntry, error) {
	if n <= 0 {
		n = 3
	}
	rec, err := RiskBased(portfolio, entry, stop, riskPct, maxPositionPct)
	if err != nil {
		return nil, err
	}
	if rec.Shares == 0 {
		return nil, nil
	}

	perEntry := rec.Shares / n
	plan := make([]ScaleEntry, 0, n)
	for i := 0; i < n; i++ {
		shares := perEntry
		if i == n-1 {
			shares = rec.Shares - perEntry*(n-1)
		}
		price := entry * (1 - float64(i)*0.02)
		plan = append(plan, ScaleEntry{
			Entry:       i + 1,
			Shares:      shares,
			TargetPrice: price,
			Value:       float64(shares) * price,
			PctOfTotal:  float64(shares) / float64(rec.Shares) * 100,
		})
	}
	return plan, nil
}
