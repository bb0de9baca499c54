package stops

import "math"

// TakeProfitMethod selects how a take-profit level is derived.
type TakeProfitMethod string

// The closed set of take-profit methods.
const (
	TargetRatio      TakeProfitMethod = "ratio"
	TargetFibonacci  TakeProfitMethod = "fibonacci"
	TargetPercentage TakeProfitMethod = "percentage"
)

// Default take-profit tuning.
const (
	DefaultTakeProfitPct   = 10.0
	DefaultRiskRewardRatio = 2.0
	fibExtension           = 1.618
)

// TakeProfit derives a take-profit price above entry. Ratio and fibonacci
// methods project the entry-to-stop risk upward; when the stop is at or
// above entry the risk distance falls back to the default stop percentage.
// riskReward <= 0 selects the 2.0 default.
func TakeProfit(entry, stop float64, method TakeProfitMethod, riskReward float64) (float64, error) {
	if entry <= 0 {
		return 0, errInvalidEntry
	}
	if riskReward <= 0 {
		riskReward = DefaultRiskRewardRatio
	}

	riskAmt := entry - stop
	if riskAmt <= 0 {
		riskAmt = entry * DefaultStopPct / 100
	}

	var tp float64
	switch method {
	case TargetRatio:
		tp = entry + riskAmt*riskReward
	case TargetFibonacci:
		tp = entry + riskAmt*fibExtension
	default:
		tp = entry * (1 + DefaultTakeProfitPct/100)
	}

	if math.IsNaN(tp) || math.IsInf(tp, 0) {
		return 0, errNonFiniteLevel
	}
	return round2(tp), nil
}

// ExitTarget is one leg of a multi-target scaling exit plan.
type ExitTarget struct {
	Number      int     `json:"exit_number"`
	TargetPrice float64 `json:"target_price"`
	PositionPct float64 `json:"position_percentage"`
	RiskReward  float64 `json:"risk_reward_ratio"`
	Description string  `json:"description"`
}

// ExitPlan builds n scaling exit targets at risk-reward multiples 1.5x,
// 3.0x, 4.5x and so on. Position share is split evenly with the final target
// absorbing the rounding remainder. A stop at or above entry is an error.
func ExitPlan(entry, stop float64, n int) ([]ExitTarget, error) {
	if entry <= 0 {
		return nil, errInvalidEntry
	}
	riskAmt := entry - stop
	if riskAmt <= 0 {
		return nil, errStopAboveEntry
	}
	if n <= 0 {
		n = 3
	}

	perTarget := math.Round(100.0/float64(n)*10) / 10
	plan := make([]ExitTarget, 0, n)
	for i := 1; i <= n; i++ {
		pct := perTarget
		if i == n {
			pct = 100 - perTarget*float64(n-1)
		}
		plan = append(plan, ExitTarget{
			Number:      i,
			TargetPrice: round2(entry + riskAmt*float64(i)*1.5),
			PositionPct: math.Round(pct*10) / 10,
			RiskReward:  float64(i) * 1.5,
			Description: exitDescription(i, n),
		})
	}
	return plan, nil
}

func exitDescription(i, n int) string {
	switch {
	case i == 1:
		return "First target - take initial profits, de-risk position"
	case i == n:
		return "Final target - let winners run"
	default:
		return "Intermediate target - scale out position"
	}
}

// Breakeven returns the price at which closing a long position recovers the
// round-trip commission.
func Breakeven(entry, commissionPerShare float64) float64 {
	return round2(entry + commissionPerShare*2)
}

// Ratchet moves a stop toward (and then above) breakeven once unrealized
// profit reaches thresholdPct percent. Below the threshold the current stop
// is returned unchanged. The first trigger moves the stop to breakeven plus
// a tick; after that the stop trails 0.5x the baseline percentage below the
// current price. The returned stop never moves against the position.
func Ratchet(entry, current, currentStop, thresholdPct float64) float64 {
	if thresholdPct <= 0 {
		thresholdPct = 5.0
	}
	if entry <= 0 {
		return currentStop
	}

	profitPct := (current - entry) / entry * 100
	if profitPct < thresholdPct {
		return currentStop
	}

	if currentStop < entry {
		return round2(entry * 1.001)
	}

	trail := current * (1 - DefaultStopPct*0.5/100)
	return round2(math.Max(currentStop, trail))
}

// TimeBased widens the stop as a position ages: the baseline percentage
// grows linearly up to +50% at maxDays, and positions past maxDays use a
// 1.5x baseline distance.
func TimeBased(entry float64, daysHeld, maxDays int) float64 {
	if maxDays <= 0 {
		maxDays = 30
	}
	if daysHeld >= maxDays {
		return percentageStop(entry, DefaultStopPct*1.5)
	}
	factor := float64(daysHeld) / float64(maxDays)
	return percentageStop(entry, DefaultStopPct*(1+factor*0.5))
}
