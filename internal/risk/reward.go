package risk

// RewardAssessment grades the risk/reward geometry of a planned trade.
type RewardAssessment struct {
	Ratio      float64 `json:"risk_reward_ratio"`
	RiskAmount float64 `json:"risk_amount"`
	Reward     float64 `json:"reward_amount"`
	Assessment string  `json:"assessment"`
}

// AssessRiskReward grades entry/stop/take-profit levels by their
// reward-to-risk ratio. A stop at or above entry is graded Invalid with a
// zero ratio.
func AssessRiskReward(entry, stop, takeProfit float64) RewardAssessment {
	riskAmt := entry - stop
	reward := takeProfit - entry

	if riskAmt <= 0 {
		return RewardAssessment{Assessment: "Invalid"}
	}

	ratio := reward / riskAmt
	var grade string
	switch {
	case ratio >= 3:
		grade = "Excellent"
	case ratio >= 2:
		grade = "Good"
	case ratio >= 1:
		grade = "Acceptable"
	default:
		grade = "Poor"
	}

	return RewardAssessment{
		Ratio:      ratio,
		RiskAmount: riskAmt,
		Reward:     reward,
		Assessment: grade,
	}
}
