// Package signal converts indicator-augmented bar series into discrete
// BUY/SELL/HOLD decisions with strength, confidence, and human-readable
// rationale. Every rule degrades to a neutral hold when the indicators it
// needs are absent; signals are recomputed fresh on each call and never
// cached.
package signal

import (
	"fmt"
	"math"

	"quantlab/internal/domain"
)

// Strategy selects which rule (or composite of rules) produces the signal.
type Strategy string

// The closed set of live signal strategies.
const (
	Composite     Strategy = "AI Composite"
	RSIStrategy   Strategy = "RSI Strategy"
	MACDCrossover Strategy = "MACD Crossover"
	MovingAverage Strategy = "Moving Average"
	Bollinger     Strategy = "Bollinger Bands"
	Momentum      Strategy = "Momentum"
)

// Sensitivity remaps the RSI oversold/overbought thresholds.
type Sensitivity string

// The closed set of sensitivities.
const (
	Conservative Sensitivity = "Conservative"
	Moderate     Sensitivity = "Moderate"
	Aggressive   Sensitivity = "Aggressive"
)

// macdBiasThreshold is the minimum MACD/signal-line gap for a directional
// bias signal when no fresh crossover occurred.
const macdBiasThreshold = 0.5

// rsiThresholds returns the oversold and overbought levels for a
// sensitivity. Moderate is the default for unrecognised values.
func rsiThresholds(s Sensitivity) (oversold, overbought float64) {
	switch s {
	case Conservative:
		return 25, 75
	case Aggressive:
		return 35, 65
	default:
		return 30, 70
	}
}

// Generate produces a signal for the last bar of the frame using the given
// strategy. Unknown strategies are rejected; insufficient data never errors
// and yields a neutral hold instead.
func Generate(frame *domain.Frame, strategy Strategy, sensitivity Sensitivity) (domain.Signal, error) {
	if frame == nil || frame.Len() < 2 {
		return domain.NeutralSignal("insufficient bar history"), nil
	}

	switch strategy {
	case Composite:
		return compositeSignal(frame, sensitivity), nil
	case RSIStrategy:
		return rsiSignal(frame, sensitivity), nil
	case MACDCrossover:
		return macdSignal(frame), nil
	case MovingAverage:
		return maSignal(frame), nil
	case Bollinger:
		return bbSignal(frame), nil
	case Momentum:
		return momentumSignal(frame), nil
	default:
		return domain.Signal{}, fmt.Errorf("unknown strategy %q", strategy)
	}
}

// compositeSignal runs the four core sub-rules at equal weight and votes.
// A side wins when its summed weight beats the other side and exceeds 0.4,
// i.e. at least two agreeing sub-rules.
func compositeSignal(frame *domain.Frame, sensitivity Sensitivity) domain.Signal {
	const weight = 0.25
	subs := []domain.Signal{
		rsiSignal(frame, sensitivity),
		macdSignal(frame),
		maSignal(frame),
		bbSignal(frame),
	}

	var buyScore, sellScore float64
	var voted []domain.Signal
	for _, s := range subs {
		switch s.Action {
		case domain.Buy:
			buyScore += weight
			voted = append(voted, s)
		case domain.Sell:
			sellScore += weight
			voted = append(voted, s)
		}
	}

	if len(voted) == 0 {
		return domain.NeutralSignal("No clear signal from technical indicators")
	}

	var action domain.Action
	var score float64
	switch {
	case buyScore > sellScore && buyScore > 0.4:
		action, score = domain.Buy, buyScore
	case sellScore > buyScore && sellScore > 0.4:
		action, score = domain.Sell, sellScore
	default:
		return domain.NeutralSignal("Mixed signals from indicators")
	}

	var reasons []string
	for _, s := range voted {
		if s.Action != action {
			continue
		}
		reasons = append(reasons, s.Reasons...)
		if len(reasons) >= 3 {
			reasons = reasons[:3]
			break
		}
	}
	if len(reasons) == 0 {
		reasons = []string{"Mixed signals from indicators"}
	}

	return domain.Signal{
		Action:     action,
		Strength:   clampStrength(int(math.Round(score * 15))),
		Confidence: int(math.Min(95, math.Round(score*100))),
		Reasons:    reasons,
	}
}

// rsiSignal fires on oversold/overbought RSI readings. Strength and
// confidence scale with the distance past the threshold.
func rsiSignal(frame *domain.Frame, sensitivity Sensitivity) domain.Signal {
	last := frame.Len() - 1
	if last < 1 || !domain.HasColumn(frame.RSI, last) {
		return domain.NeutralSignal()
	}
	rsi := frame.RSI[last]
	oversold, overbought := rsiThresholds(sensitivity)

	switch {
	case rsi < oversold:
		return domain.Signal{
			Action:     domain.Buy,
			Strength:   clampStrength(int((oversold - rsi) / 3)),
			Confidence: clampConfidence(70+int(oversold-rsi), 95),
			Reasons:    []string{fmt.Sprintf("RSI at %.1f indicates oversold conditions", rsi)},
		}
	case rsi > overbought:
		return domain.Signal{
			Action:     domain.Sell,
			Strength:   clampStrength(int((rsi - overbought) / 3)),
			Confidence: clampConfidence(70+int(rsi-overbought), 95),
			Reasons:    []string{fmt.Sprintf("RSI at %.1f indicates overbought conditions", rsi)},
		}
	default:
		return domain.NeutralSignal(fmt.Sprintf("RSI at %.1f in neutral zone", rsi))
	}
}

// macdSignal fires on MACD/signal-line crossovers, with a weaker directional
// bias when the lines are well separated without a fresh cross.
func macdSignal(frame *domain.Frame) domain.Signal {
	last := frame.Len() - 1
	if last < 1 ||
		!domain.HasColumn(frame.MACD, last) || !domain.HasColumn(frame.MACDSignal, last) ||
		!domain.HasColumn(frame.MACD, last-1) || !domain.HasColumn(frame.MACDSignal, last-1) {
		return domain.NeutralSignal()
	}

	diff := frame.MACD[last] - frame.MACDSignal[last]
	prevDiff := frame.MACD[last-1] - frame.MACDSignal[last-1]

	switch {
	case prevDiff < 0 && diff > 0:
		return domain.Signal{
			Action:     domain.Buy,
			Strength:   clampStrength(int(math.Abs(diff) * 10)),
			Confidence: clampConfidence(65+int(math.Abs(diff)*20), 90),
			Reasons:    []string{"MACD bullish crossover detected"},
		}
	case prevDiff > 0 && diff < 0:
		return domain.Signal{
			Action:     domain.Sell,
			Strength:   clampStrength(int(math.Abs(diff) * 10)),
			Confidence: clampConfidence(65+int(math.Abs(diff)*20), 90),
			Reasons:    []string{"MACD bearish crossover detected"},
		}
	case diff > macdBiasThreshold:
		return domain.Signal{Action: domain.Buy, Strength: 6, Confidence: 60,
			Reasons: []string{"MACD above signal line"}}
	case diff < -macdBiasThreshold:
		return domain.Signal{Action: domain.Sell, Strength: 6, Confidence: 60,
			Reasons: []string{"MACD below signal line"}}
	default:
		return domain.NeutralSignal("MACD neutral")
	}
}

// maSignal fires on 20/50 SMA crossovers (golden/death cross), with a weaker
// trend signal from the price's position relative to both averages.
func maSignal(frame *domain.Frame) domain.Signal {
	last := frame.Len() - 1
	if last < 1 ||
		!domain.HasColumn(frame.SMA20, last) || !domain.HasColumn(frame.SMA50, last) ||
		!domain.HasColumn(frame.SMA20, last-1) || !domain.HasColumn(frame.SMA50, last-1) {
		return domain.NeutralSignal()
	}

	s20, s50 := frame.SMA20[last], frame.SMA50[last]
	p20, p50 := frame.SMA20[last-1], frame.SMA50[last-1]
	price := frame.Bars[last].Close

	switch {
	case p20 < p50 && s20 > s50:
		return domain.Signal{Action: domain.Buy, Strength: 8, Confidence: 75,
			Reasons: []string{"Golden cross: SMA 20 crossed above SMA 50"}}
	case p20 > p50 && s20 < s50:
		return domain.Signal{Action: domain.Sell, Strength: 8, Confidence: 75,
			Reasons: []string{"Death cross: SMA 20 crossed below SMA 50"}}
	case price > s20 && s20 > s50:
		return domain.Signal{Action: domain.Buy, Strength: 6, Confidence: 65,
			Reasons: []string{"Price above both moving averages - uptrend"}}
	case price < s20 && s20 < s50:
		return domain.Signal{Action: domain.Sell, Strength: 6, Confidence: 65,
			Reasons: []string{"Price below both moving averages - downtrend"}}
	default:
		return domain.NeutralSignal("Moving averages show no clear trend")
	}
}

// bbSignal fires when the close breaks out of the Bollinger bands. Strength
// scales with the distance outside the band.
func bbSignal(frame *domain.Frame) domain.Signal {
	last := frame.Len() - 1
	if last < 1 || !domain.HasColumn(frame.BBUpper, last) || !domain.HasColumn(frame.BBLower, last) {
		return domain.NeutralSignal()
	}

	price := frame.Bars[last].Close
	upper, lower := frame.BBUpper[last], frame.BBLower[last]

	switch {
	case price < lower:
		return domain.Signal{
			Action:     domain.Buy,
			Strength:   clampStrength(int((lower - price) / lower * 100)),
			Confidence: 70,
			Reasons:    []string{"Price below lower Bollinger Band"},
		}
	case price > upper:
		return domain.Signal{
			Action:     domain.Sell,
			Strength:   clampStrength(int((price - upper) / upper * 100)),
			Confidence: 70,
			Reasons:    []string{"Price above upper Bollinger Band"},
		}
	default:
		return domain.NeutralSignal("Price within Bollinger Bands")
	}
}

// momentumLookback is the short return horizon for momentum confirmation.
const momentumLookback = 5

// momentumSignal fires on a strong short-horizon move confirmed by elevated
// volume. Without a volume-ratio column the ratio defaults to 1.0 and the
// rule cannot fire.
func momentumSignal(frame *domain.Frame) domain.Signal {
	last := frame.Len() - 1
	if last < momentumLookback {
		return domain.NeutralSignal()
	}

	base := frame.Bars[last-momentumLookback].Close
	if base == 0 {
		return domain.NeutralSignal()
	}
	ret := (frame.Bars[last].Close - base) / base * 100

	volumeRatio := 1.0
	if domain.HasColumn(frame.VolumeRatio, last) {
		volumeRatio = frame.VolumeRatio[last]
	}

	switch {
	case ret > 3 && volumeRatio > 1.2:
		return domain.Signal{Action: domain.Buy, Strength: 7, Confidence: 70,
			Reasons: []string{fmt.Sprintf("Strong upward momentum: %.1f%% gain with high volume", ret)}}
	case ret < -3 && volumeRatio > 1.2:
		return domain.Signal{Action: domain.Sell, Strength: 7, Confidence: 70,
			Reasons: []string{fmt.Sprintf("Strong downward momentum: %.1f%% loss with high volume", ret)}}
	default:
		return domain.NeutralSignal("Weak momentum signal")
	}
}

// clampStrength bounds a raw strength score to the 1-10 scale.
func clampStrength(s int) int {
	if s < 1 {
		return 1
	}
	if s > 10 {
		return 10
	}
	return s
}

// clampConfidence bounds confidence to [0, max].
func clampConfidence(c, max int) int {
	if c < 0 {
		return 0
	}
	if c > max {
		return max
	}
	return c
}
