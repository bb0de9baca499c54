package stops

import (
	"errors"
	"fmt"

	"quantlab/internal/domain"
	"quantlab/internal/risk"
)

var (
	errStopAboveEntry = errors.New("stop loss must be below entry price")
	errNonFiniteLevel = errors.New("non-finite price level")
)

// Validation carries the outcome of checking a stop level. Errors make the
// stop unusable; warnings and suggestions are advisory.
type Validation struct {
	Valid       bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// Optimal stop distance band in percent; outside it a suggestion is issued.
const (
	optimalLossMin = 2.0
	optimalLossMax = 8.0
)

// Validate checks a stop-loss level for a long position at the given entry.
// A stop at or above entry, at or below zero, or implying a loss over 20% is
// invalid. Wide (>10%) and very tight (<0.5%) stops draw warnings; stops
// outside the 2-8% band draw a non-blocking suggestion.
func Validate(entry, stop float64) Validation {
	v := Validation{Valid: true}

	if stop >= entry {
		v.Valid = false
		v.Errors = append(v.Errors, "stop loss must be below entry price for long positions")
		return v
	}
	if stop <= 0 {
		v.Valid = false
		v.Errors = append(v.Errors, "stop loss must be a positive value")
		return v
	}

	lossPct := (entry - stop) / entry * 100

	switch {
	case lossPct >= 20:
		v.Valid = false
		v.Errors = append(v.Errors, fmt.Sprintf(
			"stop loss too wide (%.1f%%), risk at or above 20%%", lossPct))
	case lossPct > 10:
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"stop loss is wide (%.1f%%), consider a tighter stop or smaller position", lossPct))
	}

	if lossPct < 0.5 {
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"stop loss very tight (%.2f%%), may trigger prematurely on normal volatility", lossPct))
		v.Suggestions = append(v.Suggestions,
			"consider widening the stop to at least 1-2% to account for market noise")
	}

	switch {
	case lossPct < optimalLossMin:
		v.Suggestions = append(v.Suggestions, fmt.Sprintf(
			"stop below the typical %.0f-%.0f%% range", optimalLossMin, optimalLossMax))
	case lossPct > optimalLossMax:
		v.Suggestions = append(v.Suggestions, fmt.Sprintf(
			"stop above the typical %.0f-%.0f%% range", optimalLossMin, optimalLossMax))
	default:
		v.Suggestions = append(v.Suggestions, "stop loss is within the optimal range")
	}

	return v
}

// Recommendations derives a stop level per method plus a tolerance-scaled
// percentage pick and, when market context allows, the average of the
// technical methods. Low tolerance tightens the recommended percentage stop
// to 0.6x the baseline, high tolerance widens it to 1.4x.
func Recommendations(entry float64, frame *domain.Frame, tolerance risk.Tolerance) (map[string]float64, error) {
	if entry <= 0 {
		return nil, errInvalidEntry
	}

	out := map[string]float64{
		string(MethodPercentage): percentageStop(entry, DefaultStopPct),
	}

	technical := frame != nil && frame.Len() >= supportLookback
	if technical {
		for _, m := range []Method{MethodATR, MethodSupport, MethodTrailing, MethodVolatility} {
			level, err := StopLoss(entry, m, frame, Options{})
			if err != nil {
				return nil, err
			}
			out[string(m)] = level
		}
	}

	pct := DefaultStopPct
	switch tolerance {
	case risk.ToleranceLow:
		pct *= 0.6
	case risk.ToleranceHigh:
		pct *= 1.4
	}
	out["recommended"] = percentageStop(entry, pct)

	if technical {
		var sum float64
		var n int
		for k, v := range out {
			if k == "recommended" || v <= 0 {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			out["average_technical"] = round2(sum / float64(n))
		}
	}

	return out, nil
}
