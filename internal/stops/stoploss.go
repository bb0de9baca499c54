// Package stops derives exit price levels (stop-loss and take-profit) from
// an entry price and optional market context. All functions are pure and
// deterministic; prices are quoted to the cent.
package stops

import (
	"errors"
	"math"

	"quantlab/internal/domain"
	"quantlab/internal/risk"
)

var errInvalidEntry = errors.New("entry price must be positive")

// Method selects how a stop-loss level is derived.
type Method string

// The closed set of stop-loss methods.
const (
	MethodPercentage Method = "percentage"
	MethodATR        Method = "atr"
	MethodSupport    Method = "support"
	MethodTrailing   Method = "trailing"
	MethodVolatility Method = "volatility"
	MethodChandelier Method = "chandelier"
)

// Default tuning values. Pct is the baseline stop distance in percent.
const (
	DefaultStopPct       = 5.0
	DefaultATRMultiplier = 2.0

	supportLookback    = 20
	trailingLookback   = 10
	volatilityLookback = 20
	chandelierLookback = 22
	chandelierATRMult  = 3.0
)

// Options tunes stop-loss derivation. Zero values select the defaults.
type Options struct {
	Pct           float64 // baseline stop percentage
	ATRMultiplier float64
}

func (o Options) pct() float64 {
	if o.Pct <= 0 {
		return DefaultStopPct
	}
	return o.Pct
}

func (o Options) atrMult() float64 {
	if o.ATRMultiplier <= 0 {
		return DefaultATRMultiplier
	}
	return o.ATRMultiplier
}

// StopLoss derives a stop-loss price below entry using the given method.
// Methods that need market context fall back to the percentage method when
// the frame is missing, too short, or lacks the required indicator column.
func StopLoss(entry float64, method Method, frame *domain.Frame, opts Options) (float64, error) {
	if entry <= 0 {
		return 0, errInvalidEntry
	}

	var stop float64
	switch method {
	case MethodATR:
		stop = atrStop(entry, frame, opts)
	case MethodSupport:
		stop = supportStop(entry, frame, opts)
	case MethodTrailing:
		stop = trailingStop(entry, frame, opts)
	case MethodVolatility:
		stop = volatilityStop(entry, frame, opts)
	case MethodChandelier:
		stop = chandelierStop(entry, frame, opts)
	default:
		stop = percentageStop(entry, opts.pct())
	}

	if math.IsNaN(stop) || math.IsInf(stop, 0) {
		return 0, errors.New("non-finite stop level")
	}
	return stop, nil
}

func percentageStop(entry, pct float64) float64 {
	return round2(entry * (1 - pct/100))
}

// atrStop subtracts a multiple of the latest ATR from entry, floored at
// twice the percentage stop distance.
func atrStop(entry float64, frame *domain.Frame, opts Options) float64 {
	pct := opts.pct()
	if frame == nil || frame.Len() == 0 || !domain.HasColumn(frame.ATR, frame.Len()-1) {
		return percentageStop(entry, pct)
	}
	atr := frame.ATR[frame.Len()-1]
	if atr <= 0 {
		return percentageStop(entry, pct)
	}

	stop := entry - atr*opts.atrMult()
	floor := entry * (1 - pct*2/100)
	return round2(math.Max(stop, floor))
}

// supportStop places the stop just under the trailing 20-bar low, clamped to
// a band around the percentage stop.
func supportStop(entry float64, frame *domain.Frame, opts Options) float64 {
	pct := opts.pct()
	if frame == nil || frame.Len() < supportLookback {
		return percentageStop(entry, pct)
	}

	low := math.MaxFloat64
	for _, b := range tailBars(frame, supportLookback) {
		if b.Low < low {
			low = b.Low
		}
	}

	stop := low * 0.985
	minStop := entry * (1 - pct*1.5/100)
	maxStop := entry * (1 - pct*0.5/100)
	return round2(math.Max(minStop, math.Min(stop, maxStop)))
}

// trailingStop trails the 10-bar high by 0.6x the baseline percentage,
// floored at the plain percentage stop.
func trailingStop(entry float64, frame *domain.Frame, opts Options) float64 {
	pct := opts.pct()
	if frame == nil || frame.Len() < trailingLookback {
		return percentageStop(entry, pct)
	}

	high := 0.0
	for _, b := range tailBars(frame, trailingLookback) {
		if b.High > high {
			high = b.High
		}
	}

	trailPct := pct * 0.6
	stop := high * (1 - trailPct/100)
	floor := entry * (1 - pct/100)
	return round2(math.Max(stop, floor))
}

// volatilityStop widens the percentage stop with realized 20-bar return
// volatility, capped at twice the baseline.
func volatilityStop(entry float64, frame *domain.Frame, opts Options) float64 {
	pct := opts.pct()
	if frame == nil || frame.Len() < volatilityLookback {
		return percentageStop(entry, pct)
	}

	closes := frame.Closes()
	returns := risk.Returns(closes)
	if len(returns) > volatilityLookback {
		returns = returns[len(returns)-volatilityLookback:]
	}
	vol := sampleStdDev(returns)

	adjusted := math.Min(pct*(1+vol*10), pct*2)
	return round2(entry * (1 - adjusted/100))
}

// chandelierStop hangs the stop 3 ATRs below the 22-bar high, floored at
// twice the percentage stop distance. Without ATR data or enough bars it
// degrades to the ATR method's fallback chain.
func chandelierStop(entry float64, frame *domain.Frame, opts Options) float64 {
	if frame == nil || frame.Len() < chandelierLookback || !domain.HasColumn(frame.ATR, frame.Len()-1) {
		return atrStop(entry, frame, Options{Pct: opts.Pct, ATRMultiplier: chandelierATRMult})
	}

	high := 0.0
	for _, b := range tailBars(frame, chandelierLookback) {
		if b.High > high {
			high = b.High
		}
	}
	atr := frame.ATR[frame.Len()-1]

	stop := high - atr*chandelierATRMult
	floor := entry * (1 - opts.pct()*2/100)
	return round2(math.Max(stop, floor))
}

// tailBars returns the trailing n bars of the frame.
func tailBars(frame *domain.Frame, n int) []domain.Bar {
	if frame.Len() <= n {
		return frame.Bars
	}
	return frame.Bars[frame.Len()-n:]
}

// sampleStdDev is the n-1 standard deviation of xs, 0 below two samples.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
