// Package indicators derives the optional indicator columns of a
// domain.Frame from raw bars. The heavy lifting is done by gct-ta; this
// package sizes the inputs, masks warmup rows to NaN, and computes the
// volume ratio, which has no gct-ta primitive.
package indicators

import (
	"errors"
	"math"

	ta "github.com/thrasher-corp/gct-ta/indicators"

	"quantlab/internal/domain"
)

var errNoBars = errors.New("indicators: empty bar sequence")

// Standard lookbacks. These match the defaults used by the signal rules.
const (
	RSIPeriod    = 14
	MACDFast     = 12
	MACDSlow     = 26
	MACDSignal   = 9
	SMAShort     = 20
	SMALong      = 50
	BBPeriod     = 20
	BBStdDev     = 2.0
	ATRPeriod    = 14
	VolumeWindow = 20
)

// Enrich builds a frame with every indicator column the bar count supports.
// Columns whose lookback exceeds the series length are left nil; warmup rows
// of computed columns are NaN. Downstream consumers treat both as absent.
func Enrich(bars []domain.Bar) (*domain.Frame, error) {
	if len(bars) == 0 {
		return nil, errNoBars
	}

	frame := &domain.Frame{Bars: bars}
	n := len(bars)

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = float64(b.Volume)
	}

	if n > RSIPeriod {
		frame.RSI = maskWarmup(ta.RSI(closes, RSIPeriod), RSIPeriod)
	}
	if n >= MACDSlow+MACDSignal-1 {
		macd, signal, _ := ta.MACD(closes, MACDFast, MACDSlow, MACDSignal)
		frame.MACD = maskWarmup(macd, MACDSlow-1)
		frame.MACDSignal = maskWarmup(signal, MACDSlow+MACDSignal-2)
	}
	if n >= SMAShort {
		frame.SMA20 = maskWarmup(ta.SMA(closes, SMAShort), SMAShort-1)
	}
	if n >= SMALong {
		frame.SMA50 = maskWarmup(ta.SMA(closes, SMALong), SMALong-1)
	}
	if n >= BBPeriod {
		upper, middle, lower := ta.BBANDS(closes, BBPeriod, BBStdDev, BBStdDev, ta.Sma)
		frame.BBUpper = maskWarmup(upper, BBPeriod-1)
		frame.BBMiddle = maskWarmup(middle, BBPeriod-1)
		frame.BBLower = maskWarmup(lower, BBPeriod-1)
	}
	if n > ATRPeriod {
		frame.ATR = maskWarmup(ta.ATR(highs, lows, closes, ATRPeriod), ATRPeriod)
	}
	if n >= VolumeWindow {
		frame.VolumeRatio = volumeRatio(volumes, VolumeWindow)
	}

	return frame, nil
}

// maskWarmup overwrites the first warmup entries with NaN so undefined
// leading values are never mistaken for real readings.
func maskWarmup(col []float64, warmup int) []float64 {
	for i := 0; i < warmup && i < len(col); i++ {
		col[i] = math.NaN()
	}
	return col
}

// volumeRatio is each bar's volume relative to its trailing window mean.
// Rows without a full window, and windows with zero mean volume, are NaN.
func volumeRatio(volumes []float64, window int) []float64 {
	out := make([]float64, len(volumes))
	sum := 0.0
	for i, v := range volumes {
		sum += v
		if i >= window {
			sum -= volumes[i-window]
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		mean := sum / float64(window)
		if mean == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = v / mean
	}
	return out
}
