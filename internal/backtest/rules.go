package backtest

import (
	"fmt"
	"math"

	"quantlab/internal/domain"
)

// rule answers what the strategy would do at bar i, given the full close
// series it was built from. Bars inside the warmup lookback always hold.
type rule func(i int) domain.Action

// newRule precomputes the indicator series the strategy needs and returns a
// per-bar decision function. All series use NaN for undefined warmup rows;
// NaN comparisons are false, so warmup bars fall through to HOLD.
func newRule(closes []float64, p Params) (rule, error) {
	switch p.Type {
	case MACrossover:
		return maRule(closes, p), nil
	case RSIReversal:
		return rsiRule(closes, p), nil
	case MACDTrend:
		return macdRule(closes, p), nil
	case BollingerRV:
		return bbRule(closes, p), nil
	case Combined:
		return combinedRule(closes, p), nil
	default:
		return nil, fmt.Errorf("backtest: unknown strategy type %q", p.Type)
	}
}

// maRule fires on short/long SMA crossovers.
func maRule(closes []float64, p Params) rule {
	short := rollingMean(closes, p.ShortWindow)
	long := rollingMean(closes, p.LongWindow)
	min := p.LongWindow
	return func(i int) domain.Action {
		if i < 1 || i+1 < min {
			return domain.Hold
		}
		switch {
		case short[i] > long[i] && short[i-1] <= long[i-1]:
			return domain.Buy
		case short[i] < long[i] && short[i-1] >= long[i-1]:
			return domain.Sell
		default:
			return domain.Hold
		}
	}
}

// rsiRule fires on the RSI level itself: buy oversold, sell overbought.
func rsiRule(closes []float64, p Params) rule {
	rsi := rsiSeries(closes, p.Period)
	min := p.Period + 1
	return func(i int) domain.Action {
		if i+1 < min {
			return domain.Hold
		}
		switch {
		case rsi[i] < p.Oversold:
			return domain.Buy
		case rsi[i] > p.Overbought:
			return domain.Sell
		default:
			return domain.Hold
		}
	}
}

// macdRule fires on MACD/signal-line crossovers.
func macdRule(closes []float64, p Params) rule {
	fast := ewmSeries(closes, p.Fast)
	slow := ewmSeries(closes, p.Slow)
	macd := make([]float64, len(closes))
	for i := range macd {
		macd[i] = fast[i] - slow[i]
	}
	signal := ewmSeries(macd, p.Signal)
	min := p.Slow + p.Signal
	return func(i int) domain.Action {
		if i < 1 || i+1 < min {
			return domain.Hold
		}
		switch {
		case macd[i] > signal[i] && macd[i-1] <= signal[i-1]:
			return domain.Buy
		case macd[i] < signal[i] && macd[i-1] >= signal[i-1]:
			return domain.Sell
		default:
			return domain.Hold
		}
	}
}

// bbRule fires when the close leaves the Bollinger envelope: buy below the
// lower band, sell above the upper.
func bbRule(closes []float64, p Params) rule {
	mean := rollingMean(closes, p.BBPeriod)
	std := rollingStd(closes, p.BBPeriod)
	min := p.BBPeriod
	return func(i int) domain.Action {
		if i+1 < min {
			return domain.Hold
		}
		lower := mean[i] - p.BBStdDev*std[i]
		upper := mean[i] + p.BBStdDev*std[i]
		switch {
		case closes[i] < lower:
			return domain.Buy
		case closes[i] > upper:
			return domain.Sell
		default:
			return domain.Hold
		}
	}
}

// combinedRule polls the four single rules and acts on a majority with at
// least two agreeing votes.
func combinedRule(closes []float64, p Params) rule {
	rules := []rule{
		maRule(closes, p),
		rsiRule(closes, p),
		macdRule(closes, p),
		bbRule(closes, p),
	}
	return func(i int) domain.Action {
		var buys, sells int
		for _, r := range rules {
			switch r(i) {
			case domain.Buy:
				buys++
			case domain.Sell:
				sells++
			}
		}
		switch {
		case buys > sells && buys >= 2:
			return domain.Buy
		case sells > buys && sells >= 2:
			return domain.Sell
		default:
			return domain.Hold
		}
	}
}

// ---- series helpers ----

// rollingMean is a simple moving average with NaN for the first window-1
// rows.
func rollingMean(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window < 1 || window > len(xs) {
		return out
	}
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd is the rolling sample standard deviation (n-1 denominator),
// NaN for the first window-1 rows.
func rollingStd(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window < 2 || window > len(xs) {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		win := xs[i-window+1 : i+1]
		mean := 0.0
		for _, x := range win {
			mean += x
		}
		mean /= float64(window)
		ss := 0.0
		for _, x := range win {
			d := x - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

// rsiSeries is the rolling-mean RSI: average gain and loss are plain moving
// averages of the one-bar deltas, not Wilder smoothing. Defined from index
// period onward. An all-gain window reads 100; a flat window is NaN.
func rsiSeries(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period < 1 || len(closes) <= period {
		return out
	}
	for i := period; i < len(closes); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - closes[j-1]
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		switch {
		case loss == 0 && gain == 0:
			// undefined, stays NaN
		case loss == 0:
			out[i] = 100
		default:
			rs := gain / loss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// ewmSeries is an exponentially weighted mean seeded with the first value
// (recursive form, matching ewm(span, adjust=false)).
func ewmSeries(xs []float64, span int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = (1-alpha)*out[i-1] + alpha*xs[i]
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
