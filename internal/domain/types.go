// Package domain defines the core value types shared across quantlab:
// bars, indicator frames, signals, trades, and analysis results.
package domain

import (
	"math"
	"time"
)

// ---------------------------------------------------------------------------
// Market data
// ---------------------------------------------------------------------------

// Bar is a single OHLCV record for one trading period.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Frame is an ordered bar series augmented with optional precomputed
// indicator columns. Columns are parallel to Bars; a nil column means the
// indicator was not supplied, and NaN entries mark warmup rows where the
// indicator is not yet defined. Consumers must treat both as "absent" and
// degrade to neutral rather than fail.
type Frame struct {
	Bars []Bar

	RSI         []float64
	MACD        []float64
	MACDSignal  []float64
	SMA20       []float64
	SMA50       []float64
	BBUpper     []float64
	BBMiddle    []float64
	BBLower     []float64
	ATR         []float64
	VolumeRatio []float64
}

// Len returns the number of bars in the frame.
func (f *Frame) Len() int { return len(f.Bars) }

// Closes returns the close prices as a flat slice.
func (f *Frame) Closes() []float64 {
	out := make([]float64, len(f.Bars))
	for i := range f.Bars {
		out[i] = f.Bars[i].Close
	}
	return out
}

// HasColumn reports whether col is present and defined (non-NaN) at index i.
func HasColumn(col []float64, i int) bool {
	return col != nil && i >= 0 && i < len(col) && !math.IsNaN(col[i])
}

// ---------------------------------------------------------------------------
// Signals
// ---------------------------------------------------------------------------

// Action is a discrete trade decision.
type Action string

// The closed set of trade actions.
const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Signal is an immutable trade decision with supporting detail. Strength is
// on a 1-10 scale, Confidence on 0-100. Reasons is ordered, most significant
// first.
type Signal struct {
	Action     Action   `json:"action"`
	Strength   int      `json:"strength"`
	Confidence int      `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// NeutralSignal returns the hold signal produced whenever a rule has
// insufficient data to decide.
func NeutralSignal(reasons ...string) Signal {
	return Signal{Action: Hold, Strength: 5, Confidence: 50, Reasons: reasons}
}

// ---------------------------------------------------------------------------
// Risk & sizing
// ---------------------------------------------------------------------------

// RiskProfile summarises the risk characteristics of a price series.
type RiskProfile struct {
	RiskScore   float64 `json:"risk_score"`   // 1-10
	Volatility  float64 `json:"volatility"`   // annualized, percent
	Beta        float64 `json:"beta"`         // vs market, 1.0 when unknown
	MaxDrawdown float64 `json:"max_drawdown"` // percent, <= 0
	SharpeRatio float64 `json:"sharpe_ratio"`
	ValueAtRisk float64 `json:"value_at_risk"` // 95%, absolute dollars
}

// SizingRecommendation is a concrete position size for one trade.
type SizingRecommendation struct {
	Shares int     `json:"shares"`
	Value  float64 `json:"value"`
}

// ---------------------------------------------------------------------------
// Trades & performance
// ---------------------------------------------------------------------------

// Trade is one executed backtest order. Records are append-only and never
// mutated once written to a ledger.
type Trade struct {
	Date       time.Time `json:"date"`
	Type       Action    `json:"type"`
	Price      float64   `json:"price"`
	Shares     int       `json:"shares"`
	Value      float64   `json:"value"`
	Commission float64   `json:"commission"`
}

// EquityPoint is one sample of the portfolio equity curve.
type EquityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// PerformanceReport is the immutable summary derived at the end of a
// backtest run.
type PerformanceReport struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalValue     float64 `json:"final_value"`
	TotalReturn    float64 `json:"total_return"` // percent
	TotalTrades    int     `json:"total_trades"` // completed round trips
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"`
	LargestWin     float64 `json:"largest_win"`
	LargestLoss    float64 `json:"largest_loss"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"` // percent, <= 0
	Volatility     float64 `json:"volatility"`   // percent
}
