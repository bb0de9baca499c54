// Package strategy evaluates how a signal strategy would have performed over
// a historical bar series. Each strategy is reduced to a crossing-event
// detector; events are paired into round-trip trades with a single open
// position at a time.
package strategy

import (
	"errors"
	"fmt"

	"quantlab/internal/domain"
	"quantlab/internal/signal"
)

var errNoBars = errors.New("strategy: no bar history")

// Performance summarises the historical behaviour of a strategy.
type Performance struct {
	WinRate         float64  `json:"win_rate"`
	AvgReturn       float64  `json:"avg_return"`
	TotalSignals    int      `json:"total_signals"`
	Recommendations []string `json:"recommendations"`
}

// event is a raw entry or exit signal at a bar index.
type event struct {
	index  int
	action domain.Action
	price  float64
}

// Analyze replays the strategy's entry/exit events over the frame and pairs
// them into trades. Only an empty bar sequence is an error; a frame too
// short to produce events, like one whose indicator columns are missing,
// reports zero performance instead of failing.
func Analyze(frame *domain.Frame, strategyType signal.Strategy) (Performance, error) {
	if frame == nil || frame.Len() == 0 {
		return Performance{}, errNoBars
	}

	var events []event
	switch strategyType {
	case signal.RSIStrategy:
		events = rsiEvents(frame)
	case signal.MACDCrossover:
		events = macdEvents(frame)
	case signal.MovingAverage:
		events = maEvents(frame)
	case signal.Bollinger:
		events = bbEvents(frame)
	case signal.Composite:
		events = compositeEvents(frame)
	default:
		return Performance{}, fmt.Errorf("unknown strategy %q", strategyType)
	}

	returns := pairTrades(events)
	return summarize(events, returns), nil
}

// rsiEvents detects RSI recovering up through the oversold level (entry) and
// falling back down through the overbought level (exit).
func rsiEvents(frame *domain.Frame) []event {
	var events []event
	for i := 1; i < frame.Len(); i++ {
		if !domain.HasColumn(frame.RSI, i) || !domain.HasColumn(frame.RSI, i-1) {
			continue
		}
		rsi, prev := frame.RSI[i], frame.RSI[i-1]
		switch {
		case prev <= 30 && rsi > 30:
			events = append(events, event{i, domain.Buy, frame.Bars[i].Close})
		case prev >= 70 && rsi < 70:
			events = append(events, event{i, domain.Sell, frame.Bars[i].Close})
		}
	}
	return events
}

// macdEvents detects MACD/signal-line crossovers in either direction.
func macdEvents(frame *domain.Frame) []event {
	var events []event
	for i := 1; i < frame.Len(); i++ {
		if !domain.HasColumn(frame.MACD, i) || !domain.HasColumn(frame.MACDSignal, i) ||
			!domain.HasColumn(frame.MACD, i-1) || !domain.HasColumn(frame.MACDSignal, i-1) {
			continue
		}
		diff := frame.MACD[i] - frame.MACDSignal[i]
		prevDiff := frame.MACD[i-1] - frame.MACDSignal[i-1]
		switch {
		case prevDiff < 0 && diff > 0:
			events = append(events, event{i, domain.Buy, frame.Bars[i].Close})
		case prevDiff > 0 && diff < 0:
			events = append(events, event{i, domain.Sell, frame.Bars[i].Close})
		}
	}
	return events
}

// maEvents detects 20/50 SMA golden crosses (entry) and death crosses (exit).
func maEvents(frame *domain.Frame) []event {
	var events []event
	for i := 1; i < frame.Len(); i++ {
		if !domain.HasColumn(frame.SMA20, i) || !domain.HasColumn(frame.SMA50, i) ||
			!domain.HasColumn(frame.SMA20, i-1) || !domain.HasColumn(frame.SMA50, i-1) {
			continue
		}
		s20, s50 := frame.SMA20[i], frame.SMA50[i]
		p20, p50 := frame.SMA20[i-1], frame.SMA50[i-1]
		switch {
		case p20 < p50 && s20 > s50:
			events = append(events, event{i, domain.Buy, frame.Bars[i].Close})
		case p20 > p50 && s20 < s50:
			events = append(events, event{i, domain.Sell, frame.Bars[i].Close})
		}
	}
	return events
}

// bbEvents detects the close crossing below the lower Bollinger band (entry)
// and crossing above the upper band (exit).
func bbEvents(frame *domain.Frame) []event {
	var events []event
	for i := 1; i < frame.Len(); i++ {
		if !domain.HasColumn(frame.BBUpper, i) || !domain.HasColumn(frame.BBLower, i) ||
			!domain.HasColumn(frame.BBUpper, i-1) || !domain.HasColumn(frame.BBLower, i-1) {
			continue
		}
		price, prev := frame.Bars[i].Close, frame.Bars[i-1].Close
		switch {
		case prev >= frame.BBLower[i-1] && price < frame.BBLower[i]:
			events = append(events, event{i, domain.Buy, price})
		case prev <= frame.BBUpper[i-1] && price > frame.BBUpper[i]:
			events = append(events, event{i, domain.Sell, price})
		}
	}
	return events
}

// compositeEvents merges all four detectors' events in bar order so the
// combined stream is paired like a single strategy's.
func compositeEvents(frame *domain.Frame) []event {
	streams := [][]event{
		rsiEvents(frame),
		macdEvents(frame),
		maEvents(frame),
		bbEvents(frame),
	}
	var merged []event
	for _, s := range streams {
		merged = append(merged, s...)
	}
	// Insertion sort by bar index; streams are short and already ordered
	// within themselves.
	for i := 1; i < len(merged); i++ {
		for j := i; j > 0 && merged[j].index < merged[j-1].index; j-- {
			merged[j], merged[j-1] = merged[j-1], merged[j]
		}
	}
	return merged
}

// pairTrades walks the event stream holding at most one open position: a BUY
// opens when flat, the next SELL closes it. An unclosed trailing entry is
// discarded. Returns per-trade percentage returns.
func pairTrades(events []event) []float64 {
	var returns []float64
	entry := 0.0
	open := false
	for _, e := range events {
		switch {
		case e.action == domain.Buy && !open:
			entry = e.price
			open = true
		case e.action == domain.Sell && open:
			returns = append(returns, (e.price-entry)/entry*100)
			open = false
		}
	}
	return returns
}

// summarize turns raw events and paired trade returns into a report with
// threshold-based recommendations.
func summarize(events []event, returns []float64) Performance {
	if len(returns) == 0 {
		return Performance{
			TotalSignals:    len(events),
			Recommendations: []string{"Insufficient trading signals generated"},
		}
	}

	wins := 0
	sum := 0.0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
		sum += r
	}
	winRate := float64(wins) / float64(len(returns)) * 100
	avgReturn := sum / float64(len(returns))

	var recs []string
	if winRate > 60 {
		recs = append(recs, "Strategy shows strong historical win rate")
	}
	if avgReturn > 2 {
		recs = append(recs, "Good average returns per trade")
	}
	if len(events) < 5 {
		recs = append(recs, "Limited trading opportunities - consider longer timeframe")
	}

	return Performance{
		WinRate:         winRate,
		AvgReturn:       avgReturn,
		TotalSignals:    len(events),
		Recommendations: recs,
	}
}
