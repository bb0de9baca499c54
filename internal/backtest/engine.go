package backtest

import (
	"math"

	"quantlab/internal/domain"
)

// Run replays the strategy over the frame. Bar 0 is the prior-bar reference;
// the fold starts at bar 1. Equity is sampled each bar before that bar's
// order executes, so the curve reflects state entering the bar. Any position
// still open at the end is marked to market in the final value.
func Run(frame *domain.Frame, params Params, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if frame == nil || frame.Len() == 0 {
		return nil, errNoBars
	}

	p := params.withDefaults()
	decide, err := newRule(frame.Closes(), p)
	if err != nil {
		return nil, err
	}

	cash := cfg.InitialCapital
	shares := 0
	var trades []domain.Trade
	var equity []domain.EquityPoint

	for i := 1; i < frame.Len(); i++ {
		bar := frame.Bars[i]
		price := bar.Close

		equity = append(equity, domain.EquityPoint{
			Date:  bar.Date,
			Value: cash + float64(shares)*price,
		})

		switch decide(i) {
		case domain.Buy:
			if shares != 0 || cash <= price {
				continue
			}
			n := int(math.Floor(cash * cfg.PositionSize / price))
			if n <= 0 {
				continue
			}
			shares = n
			cash -= float64(n)*price + cfg.Commission
			trades = append(trades, domain.Trade{
				Date:       bar.Date,
				Type:       domain.Buy,
				Price:      price,
				Shares:     n,
				Value:      float64(n) * price,
				Commission: cfg.Commission,
			})

		case domain.Sell:
			if shares == 0 {
				continue
			}
			cash += float64(shares)*price - cfg.Commission
			trades = append(trades, domain.Trade{
				Date:       bar.Date,
				Type:       domain.Sell,
				Price:      price,
				Shares:     shares,
				Value:      float64(shares) * price,
				Commission: cfg.Commission,
			})
			shares = 0
		}
	}

	finalValue := cash + float64(shares)*frame.Bars[frame.Len()-1].Close
	report := buildReport(cfg.InitialCapital, finalValue, trades, equity)

	return &Result{Report: report, Trades: trades, Equity: equity}, nil
}
