package backtest

import (
	"quantlab/internal/domain"
	"quantlab/internal/risk"
)

// buildReport derives the performance summary from the ledger and equity
// curve. BUY and SELL orders are paired strictly by chronological index;
// a trailing open BUY contributes to the final value but not to the
// win/loss tallies.
func buildReport(initialCapital, finalValue float64, trades []domain.Trade, equity []domain.EquityPoint) domain.PerformanceReport {
	report := domain.PerformanceReport{
		InitialCapital: initialCapital,
		FinalValue:     finalValue,
		TotalReturn:    (finalValue - initialCapital) / initialCapital * 100,
	}

	var buys, sells []domain.Trade
	for _, t := range trades {
		if t.Type == domain.Buy {
			buys = append(buys, t)
		} else {
			sells = append(sells, t)
		}
	}

	completed := len(buys)
	if len(sells) < completed {
		completed = len(sells)
	}
	report.TotalTrades = completed

	var totalProfit, totalLoss float64
	for i := 0; i < completed; i++ {
		pnl := (sells[i].Price - buys[i].Price) * float64(buys[i].Shares)
		if pnl > 0 {
			report.WinningTrades++
			totalProfit += pnl
			if pnl > report.LargestWin {
				report.LargestWin = pnl
			}
		} else {
			report.LosingTrades++
			totalLoss += -pnl
			if pnl < report.LargestLoss {
				report.LargestLoss = pnl
			}
		}
	}
	if report.WinningTrades > 0 {
		report.AvgWin = totalProfit / float64(report.WinningTrades)
	}
	if report.LosingTrades > 0 {
		report.AvgLoss = totalLoss / float64(report.LosingTrades)
	}

	values := make([]float64, len(equity))
	for i, pt := range equity {
		values[i] = pt.Value
	}
	returns := risk.Returns(values)
	if len(returns) > 0 {
		report.SharpeRatio = risk.SharpeRatio(returns)
		report.MaxDrawdown = risk.MaxDrawdown(returns)
		report.Volatility = risk.AnnualizedVolatility(returns, 0)
	}

	return report
}
