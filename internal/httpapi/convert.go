package httpapi

import (
	"quantlab/internal/backtest"
	"quantlab/internal/domain"
	"quantlab/internal/store"
	"quantlab/internal/strategy"
	api "quantlab/pkg/quantlab"
)

// Converters between the engine's domain types and the SDK's wire types.
// The wire types live in pkg/quantlab so external callers can name them.

func toSignal(s domain.Signal) api.Signal {
	return api.Signal{
		Action:     api.Action(s.Action),
		Strength:   s.Strength,
		Confidence: s.Confidence,
		Reasons:    s.Reasons,
	}
}

func toProfile(p domain.RiskProfile) api.RiskProfile {
	return api.RiskProfile{
		RiskScore:   p.RiskScore,
		Volatility:  p.Volatility,
		Beta:        p.Beta,
		MaxDrawdown: p.MaxDrawdown,
		SharpeRatio: p.SharpeRatio,
		ValueAtRisk: p.ValueAtRisk,
	}
}

func toPosition(s domain.SizingRecommendation) api.Position {
	return api.Position{Shares: s.Shares, Value: s.Value}
}

func toPerformance(p strategy.Performance) api.StrategyPerformance {
	return api.StrategyPerformance{
		WinRate:         p.WinRate,
		AvgReturn:       p.AvgReturn,
		TotalSignals:    p.TotalSignals,
		Recommendations: p.Recommendations,
	}
}

func toTrades(trades []domain.Trade) []api.Trade {
	if trades == nil {
		return nil
	}
	out := make([]api.Trade, len(trades))
	for i, t := range trades {
		out[i] = api.Trade{
			Date:       t.Date,
			Type:       api.Action(t.Type),
			Price:      t.Price,
			Shares:     t.Shares,
			Value:      t.Value,
			Commission: t.Commission,
		}
	}
	return out
}

func toEquity(points []domain.EquityPoint) []api.EquityPoint {
	if points == nil {
		return nil
	}
	out := make([]api.EquityPoint, len(points))
	for i, pt := range points {
		out[i] = api.EquityPoint{Date: pt.Date, Value: pt.Value}
	}
	return out
}

func toReport(r domain.PerformanceReport) api.PerformanceReport {
	return api.PerformanceReport{
		InitialCapital: r.InitialCapital,
		FinalValue:     r.FinalValue,
		TotalReturn:    r.TotalReturn,
		TotalTrades:    r.TotalTrades,
		WinningTrades:  r.WinningTrades,
		LosingTrades:   r.LosingTrades,
		AvgWin:         r.AvgWin,
		AvgLoss:        r.AvgLoss,
		LargestWin:     r.LargestWin,
		LargestLoss:    r.LargestLoss,
		SharpeRatio:    r.SharpeRatio,
		MaxDrawdown:    r.MaxDrawdown,
		Volatility:     r.Volatility,
	}
}

func toResult(r *backtest.Result) *api.BacktestResult {
	if r == nil {
		return nil
	}
	return &api.BacktestResult{
		Report: toReport(r.Report),
		Trades: toTrades(r.Trades),
		Equity: toEquity(r.Equity),
	}
}

func toRun(r *store.BacktestRun) api.Run {
	return api.Run{
		ID:        r.ID,
		Symbol:    r.Symbol,
		Strategy:  r.Strategy,
		CreatedAt: r.CreatedAt,
		Report:    toReport(r.Report),
		Trades:    toTrades(r.Trades),
	}
}

func fromParams(p api.BacktestParams) backtest.Params {
	return backtest.Params{
		Type:        backtest.StrategyType(p.Type),
		ShortWindow: p.ShortWindow,
		LongWindow:  p.LongWindow,
		Period:      p.Period,
		Oversold:    p.Oversold,
		Overbought:  p.Overbought,
		Fast:        p.Fast,
		Slow:        p.Slow,
		Signal:      p.Signal,
		BBPeriod:    p.BBPeriod,
		BBStdDev:    p.BBStdDev,
	}
}

func fromConfig(c *api.BacktestConfig) (backtest.Config, bool) {
	if c == nil {
		return backtest.Config{}, false
	}
	return backtest.Config{
		InitialCapital: c.InitialCapital,
		PositionSize:   c.PositionSize,
		Commission:     c.Commission,
	}, true
}
