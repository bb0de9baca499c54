package quantlab

import "time"

// Action is a trading decision.
type Action string

// The closed set of actions.
const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Signal is one generated trading signal.
type Signal struct {
	Action     Action   `json:"action"`
	Strength   int      `json:"strength"`   // 1-10
	Confidence int      `json:"confidence"` // 0-100
	Reasons    []string `json:"reasons"`
}

// RiskProfile summarises a symbol's risk characteristics.
type RiskProfile struct {
	RiskScore   float64 `json:"risk_score"` // 1-10
	Volatility  float64 `json:"volatility"` // annualized, percent
	Beta        float64 `json:"beta"`
	MaxDrawdown float64 `json:"max_drawdown"` // percent, <= 0
	SharpeRatio float64 `json:"sharpe_ratio"`
	ValueAtRisk float64 `json:"value_at_risk"` // 95%, absolute dollars
}

// Position is a concrete position size for one trade.
type Position struct {
	Shares int     `json:"shares"`
	Value  float64 `json:"value"`
}

// Trade is one executed backtest order.
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

// PerformanceReport is the summary of a backtest run.
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

// BacktestParams selects and tunes a backtest strategy. Zero-valued fields
// take the server defaults.
type BacktestParams struct {
	Type        string  `json:"type"` // ma_crossover, rsi, macd, bollinger, combined
	ShortWindow int     `json:"short_window"`
	LongWindow  int     `json:"long_window"`
	Period      int     `json:"period"`
	Oversold    float64 `json:"oversold"`
	Overbought  float64 `json:"overbought"`
	Fast        int     `json:"fast"`
	Slow        int     `json:"slow"`
	Signal      int     `json:"signal"`
	BBPeriod    int     `json:"bb_period"`
	BBStdDev    float64 `json:"bb_std_dev"`
}

// BacktestConfig sets the capital model for a run.
type BacktestConfig struct {
	InitialCapital float64 `json:"initial_capital"`
	PositionSize   float64 `json:"position_size"` // fraction of cash, (0, 1]
	Commission     float64 `json:"commission"`    // flat, per order
}

// BacktestResult is a run's report with its trade ledger and equity curve.
type BacktestResult struct {
	Report PerformanceReport `json:"report"`
	Trades []Trade           `json:"trades"`
	Equity []EquityPoint     `json:"equity"`
}

// Run is an archived backtest run.
type Run struct {
	ID        int64             `json:"id"`
	Symbol    string            `json:"symbol"`
	Strategy  string            `json:"strategy"`
	CreatedAt time.Time         `json:"created_at"`
	Report    PerformanceReport `json:"report"`
	Trades    []Trade           `json:"trades"`
}

// SignalResponse is the payload of GET /api/v1/signal.
type SignalResponse struct {
	Symbol     string             `json:"symbol"`
	Strategy   string             `json:"strategy"`
	AsOf       string             `json:"as_of"`
	Price      float64            `json:"price"`
	Signal     Signal             `json:"signal"`
	Stops      map[string]float64 `json:"stops,omitempty"`
	TakeProfit float64            `json:"take_profit,omitempty"`
	Position   *Position          `json:"position,omitempty"`
}

// RiskResponse is the payload of GET /api/v1/risk.
type RiskResponse struct {
	Symbol    string      `json:"symbol"`
	Tolerance string      `json:"tolerance"`
	AsOf      string      `json:"as_of"`
	Price     float64     `json:"price"`
	Profile   RiskProfile `json:"profile"`
}

// StrategyPerformance is the payload of GET /api/v1/strategy.
type StrategyPerformance struct {
	WinRate         float64  `json:"win_rate"`
	AvgReturn       float64  `json:"avg_return"`
	TotalSignals    int      `json:"total_signals"`
	Recommendations []string `json:"recommendations"`
}

// BacktestRequest is the body of POST /api/v1/backtest.
type BacktestRequest struct {
	Symbol string          `json:"symbol"`
	Start  string          `json:"start,omitempty"` // YYYY-MM-DD
	End    string          `json:"end,omitempty"`
	Params BacktestParams  `json:"params"`
	Config *BacktestConfig `json:"config,omitempty"`
	Save   bool            `json:"save,omitempty"`
}

// BacktestResponse is the payload of POST /api/v1/backtest.
type BacktestResponse struct {
	Symbol string          `json:"symbol"`
	RunID  int64           `json:"run_id,omitempty"`
	Bars   int             `json:"bars"`
	Result *BacktestResult `json:"result"`
}

// RunsResponse is the payload of GET /api/v1/backtests.
type RunsResponse struct {
	Symbol string `json:"symbol"`
	Runs   []Run  `json:"runs"`
}

// SymbolsResponse is the payload of GET /api/v1/symbols.
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}
