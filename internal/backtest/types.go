// Package backtest replays a trading strategy over a historical bar series
// as a deterministic single-threaded fold: one pass, one open lot, no
// shorting. Indicator series for the strategy rules are computed once up
// front so each run is O(n) in bar count.
package backtest

import (
	"errors"
	"fmt"

	"quantlab/internal/domain"
)

var (
	errNoBars              = errors.New("backtest: empty bar sequence")
	errInvalidCapital      = errors.New("backtest: initial capital must be positive")
	errInvalidPositionSize = errors.New("backtest: position size must be in (0, 1]")
	errInvalidCommission   = errors.New("backtest: commission must not be negative")
)

// StrategyType selects the backtest rule.
type StrategyType string

// The closed set of backtest strategies.
const (
	MACrossover StrategyType = "ma_crossover"
	RSIReversal StrategyType = "rsi"
	MACDTrend   StrategyType = "macd"
	BollingerRV StrategyType = "bollinger"
	Combined    StrategyType = "combined"
)

// Params carries the numeric knobs for every strategy rule. Zero values are
// replaced with the standard defaults, so callers only set what they want to
// override.
type Params struct {
	Type StrategyType `yaml:"type" json:"type"`

	// ma_crossover
	ShortWindow int `yaml:"short_window" json:"short_window"`
	LongWindow  int `yaml:"long_window" json:"long_window"`

	// rsi
	Period     int     `yaml:"period" json:"period"`
	Oversold   float64 `yaml:"oversold" json:"oversold"`
	Overbought float64 `yaml:"overbought" json:"overbought"`

	// macd
	Fast   int `yaml:"fast" json:"fast"`
	Slow   int `yaml:"slow" json:"slow"`
	Signal int `yaml:"signal" json:"signal"`

	// bollinger
	BBPeriod int     `yaml:"bb_period" json:"bb_period"`
	BBStdDev float64 `yaml:"bb_std_dev" json:"bb_std_dev"`
}

// withDefaults fills zero-valued fields with the standard parameters.
func (p Params) withDefaults() Params {
	if p.Type == "" {
		p.Type = MACrossover
	}
	if p.ShortWindow == 0 {
		p.ShortWindow = 20
	}
	if p.LongWindow == 0 {
		p.LongWindow = 50
	}
	if p.Period == 0 {
		p.Period = 14
	}
	if p.Oversold == 0 {
		p.Oversold = 30
	}
	if p.Overbought == 0 {
		p.Overbought = 70
	}
	if p.Fast == 0 {
		p.Fast = 12
	}
	if p.Slow == 0 {
		p.Slow = 26
	}
	if p.Signal == 0 {
		p.Signal = 9
	}
	if p.BBPeriod == 0 {
		p.BBPeriod = 20
	}
	if p.BBStdDev == 0 {
		p.BBStdDev = 2
	}
	return p
}

// Config is the money side of a backtest run.
type Config struct {
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	PositionSize   float64 `yaml:"position_size" json:"position_size"` // fraction of cash, (0, 1]
	Commission     float64 `yaml:"commission" json:"commission"`       // flat, per order
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{InitialCapital: 10000, PositionSize: 1.0, Commission: 1.0}
}

func (c Config) validate() error {
	if c.InitialCapital <= 0 {
		return errInvalidCapital
	}
	if c.PositionSize <= 0 || c.PositionSize > 1 {
		return fmt.Errorf("%w: got %v", errInvalidPositionSize, c.PositionSize)
	}
	if c.Commission < 0 {
		return errInvalidCommission
	}
	return nil
}

// Result is everything a run produces: the report, the full trade ledger,
// and the equity curve sampled once per bar before that bar's action.
type Result struct {
	Report domain.PerformanceReport `json:"report"`
	Trades []domain.Trade           `json:"trades"`
	Equity []domain.EquityPoint     `json:"equity"`
}
