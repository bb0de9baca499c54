// Package store persists and retrieves quantlab's durable data: historical
// bars in Parquet files and archived backtest runs in SQLite.
package store

import (
	"context"
	"time"

	"quantlab/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars for one symbol.
	WriteBars(ctx context.Context, symbol string, bars []domain.Bar) error

	// ReadBars returns the symbol's bars within [start, end], ascending.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols with stored bars.
	ListSymbols(ctx context.Context) ([]string, error)
}

// BacktestRun is one archived backtest: the run metadata, its report, and
// the full trade ledger.
type BacktestRun struct {
	ID        int64                    `json:"id"`
	Symbol    string                   `json:"symbol"`
	Strategy  string                   `json:"strategy"`
	CreatedAt time.Time                `json:"created_at"`
	Report    domain.PerformanceReport `json:"report"`
	Trades    []domain.Trade           `json:"trades"`
}

// ResultStore archives completed backtest runs.
type ResultStore interface {
	// SaveRun archives a run and returns its assigned ID.
	SaveRun(ctx context.Context, run *BacktestRun) (int64, error)

	// GetRun retrieves a run with its trade ledger.
	GetRun(ctx context.Context, id int64) (*BacktestRun, error)

	// ListRuns returns the symbol's runs, newest first, without ledgers.
	ListRuns(ctx context.Context, symbol string) ([]BacktestRun, error)
}
