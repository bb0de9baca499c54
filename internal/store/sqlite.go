package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quantlab/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ ResultStore = (*SQLiteStore)(nil)

// SQLiteStore implements ResultStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol          TEXT    NOT NULL,
	strategy        TEXT    NOT NULL,
	created_at      TEXT    NOT NULL,
	initial_capital REAL    NOT NULL,
	final_value     REAL    NOT NULL,
	total_return    REAL    NOT NULL,
	total_trades    INTEGER NOT NULL,
	winning_trades  INTEGER NOT NULL,
	losing_trades   INTEGER NOT NULL,
	avg_win         REAL    NOT NULL,
	avg_loss        REAL    NOT NULL,
	largest_win     REAL    NOT NULL,
	largest_loss    REAL    NOT NULL,
	sharpe_ratio    REAL    NOT NULL,
	max_drawdown    REAL    NOT NULL,
	volatility      REAL    NOT NULL
);

CREATE TABLE IF NOT EXISTS backtest_trades (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     INTEGER NOT NULL REFERENCES backtest_runs(id) ON DELETE CASCADE,
	date       TEXT    NOT NULL,
	type       TEXT    NOT NULL,
	price      REAL    NOT NULL,
	shares     INTEGER NOT NULL,
	value      REAL    NOT NULL,
	commission REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_symbol ON backtest_runs(symbol, created_at);
CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades(run_id);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun archives a run and its trade ledger in one transaction and returns
// the assigned run ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *BacktestRun) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	r := run.Report
	res, err := tx.ExecContext(ctx, `
		INSERT INTO backtest_runs (
			symbol, strategy, created_at,
			initial_capital, final_value, total_return,
			total_trades, winning_trades, losing_trades,
			avg_win, avg_loss, largest_win, largest_loss,
			sharpe_ratio, max_drawdown, volatility
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Symbol, run.Strategy, createdAt.Format(time.RFC3339),
		r.InitialCapital, r.FinalValue, r.TotalReturn,
		r.TotalTrades, r.WinningTrades, r.LosingTrades,
		r.AvgWin, r.AvgLoss, r.LargestWin, r.LargestLoss,
		r.SharpeRatio, r.MaxDrawdown, r.Volatility,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, t := range run.Trades {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO backtest_trades (run_id, date, type, price, shares, value, commission)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, t.Date.Format(time.RFC3339), string(t.Type),
			t.Price, t.Shares, t.Value, t.Commission,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetRun retrieves a run with its full trade ledger.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*BacktestRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, strategy, created_at,
			initial_capital, final_value, total_return,
			total_trades, winning_trades, losing_trades,
			avg_win, avg_loss, largest_win, largest_loss,
			sharpe_ratio, max_drawdown, volatility
		FROM backtest_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, type, price, shares, value, commission
		FROM backtest_trades WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Trade
		var date, typ string
		if err := rows.Scan(&date, &typ, &t.Price, &t.Shares, &t.Value, &t.Commission); err != nil {
			return nil, err
		}
		t.Date, _ = time.Parse(time.RFC3339, date)
		t.Type = domain.Action(typ)
		run.Trades = append(run.Trades, t)
	}
	return run, rows.Err()
}

// ListRuns returns the symbol's archived runs, newest first. Ledgers are not
// loaded; use GetRun for the trades.
func (s *SQLiteStore) ListRuns(ctx context.Context, symbol string) ([]BacktestRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, strategy, created_at,
			initial_capital, final_value, total_return,
			total_trades, winning_trades, losing_trades,
			avg_win, avg_loss, largest_win, largest_loss,
			sharpe_ratio, max_drawdown, volatility
		FROM backtest_runs WHERE symbol = ? ORDER BY created_at DESC, id DESC`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []BacktestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*BacktestRun, error) {
	var run BacktestRun
	var createdAt string
	r := &run.Report
	err := sc.Scan(
		&run.ID, &run.Symbol, &run.Strategy, &createdAt,
		&r.InitialCapital, &r.FinalValue, &r.TotalReturn,
		&r.TotalTrades, &r.WinningTrades, &r.LosingTrades,
		&r.AvgWin, &r.AvgLoss, &r.LargestWin, &r.LargestLoss,
		&r.SharpeRatio, &r.MaxDrawdown, &r.Volatility,
	)
	if err != nil {
		return nil, err
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &run, nil
}
