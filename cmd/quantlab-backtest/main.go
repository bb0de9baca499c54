// Runs a historical backtest for one symbol and prints the performance
// report. With -save the run is archived to the SQLite results store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"quantlab/internal/backtest"
	"quantlab/internal/config"
	"quantlab/internal/indicators"
	"quantlab/internal/store"
)

func main() {
	cfgPath := flag.String("config", defaultConfigPath(), "config file path")
	symbol := flag.String("symbol", "", "symbol to backtest (required)")
	strategyName := flag.String("strategy", string(backtest.MACrossover), "strategy: ma_crossover, rsi, macd, bollinger or combined")
	capital := flag.Float64("capital", 0, "initial capital (0 uses config)")
	commission := flag.Float64("commission", -1, "flat commission per order (negative uses config)")
	fraction := flag.Float64("fraction", 0, "fraction of cash per buy, (0, 1] (0 uses config)")
	short := flag.Int("short", 0, "short moving-average window override")
	long := flag.Int("long", 0, "long moving-average window override")
	period := flag.Int("period", 0, "RSI period override")
	save := flag.Bool("save", false, "archive the run to the SQLite results store")
	flag.Parse()

	if *symbol == "" {
		flag.Usage()
		os.Exit(1)
	}
	sym := strings.ToUpper(*symbol)

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	btCfg := cfg.Backtest
	if *capital > 0 {
		btCfg.InitialCapital = *capital
	}
	if *commission >= 0 {
		btCfg.Commission = *commission
	}
	if *fraction > 0 {
		btCfg.PositionSize = *fraction
	}

	params := backtest.Params{
		Type:        backtest.StrategyType(*strategyName),
		ShortWindow: *short,
		LongWindow:  *long,
		Period:      *period,
	}

	ctx := context.Background()
	ps := store.NewParquetStore(cfg.Storage.DataDir)

	end := time.Now().UTC()
	bars, err := ps.ReadBars(ctx, sym, end.AddDate(-2, 0, 0), end)
	if err != nil {
		log.Fatalf("reading bars: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("no bars stored for %s", sym)
	}

	frame, err := indicators.Enrich(bars)
	if err != nil {
		log.Fatalf("computing indicators: %v", err)
	}

	result, err := backtest.Run(frame, params, btCfg)
	if err != nil {
		log.Fatalf("running backtest: %v", err)
	}

	printReport(sym, *strategyName, len(bars), result)

	if *save {
		ss, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening results store: %v", err)
		}
		defer ss.Close()

		id, err := ss.SaveRun(ctx, &store.BacktestRun{
			Symbol:    sym,
			Strategy:  *strategyName,
			CreatedAt: time.Now().UTC(),
			Report:    result.Report,
			Trades:    result.Trades,
		})
		if err != nil {
			log.Fatalf("archiving run: %v", err)
		}
		fmt.Printf("\narchived as run %d\n", id)
	}
}

func printReport(symbol, strategy string, bars int, result *backtest.Result) {
	r := result.Report
	fmt.Printf("%s  %s  (%d bars)\n\n", symbol, strategy, bars)
	fmt.Printf("initial capital:  %.2f\n", r.InitialCapital)
	fmt.Printf("final value:      %.2f\n", r.FinalValue)
	fmt.Printf("total return:     %.2f%%\n", r.TotalReturn)
	fmt.Printf("trades:           %d  (%d won, %d lost)\n", r.TotalTrades, r.WinningTrades, r.LosingTrades)
	if r.TotalTrades > 0 {
		fmt.Printf("avg win/loss:     %.2f / %.2f\n", r.AvgWin, r.AvgLoss)
		fmt.Printf("largest win/loss: %.2f / %.2f\n", r.LargestWin, r.LargestLoss)
	}
	fmt.Printf("sharpe ratio:     %.2f\n", r.SharpeRatio)
	fmt.Printf("max drawdown:     %.2f%%\n", r.MaxDrawdown)
	fmt.Printf("volatility:       %.2f%%\n", r.Volatility)

	if len(result.Trades) > 0 {
		fmt.Println("\ntrade ledger:")
		for _, tr := range result.Trades {
			fmt.Printf("  %s  %-4s  %6d @ %.2f\n", tr.Date.Format("2006-01-02"), tr.Type, tr.Shares, tr.Price)
		}
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("QUANTLAB_CONFIG"); p != "" {
		return p
	}
	return "config/quantlab.yaml"
}
