// Generates a trading signal for one symbol from stored daily bars and
// prints it with the derived stop and sizing plan.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"quantlab/internal/config"
	"quantlab/internal/domain"
	"quantlab/internal/indicators"
	"quantlab/internal/risk"
	"quantlab/internal/signal"
	"quantlab/internal/sizing"
	"quantlab/internal/stops"
	"quantlab/internal/store"
)

func main() {
	cfgPath := flag.String("config", defaultConfigPath(), "config file path")
	symbol := flag.String("symbol", "", "symbol to analyze (required)")
	strategyName := flag.String("strategy", string(signal.Composite), "signal strategy")
	sensitivity := flag.String("sensitivity", string(signal.Moderate), "RSI sensitivity: Conservative, Moderate or Aggressive")
	portfolio := flag.Float64("portfolio", 10000, "portfolio value for position sizing")
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

	sig, err := signal.Generate(frame, signal.Strategy(*strategyName), signal.Sensitivity(*sensitivity))
	if err != nil {
		log.Fatalf("generating signal: %v", err)
	}

	last := frame.Bars[frame.Len()-1]
	fmt.Printf("%s  %s  close %.2f  (%d bars)\n", sym, last.Date.Format("2006-01-02"), last.Close, len(bars))
	fmt.Printf("strategy:   %s\n", *strategyName)
	fmt.Printf("signal:     %s  strength %d/10  confidence %d%%\n", sig.Action, sig.Strength, sig.Confidence)
	for _, r := range sig.Reasons {
		fmt.Printf("  - %s\n", r)
	}

	if sig.Action != domain.Buy {
		return
	}

	levels, err := stops.Recommendations(last.Close, frame, risk.ToleranceMedium)
	if err != nil {
		log.Fatalf("deriving stops: %v", err)
	}
	fmt.Println("stop levels:")
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-18s %.2f\n", name, levels[name])
	}

	stop := levels["recommended"]
	if tp, err := stops.TakeProfit(last.Close, stop, stops.TargetRatio, 0); err == nil {
		fmt.Printf("take profit:  %.2f\n", tp)
	}

	pos, err := sizing.RiskBased(*portfolio, last.Close, stop, cfg.Trading.RiskPct, cfg.Trading.MaxPositionPct)
	if err != nil {
		log.Fatalf("sizing position: %v", err)
	}
	fmt.Printf("position:     %d shares (%.2f)\n", pos.Shares, pos.Value)
}

func defaultConfigPath() string {
	if p := os.Getenv("QUANTLAB_CONFIG"); p != "" {
		return p
	}
	return "config/quantlab.yaml"
}
