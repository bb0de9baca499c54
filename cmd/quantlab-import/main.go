// One-shot tool: import daily bar history from a CSV file into the
// parquet store.
//
// Usage:
//
//	quantlab-import -symbol AAPL -file aapl.csv
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"quantlab/internal/config"
	"quantlab/internal/ingest"
	"quantlab/internal/store"
	"quantlab/internal/util"
)

func main() {
	cfgPath := flag.String("config", defaultConfigPath(), "config file path")
	symbol := flag.String("symbol", "", "symbol to import bars under (required)")
	file := flag.String("file", "", "CSV file with date,open,high,low,close,volume columns (required)")
	flag.Parse()

	if *symbol == "" || *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	util.SetDefault(util.NewLoggerTo(os.Stdout, cfg.Logging.Level, cfg.Logging.Format))

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	n, err := ingest.ImportCSV(context.Background(), ps, *symbol, *file)
	if err != nil {
		log.Fatalf("importing bars: %v", err)
	}

	if n == 0 {
		slog.Info("no bars found in file", "file", *file)
	} else {
		slog.Info("import complete", "symbol", *symbol, "bars", n)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("QUANTLAB_CONFIG"); p != "" {
		return p
	}
	return "config/quantlab.yaml"
}
