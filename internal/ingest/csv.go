// Package ingest loads daily bar history from external files into the
// parquet store.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/store"
)

// LoadCSVBars reads daily bars from a CSV file with a header row of
// date,open,high,low,close,volume. Dates are YYYY-MM-DD. Rows may appear in
// any order; the result is returned as parsed, unsorted.
func LoadCSVBars(path string) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	cols, err := columnIndex(records[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	bars := make([]domain.Bar, 0, len(records)-1)
	for i, row := range records[1:] {
		bar, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// ImportCSV loads a CSV file and writes its bars under the given symbol.
// Returns the number of bars written.
func ImportCSV(ctx context.Context, bs store.BarStore, symbol, path string) (int, error) {
	bars, err := LoadCSVBars(path)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, nil
	}
	if err := bs.WriteBars(ctx, strings.ToUpper(symbol), bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

// columnIndex maps the fields we need to their header positions,
// case-insensitively.
func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := cols[need]; !ok {
			return nil, fmt.Errorf("missing column %q", need)
		}
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (domain.Bar, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(row) {
			return "", fmt.Errorf("short row, missing %q", name)
		}
		return strings.TrimSpace(row[i]), nil
	}

	var bar domain.Bar

	ds, err := field("date")
	if err != nil {
		return bar, err
	}
	bar.Date, err = time.Parse("2006-01-02", ds)
	if err != nil {
		return bar, fmt.Errorf("invalid date %q", ds)
	}

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
	} {
		s, err := field(f.name)
		if err != nil {
			return bar, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return bar, fmt.Errorf("invalid %s %q", f.name, s)
		}
		*f.dst = v
	}

	vs, err := field("volume")
	if err != nil {
		return bar, err
	}
	bar.Volume, err = strconv.ParseInt(vs, 10, 64)
	if err != nil {
		return bar, fmt.Errorf("invalid volume %q", vs)
	}

	return bar, nil
}
