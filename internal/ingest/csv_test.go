package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quantlab/internal/store"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing CSV: %v", err)
	}
	return path
}

func TestLoadCSVBars(t *testing.T) {
	path := writeFile(t, `date,open,high,low,close,volume
2024-01-02,100.5,102,99.5,101,15000
2024-01-03,101,103,100,102.5,18000
`)

	bars, err := LoadCSVBars(path)
	if err != nil {
		t.Fatalf("LoadCSVBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("len = %d, want 2", len(bars))
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !bars[0].Date.Equal(want) {
		t.Errorf("date = %v, want %v", bars[0].Date, want)
	}
	if bars[0].Close != 101 || bars[0].Volume != 15000 {
		t.Errorf("bar = %+v", bars[0])
	}
	if bars[1].High != 103 {
		t.Errorf("high = %v, want 103", bars[1].High)
	}
}

func TestLoadCSVBarsHeaderOrder(t *testing.T) {
	// Columns may appear in any order and any case.
	path := writeFile(t, `Volume,Close,Date,Open,High,Low
5000,50,2024-06-10,49,51,48
`)

	bars, err := LoadCSVBars(path)
	if err != nil {
		t.Fatalf("LoadCSVBars: %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 50 || bars[0].Volume != 5000 {
		t.Errorf("bars = %+v", bars)
	}
}

func TestLoadCSVBarsMissingColumn(t *testing.T) {
	path := writeFile(t, `date,open,high,low,close
2024-01-02,1,2,1,2
`)
	if _, err := LoadCSVBars(path); err == nil {
		t.Error("expected error for missing volume column")
	}
}

func TestLoadCSVBarsBadRow(t *testing.T) {
	path := writeFile(t, `date,open,high,low,close,volume
2024-01-02,abc,102,99,101,1000
`)
	if _, err := LoadCSVBars(path); err == nil {
		t.Error("expected error for non-numeric open")
	}
}

func TestLoadCSVBarsHeaderOnly(t *testing.T) {
	path := writeFile(t, "date,open,high,low,close,volume\n")
	bars, err := LoadCSVBars(path)
	if err != nil {
		t.Fatalf("LoadCSVBars: %v", err)
	}
	if bars != nil {
		t.Errorf("bars = %v, want nil", bars)
	}
}

func TestImportCSV(t *testing.T) {
	path := writeFile(t, `date,open,high,low,close,volume
2024-01-02,100,102,99,101,15000
2024-01-03,101,103,100,102,18000
2024-01-04,102,104,101,103,21000
`)

	ps := store.NewParquetStore(t.TempDir())
	n, err := ImportCSV(context.Background(), ps, "acme", path)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if n != 3 {
		t.Errorf("imported = %d, want 3", n)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	bars, err := ps.ReadBars(context.Background(), "ACME", start, end)
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(bars) != 3 {
		t.Errorf("stored = %d, want 3", len(bars))
	}
}
