package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"quantlab/internal/config"
	"quantlab/internal/domain"
	"quantlab/internal/store"
	"quantlab/internal/util"
	api "quantlab/pkg/quantlab"
)

// testBars returns n daily bars ending yesterday, gently trending up with a
// mild oscillation so every indicator column gets real values.
func testBars(n int) []domain.Bar {
	end := time.Now().UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)
	bars := make([]domain.Bar, n)
	for i := range bars {
		c := 100 + 0.3*float64(i) + 2*math.Sin(float64(i)/4)
		bars[i] = domain.Bar{
			Date:   end.Add(-time.Duration(n-1-i) * 24 * time.Hour),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + int64(10*i),
		}
	}
	return bars
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	bars := store.NewParquetStore(dir)
	if err := bars.WriteBars(context.Background(), "TEST", testBars(120)); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	results, err := store.NewSQLiteStore(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { results.Close() })

	trading := config.TradingConfig{MaxPositionPct: 20, RiskPct: 2, StopLossPct: 5, TakeProfitPct: 10}
	return NewServer(bars, results, trading, util.NewLogger("error"))
}

func doJSON(t *testing.T, h http.Handler, method, target string, body, out any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec
}

func TestSignalEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	var resp api.SignalResponse
	rec := doJSON(t, h, "GET", "/api/v1/signal?symbol=test", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.Symbol != "TEST" {
		t.Errorf("symbol = %q, want TEST", resp.Symbol)
	}
	if resp.Strategy != "AI Composite" {
		t.Errorf("strategy = %q, want AI Composite", resp.Strategy)
	}
	switch resp.Signal.Action {
	case api.Buy, api.Sell, api.Hold:
	default:
		t.Errorf("action = %q", resp.Signal.Action)
	}
	if resp.Price <= 0 {
		t.Errorf("price = %v", resp.Price)
	}
	if resp.Signal.Action == api.Buy {
		if len(resp.Stops) == 0 {
			t.Error("buy signal missing stop levels")
		}
		if resp.Position == nil {
			t.Error("buy signal missing position plan")
		}
	}
}

func TestSignalMissingSymbol(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := doJSON(t, h, "GET", "/api/v1/signal", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSignalUnknownStrategy(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := doJSON(t, h, "GET", "/api/v1/signal?symbol=TEST&strategy=astrology", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSignalUnknownSymbol(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := doJSON(t, h, "GET", "/api/v1/signal?symbol=NOPE", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRiskEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	var resp api.RiskResponse
	rec := doJSON(t, h, "GET", "/api/v1/risk?symbol=TEST&tolerance=High", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.Tolerance != "High" {
		t.Errorf("tolerance = %q, want High", resp.Tolerance)
	}
	if resp.Profile.RiskScore < 1 || resp.Profile.RiskScore > 10 {
		t.Errorf("risk score = %v, want within [1, 10]", resp.Profile.RiskScore)
	}
	if resp.Profile.Volatility < 0 {
		t.Errorf("volatility = %v", resp.Profile.Volatility)
	}
}

func TestStrategyEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	var perf struct {
		WinRate         float64  `json:"win_rate"`
		TotalSignals    int      `json:"total_signals"`
		Recommendations []string `json:"recommendations"`
	}
	rec := doJSON(t, h, "GET", "/api/v1/strategy?symbol=TEST&strategy=RSI+Strategy", nil, &perf)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if perf.WinRate < 0 || perf.WinRate > 100 {
		t.Errorf("win rate = %v", perf.WinRate)
	}
	if perf.TotalSignals < 0 {
		t.Errorf("total signals = %d", perf.TotalSignals)
	}
}

func TestBacktestEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	req := api.BacktestRequest{
		Symbol: "TEST",
		Params: api.BacktestParams{Type: "ma_crossover", ShortWindow: 5, LongWindow: 10},
	}
	var resp api.BacktestResponse
	rec := doJSON(t, h, "POST", "/api/v1/backtest", req, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.Bars != 120 {
		t.Errorf("bars = %d, want 120", resp.Bars)
	}
	if resp.Result == nil {
		t.Fatal("missing result")
	}
	if resp.Result.Report.InitialCapital != 10000 {
		t.Errorf("initial capital = %v, want default 10000", resp.Result.Report.InitialCapital)
	}
	if resp.RunID != 0 {
		t.Errorf("run id = %d, want 0 when save not requested", resp.RunID)
	}
}

func TestBacktestInvalidBody(t *testing.T) {
	h := newTestServer(t).Handler()
	req := httptest.NewRequest("POST", "/api/v1/backtest", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestBacktestSaveAndFetch(t *testing.T) {
	h := newTestServer(t).Handler()

	req := api.BacktestRequest{
		Symbol: "TEST",
		Params: api.BacktestParams{Type: "rsi"},
		Config: &api.BacktestConfig{InitialCapital: 50000, PositionSize: 0.5, Commission: 2},
		Save:   true,
	}
	var resp api.BacktestResponse
	rec := doJSON(t, h, "POST", "/api/v1/backtest", req, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.RunID == 0 {
		t.Fatal("expected an archived run id")
	}
	if resp.Result.Report.InitialCapital != 50000 {
		t.Errorf("initial capital = %v, want 50000", resp.Result.Report.InitialCapital)
	}

	var runs api.RunsResponse
	rec = doJSON(t, h, "GET", "/api/v1/backtests?symbol=TEST", nil, &runs)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if len(runs.Runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs.Runs))
	}
	if runs.Runs[0].Strategy != "rsi" {
		t.Errorf("strategy = %q, want rsi", runs.Runs[0].Strategy)
	}

	var run api.Run
	rec = doJSON(t, h, "GET", fmt.Sprintf("/api/v1/backtests/%d", resp.RunID), nil, &run)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if run.ID != resp.RunID {
		t.Errorf("run id = %d, want %d", run.ID, resp.RunID)
	}
}

func TestGetRunNotFound(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := doJSON(t, h, "GET", "/api/v1/backtests/999", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSymbolsEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	var resp api.SymbolsResponse
	rec := doJSON(t, h, "GET", "/api/v1/symbols", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(resp.Symbols) != 1 || resp.Symbols[0] != "TEST" {
		t.Errorf("symbols = %v, want [TEST]", resp.Symbols)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t).Handler()
	req := httptest.NewRequest("OPTIONS", "/api/v1/signal", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q", got)
	}
}
