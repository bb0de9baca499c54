// Package httpapi exposes the signal, risk and backtest engines over a
// small JSON REST API.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quantlab/internal/backtest"
	"quantlab/internal/config"
	"quantlab/internal/domain"
	"quantlab/internal/indicators"
	"quantlab/internal/risk"
	"quantlab/internal/signal"
	"quantlab/internal/sizing"
	"quantlab/internal/stops"
	"quantlab/internal/store"
	"quantlab/internal/strategy"
	api "quantlab/pkg/quantlab"
)

// defaultLookback is how far back bars are read when the request does not
// bound the range.
const defaultLookback = 2 * 365 * 24 * time.Hour

// Server serves the quantlab HTTP API.
type Server struct {
	bars    store.BarStore
	results store.ResultStore // nil disables run archiving
	trading config.TradingConfig
	log     *slog.Logger
}

// NewServer creates an API server over the given stores. results may be nil,
// in which case backtest runs are not archived and the runs endpoints return
// 503.
func NewServer(bars store.BarStore, results store.ResultStore, trading config.TradingConfig, log *slog.Logger) *Server {
	return &Server{bars: bars, results: results, trading: trading, log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/symbols", s.handleSymbols)
	mux.HandleFunc("GET /api/v1/signal", s.handleSignal)
	mux.HandleFunc("GET /api/v1/risk", s.handleRisk)
	mux.HandleFunc("GET /api/v1/strategy", s.handleStrategy)
	mux.HandleFunc("POST /api/v1/backtest", s.handleBacktest)
	mux.HandleFunc("GET /api/v1/backtests", s.handleListRuns)
	mux.HandleFunc("GET /api/v1/backtests/{id}", s.handleGetRun)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// parseRange extracts the optional start/end query params. Missing bounds
// default to the trailing two years.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q", v)
		}
		end = t
	}
	start := end.Add(-defaultLookback)
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q", v)
		}
		start = t
	}
	return start, end, nil
}

// loadFrame reads the symbol's bars and enriches them with indicators.
func (s *Server) loadFrame(r *http.Request, symbol string) (*domain.Frame, error) {
	start, end, err := parseRange(r)
	if err != nil {
		return nil, err
	}
	bars, err := s.bars.ReadBars(r.Context(), symbol, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for %s", symbol)
	}
	return indicators.Enrich(bars)
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.bars.ListSymbols(r.Context())
	if err != nil {
		s.log.Error("listing symbols", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list symbols")
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	writeJSON(w, api.SymbolsResponse{Symbols: symbols})
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	strat := signal.Strategy(r.URL.Query().Get("strategy"))
	if strat == "" {
		strat = signal.Composite
	}
	sens := signal.Sensitivity(r.URL.Query().Get("sensitivity"))
	if sens == "" {
		sens = signal.Moderate
	}

	frame, err := s.loadFrame(r, symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	sig, err := signal.Generate(frame, strat, sens)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	last := frame.Bars[frame.Len()-1]
	resp := api.SignalResponse{
		Symbol:   symbol,
		Strategy: string(strat),
		AsOf:     last.Date.Format("2006-01-02"),
		Price:    last.Close,
		Signal:   toSignal(sig),
	}

	// Attach an exit and sizing plan for actionable signals.
	if sig.Action == domain.Buy {
		levels, err := stops.Recommendations(last.Close, frame, risk.ToleranceMedium)
		if err == nil {
			resp.Stops = levels
			stop := levels["recommended"]
			if tp, err := stops.TakeProfit(last.Close, stop, stops.TargetRatio, 0); err == nil {
				resp.TakeProfit = tp
			}
			portfolio := portfolioParam(r)
			if pos, err := sizing.RiskBased(portfolio, last.Close, stop, s.trading.RiskPct, s.trading.MaxPositionPct); err == nil {
				p := toPosition(pos)
				resp.Position = &p
			}
		}
	}

	writeJSON(w, resp)
}

// portfolioParam reads the optional portfolio query param, defaulting to
// 10000 when absent or unparsable.
func portfolioParam(r *http.Request) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get("portfolio"), 64)
	if err != nil || v <= 0 {
		return 10000
	}
	return v
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	tol := risk.Tolerance(r.URL.Query().Get("tolerance"))
	if tol == "" {
		tol = risk.ToleranceMedium
	}

	frame, err := s.loadFrame(r, symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	last := frame.Bars[frame.Len()-1]
	profile, err := risk.Analyze(frame, last.Close, tol)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, api.RiskResponse{
		Symbol:    symbol,
		Tolerance: string(tol),
		AsOf:      last.Date.Format("2006-01-02"),
		Price:     last.Close,
		Profile:   toProfile(profile),
	})
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	strat := signal.Strategy(r.URL.Query().Get("strategy"))
	if strat == "" {
		strat = signal.Composite
	}

	frame, err := s.loadFrame(r, symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	perf, err := strategy.Analyze(frame, strat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, toPerformance(perf))
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req api.BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	symbol := strings.ToUpper(req.Symbol)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}

	end := time.Now().UTC()
	if req.End != "" {
		t, err := time.Parse("2006-01-02", req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid end date %q", req.End))
			return
		}
		end = t
	}
	start := end.Add(-defaultLookback)
	if req.Start != "" {
		t, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid start date %q", req.Start))
			return
		}
		start = t
	}

	bars, err := s.bars.ReadBars(r.Context(), symbol, start, end)
	if err != nil {
		s.log.Error("reading bars", "symbol", symbol, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read bars")
		return
	}
	if len(bars) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no bars for %s", symbol))
		return
	}

	frame, err := indicators.Enrich(bars)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	cfg := backtest.DefaultConfig()
	if c, ok := fromConfig(req.Config); ok {
		cfg = c
	}
	result, err := backtest.Run(frame, fromParams(req.Params), cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := api.BacktestResponse{Symbol: symbol, Bars: len(bars), Result: toResult(result)}

	if req.Save {
		if s.results == nil {
			writeError(w, http.StatusServiceUnavailable, "run archive not configured")
			return
		}
		id, err := s.results.SaveRun(r.Context(), &store.BacktestRun{
			Symbol:    symbol,
			Strategy:  req.Params.Type,
			CreatedAt: time.Now().UTC(),
			Report:    result.Report,
			Trades:    result.Trades,
		})
		if err != nil {
			s.log.Error("archiving run", "symbol", symbol, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to archive run")
			return
		}
		resp.RunID = id
		s.log.Info("backtest archived", "symbol", symbol, "run_id", id)
	}

	writeJSON(w, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "run archive not configured")
		return
	}
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	runs, err := s.results.ListRuns(r.Context(), symbol)
	if err != nil {
		s.log.Error("listing runs", "symbol", symbol, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	out := make([]api.Run, len(runs))
	for i := range runs {
		out[i] = toRun(&runs[i])
	}
	writeJSON(w, api.RunsResponse{Symbol: symbol, Runs: out})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "run archive not configured")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	run, err := s.results.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("run %d not found", id))
		return
	}
	writeJSON(w, toRun(run))
}
