// Package quantlab provides a Go SDK for the quantlab-server API.
package quantlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a running quantlab-server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an API client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Symbols lists the symbols with stored bar history.
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	var resp SymbolsResponse
	if err := c.get(ctx, "/api/v1/symbols", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Symbols, nil
}

// Signal generates a trading signal for the symbol. strategy and
// sensitivity may be empty to use the server defaults.
func (c *Client) Signal(ctx context.Context, symbol, strategy, sensitivity string) (*SignalResponse, error) {
	q := url.Values{"symbol": {symbol}}
	if strategy != "" {
		q.Set("strategy", strategy)
	}
	if sensitivity != "" {
		q.Set("sensitivity", sensitivity)
	}
	var resp SignalResponse
	if err := c.get(ctx, "/api/v1/signal", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Risk returns the symbol's risk profile. tolerance may be empty for the
// server default.
func (c *Client) Risk(ctx context.Context, symbol, tolerance string) (*RiskResponse, error) {
	q := url.Values{"symbol": {symbol}}
	if tolerance != "" {
		q.Set("tolerance", tolerance)
	}
	var resp RiskResponse
	if err := c.get(ctx, "/api/v1/risk", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StrategyPerformance replays the strategy over the symbol's history.
// strategy may be empty for the server default.
func (c *Client) StrategyPerformance(ctx context.Context, symbol, strategy string) (*StrategyPerformance, error) {
	q := url.Values{"symbol": {symbol}}
	if strategy != "" {
		q.Set("strategy", strategy)
	}
	var resp StrategyPerformance
	if err := c.get(ctx, "/api/v1/strategy", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Backtest runs a backtest on the server.
func (c *Client) Backtest(ctx context.Context, req BacktestRequest) (*BacktestResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/backtest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp BacktestResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Runs lists the symbol's archived backtest runs, newest first.
func (c *Client) Runs(ctx context.Context, symbol string) ([]Run, error) {
	var resp RunsResponse
	if err := c.get(ctx, "/api/v1/backtests", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

// Run retrieves one archived backtest run with its trade ledger.
func (c *Client) Run(ctx context.Context, id int64) (*Run, error) {
	var run Run
	if err := c.get(ctx, fmt.Sprintf("/api/v1/backtests/%d", id), nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
