// Package signal fetches trading signals from the LLM analysis service.
package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mt5-trader/internal/interfaces"
	"mt5-trader/internal/logger"
	"mt5-trader/internal/types"
)

type Params struct {
	BaseURL  string
	Timeout  time.Duration
	Retries  int
	Expiry   time.Duration // stamped on signals that carry no expiry
	Interval time.Duration // minimum gap between analysis requests
}

// Client pulls signals over the analysis service's REST API. Requests
// are retried with exponential backoff; a service that stays down simply
// yields no signals for the cycle.
type Client struct {
	p           Params
	client      *http.Client
	lastRequest time.Time
}

var _ interfaces.SignalSource = (*Client)(nil)

func NewClient(p Params) *Client {
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	if p.Retries == 0 {
		p.Retries = 3
	}
	return &Client{
		p:      Params{BaseURL: strings.TrimRight(p.BaseURL, "/"), Timeout: p.Timeout, Retries: p.Retries, Expiry: p.Expiry, Interval: p.Interval},
		client: &http.Client{Timeout: p.Timeout},
	}
}

// wireSignal is the analysis service's representation of one signal.
type wireSignal struct {
	Symbol     string  `json:"symbol"`
	SignalType string  `json:"signal_type"`
	Confidence float64 `json:"confidence"`
	EntryPrice float64 `json:"entry_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	Reasoning  string  `json:"reasoning"`
	Timestamp  string  `json:"timestamp"`
	ExpiresAt  string  `json:"expires_at"`
}

// Signals fetches actionable signals for the given symbols. HOLD
// recommendations are filtered out here, before validation ever sees
// them. Respects the analysis interval: asking again too soon returns
// no signals without touching the service.
func (c *Client) Signals(ctx context.Context, symbols []string) ([]types.TradingSignal, error) {
	now := time.Now().UTC()
	if c.p.Interval > 0 && !c.lastRequest.IsZero() && now.Sub(c.lastRequest) < c.p.Interval {
		logger.Debug(ctx, "Skipping signal fetch, analysis interval not reached",
			"since_last", now.Sub(c.lastRequest).String(),
			"interval", c.p.Interval.String(),
		)
		return nil, nil
	}

	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))

	var payload struct {
		Signals []wireSignal `json:"signals"`
	}
	if err := c.getWithRetry(ctx, "/signals", q, &payload); err != nil {
		return nil, err
	}
	c.lastRequest = now

	signals := make([]types.TradingSignal, 0, len(payload.Signals))
	for _, w := range payload.Signals {
		direction := types.Direction(strings.ToUpper(w.SignalType))
		if !direction.Valid() {
			logger.Debug(ctx, "Filtered non-directional signal", "symbol", w.Symbol, "signal_type", w.SignalType)
			continue
		}

		s := types.TradingSignal{
			Symbol:     w.Symbol,
			Direction:  direction,
			Confidence: w.Confidence,
			EntryPrice: w.EntryPrice,
			StopLoss:   w.StopLoss,
			TakeProfit: w.TakeProfit,
			Reasoning:  w.Reasoning,
			CreatedAt:  parseTime(w.Timestamp, now),
		}
		if w.ExpiresAt != "" {
			s.ExpiresAt = parseTime(w.ExpiresAt, time.Time{})
		}
		if s.ExpiresAt.IsZero() && c.p.Expiry > 0 {
			s.ExpiresAt = s.CreatedAt.Add(c.p.Expiry)
		}
		signals = append(signals, s)
	}

	logger.Info(ctx, "Signals fetched",
		"requested_symbols", len(symbols),
		"received", len(payload.Signals),
		"actionable", len(signals),
	)
	return signals, nil
}

// Healthy reports whether the analysis service answers its health probe.
func (c *Client) Healthy(ctx context.Context) bool {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", nil, &resp); err != nil {
		logger.Warn(ctx, "Signal service health check failed", "error", err)
		return false
	}
	return true
}

func (c *Client) getWithRetry(ctx context.Context, path string, query url.Values, out any) error {
	var err error
	for attempt := 0; attempt < c.p.Retries; attempt++ {
		if err = c.get(ctx, path, query, out); err == nil {
			return nil
		}
		logger.Warn(ctx, "Signal request failed",
			"path", path,
			"attempt", attempt+1,
			"max_attempts", c.p.Retries,
			"error", err,
		)
		if attempt < c.p.Retries-1 {
			select {
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("signal: all %d attempts failed: %w", c.p.Retries, err)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.p.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("signal: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("signal: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("signal: service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("signal: decode response: %w", err)
	}
	return nil
}

func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return fallback
}
