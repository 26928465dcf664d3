// Package mt5 binds the engine to a MetaTrader 5 terminal through the
// local REST bridge service running next to the terminal.
package mt5

import (
	"bytes"
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
	Login    string
	Password string
	Server   string
	Timeout  time.Duration
}

// Client talks to the MT5 bridge REST API. All methods are blocking and
// bounded by the request context plus the client timeout.
type Client struct {
	p      Params
	client *http.Client
}

var _ interfaces.Terminal = (*Client)(nil)

func NewClient(p Params) *Client {
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	return &Client{
		p:      Params{BaseURL: strings.TrimRight(p.BaseURL, "/"), Login: p.Login, Password: p.Password, Server: p.Server, Timeout: p.Timeout},
		client: &http.Client{Timeout: p.Timeout},
	}
}

func (c *Client) Connect(ctx context.Context) error {
	payload := map[string]string{
		"login":    c.p.Login,
		"password": c.p.Password,
		"server":   c.p.Server,
	}

	var resp struct {
		Connected bool   `json:"connected"`
		Message   string `json:"message"`
	}
	if err := c.post(ctx, "/connect", payload, &resp); err != nil {
		return err
	}
	if !resp.Connected {
		return fmt.Errorf("mt5: terminal refused connection: %s", resp.Message)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Connected bool   `json:"connected"`
		Message   string `json:"message"`
	}
	if err := c.get(ctx, "/health", nil, &resp); err != nil {
		return err
	}
	if !resp.Connected {
		return fmt.Errorf("mt5: terminal unhealthy: %s", resp.Message)
	}
	return nil
}

func (c *Client) AccountInfo(ctx context.Context) (*types.AccountSnapshot, error) {
	var snap types.AccountSnapshot
	if err := c.get(ctx, "/account_info", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) SymbolInfo(ctx context.Context, symbol string) (*types.SymbolSpec, error) {
	var spec types.SymbolSpec
	if err := c.get(ctx, "/symbol_info/"+url.PathEscape(symbol), nil, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (c *Client) OrderSend(ctx context.Context, req types.OrderRequest) (*types.OrderResponse, error) {
	logger.Debug(ctx, "Submitting order to bridge",
		"symbol", req.Symbol,
		"action", string(req.Action),
		"volume", req.Volume,
	)

	var resp types.OrderResponse
	endpoint := "/execute_trade"
	if req.Ticket != "" {
		endpoint = "/close_position"
	}
	if err := c.post(ctx, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PositionsGet(ctx context.Context) ([]types.OpenPosition, error) {
	var positions []types.OpenPosition
	if err := c.get(ctx, "/positions", nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

func (c *Client) HistoryDealsGet(ctx context.Context, from, to time.Time) ([]types.FilledTrade, error) {
	q := url.Values{}
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))

	var deals []types.FilledTrade
	if err := c.get(ctx, "/history_deals", q, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

func (c *Client) Shutdown(ctx context.Context) error {
	return c.post(ctx, "/disconnect", nil, nil)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.p.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("mt5: create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("mt5: marshal payload: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.p.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("mt5: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("mt5: bridge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mt5: bridge returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mt5: decode response: %w", err)
	}
	return nil
}
