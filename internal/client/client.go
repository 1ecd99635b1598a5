// Package client implements the HTTP consumer side of the orderbook/trade
// API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nathanyu/trading-terminal/internal/domain"
)

const defaultTimeout = 10 * time.Second

// ErrFetchOrderbook reports any failure to retrieve an order book,
// transport-level or non-2xx alike. It is retryable.
var ErrFetchOrderbook = errors.New("failed to fetch orderbook")

// RejectedError is a trade the server refused, carrying the server's own
// message. A missing message falls back to "order failed".
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "order failed"
	}
	return e.Message
}

// Client talks to the trading-terminal API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API at baseURL. A nil httpClient gets a
// default with a sane timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// GetOrderbook fetches the current book snapshot for an asset.
func (c *Client) GetOrderbook(ctx context.Context, asset domain.Asset) (*domain.OrderBook, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orderbook/"+string(asset), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchOrderbook, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchOrderbook, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchOrderbook, resp.StatusCode)
	}

	var book domain.OrderBook
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchOrderbook, err)
	}
	return &book, nil
}

// SendTrade submits an order. A non-2xx response yields a RejectedError
// with the server's error field; transport failures come back as-is.
func (c *Client) SendTrade(ctx context.Context, order *domain.Order) (*domain.TradeResponse, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/trade", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("send trade: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send trade: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("send trade: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RejectedError{
			StatusCode: resp.StatusCode,
			Message:    domain.DecodeError(body),
		}
	}

	var trade domain.TradeResponse
	if err := json.Unmarshal(body, &trade); err != nil {
		return nil, fmt.Errorf("decode trade response: %w", err)
	}
	return &trade, nil
}
