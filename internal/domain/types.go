package domain

import (
	"encoding/json"
	"fmt"
)

// Asset is a tradable asset supported by the terminal.
type Asset string

const (
	AssetBTC Asset = "BTC"
	AssetETH Asset = "ETH"
)

// Assets lists every supported asset in display order.
var Assets = []Asset{AssetBTC, AssetETH}

// ParseAsset validates an asset symbol.
func ParseAsset(s string) (Asset, error) {
	switch Asset(s) {
	case AssetBTC, AssetETH:
		return Asset(s), nil
	}
	return "", fmt.Errorf("unknown asset %q", s)
}

// Side represents the order side (buy or sell).
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the known values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderType represents the order kind.
type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// Valid reports whether the order type is one of the known values.
func (t OrderType) Valid() bool {
	return t == OrderTypeLimit || t == OrderTypeMarket
}

// PriceLevel is one level of the book on the wire: a [price, quantity]
// pair of decimal strings. Strings keep financial quantities exact across
// the JSON boundary.
type PriceLevel [2]string

// Price returns the price string of the level.
func (l PriceLevel) Price() string { return l[0] }

// Quantity returns the quantity string of the level.
func (l PriceLevel) Quantity() string { return l[1] }

// OrderBook is a point-in-time snapshot of the book for one asset.
// Bids are ordered best-first (descending price), asks best-first
// (ascending price). LastUpdateID increases with every book mutation and
// exists so stale snapshots can be discarded.
type OrderBook struct {
	LastUpdateID uint64       `json:"lastUpdateId"`
	Bids         []PriceLevel `json:"bids"`
	Asks         []PriceLevel `json:"asks"`
}

// Empty reports whether both sides of the book carry no levels.
func (b *OrderBook) Empty() bool {
	return len(b.Bids) == 0 && len(b.Asks) == 0
}

// Order is the trade submission payload. Price is present only for limit
// orders; market orders carry no limit price.
type Order struct {
	Asset    Asset     `json:"asset"`
	Side     Side      `json:"side"`
	Type     OrderType `json:"type"`
	Quantity float64   `json:"quantity"`
	Price    *float64  `json:"price,omitempty"`
	Notional float64   `json:"notional"`
}

// TradeResponse is the server's acknowledgement of an accepted order.
type TradeResponse struct {
	Order
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// errorBody is the error envelope used by the trade API.
type errorBody struct {
	Error string `json:"error"`
}

// DecodeError extracts the server-supplied error message from a response
// body, or "" when none is present.
func DecodeError(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.Error
}
