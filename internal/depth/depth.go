// Package depth turns raw order book snapshots into render-ready ladders:
// cumulative depth per row, bar percentages on a scale shared by both
// sides, and top-of-book statistics.
package depth

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/nathanyu/trading-terminal/internal/domain"
)

// Row is one price level with its running totals. Cumulative is the sum
// of quantities at this level and every better one; Percent is the bar
// width in [0,100] normalized against the deeper side's total.
type Row struct {
	Price      float64
	Quantity   float64
	Notional   float64 // price * quantity for this level alone
	Cumulative float64
	Percent    float64
}

// Spread is the top-of-book spread in absolute and relative terms.
type Spread struct {
	Absolute float64
	Percent  float64
}

// Ladder is the aggregated view of one order book snapshot. Rows keep the
// snapshot's best-first ordering (bids descending, asks ascending).
// A ladder built from an empty snapshot has zero-length sides, which is
// how callers tell "no data" apart from "loading".
type Ladder struct {
	LastUpdateID uint64
	Bids         []Row
	Asks         []Row

	maxDepth float64
}

// Build computes a ladder from a snapshot. Prefix sums and the shared
// normalization denominator are computed once here rather than per row,
// so redraws are O(n). It fails on levels that are not decimal numbers;
// ordering and non-crossedness are the data source's responsibility.
func Build(book *domain.OrderBook) (*Ladder, error) {
	bids, bidTotal, err := buildSide(book.Bids)
	if err != nil {
		return nil, fmt.Errorf("bids: %w", err)
	}
	asks, askTotal, err := buildSide(book.Asks)
	if err != nil {
		return nil, fmt.Errorf("asks: %w", err)
	}

	l := &Ladder{
		LastUpdateID: book.LastUpdateID,
		Bids:         bids,
		Asks:         asks,
		maxDepth:     max(bidTotal, askTotal),
	}

	// Bars on both sides share one scale so their widths compare.
	// A zero denominator (empty book) leaves every percentage at 0
	// instead of propagating NaN into a rendered value.
	if l.maxDepth > 0 {
		for i := range l.Bids {
			l.Bids[i].Percent = l.Bids[i].Cumulative / l.maxDepth * 100
		}
		for i := range l.Asks {
			l.Asks[i].Percent = l.Asks[i].Cumulative / l.maxDepth * 100
		}
	}
	return l, nil
}

// buildSide parses one side's levels and accumulates the prefix sums.
func buildSide(levels []domain.PriceLevel) ([]Row, float64, error) {
	rows := make([]Row, 0, len(levels))
	var cum float64
	for i, level := range levels {
		price, err := strconv.ParseFloat(level.Price(), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("level %d: bad price %q", i, level.Price())
		}
		qty, err := strconv.ParseFloat(level.Quantity(), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("level %d: bad quantity %q", i, level.Quantity())
		}
		cum += qty
		rows = append(rows, Row{
			Price:      price,
			Quantity:   qty,
			Notional:   price * qty,
			Cumulative: cum,
		})
	}
	return rows, cum, nil
}

// Empty reports whether both sides carry no rows.
func (l *Ladder) Empty() bool {
	return len(l.Bids) == 0 && len(l.Asks) == 0
}

// MaxDepth returns the larger of the two side totals, the shared
// denominator for bar percentages.
func (l *Ladder) MaxDepth() float64 { return l.maxDepth }

// BestBid returns the best bid price, or 0 when the bid side is empty.
func (l *Ladder) BestBid() float64 {
	if len(l.Bids) == 0 {
		return 0
	}
	return l.Bids[0].Price
}

// BestAsk returns the best ask price, or 0 when the ask side is empty.
func (l *Ladder) BestAsk() float64 {
	if len(l.Asks) == 0 {
		return 0
	}
	return l.Asks[0].Price
}

// MidPrice returns the average of best bid and best ask, or 0 when either
// side is empty. The zero is a documented degenerate value, not an error.
func (l *Ladder) MidPrice() float64 {
	if len(l.Bids) == 0 || len(l.Asks) == 0 {
		return 0
	}
	return (l.BestBid() + l.BestAsk()) / 2
}

// Spread returns the top-of-book spread. With an empty side or a zero
// mid-price both components are 0; no division by zero happens.
func (l *Ladder) Spread() Spread {
	mid := l.MidPrice()
	if mid == 0 {
		return Spread{}
	}
	abs := l.BestAsk() - l.BestBid()
	return Spread{
		Absolute: abs,
		Percent:  abs / mid * 100,
	}
}

// References returns the quick-fill reference prices for this ladder.
func (l *Ladder) References() (mid, bid, ask decimal.Decimal) {
	return decimal.NewFromFloat(l.MidPrice()),
		decimal.NewFromFloat(l.BestBid()),
		decimal.NewFromFloat(l.BestAsk())
}
