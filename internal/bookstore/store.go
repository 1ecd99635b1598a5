// Package bookstore keeps the in-memory order books the trade API serves
// from. Levels are aggregated per price; there are no individually
// addressable resting orders here, only depth.
package bookstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nathanyu/trading-terminal/internal/domain"
)

// Prices are stored as int64 cents and quantities as int64 sats
// (1e-8 units) to keep book arithmetic exact.
const (
	priceScale    = 2
	quantityScale = 8
)

// side is one side of a book: aggregated quantity per price with
// best-price tracking.
type side struct {
	levels map[int64]int64 // price cents -> quantity sats
	isBid  bool
	best   int64
	has    bool
}

func newSide(isBid bool) *side {
	return &side{
		levels: make(map[int64]int64),
		isBid:  isBid,
	}
}

// add increases the quantity resting at a price.
func (s *side) add(price, qty int64) {
	s.levels[price] += qty
	s.refreshBest()
}

// take removes up to qty from the level at price, deleting the level when
// it empties. Returns the quantity actually taken.
func (s *side) take(price, qty int64) int64 {
	avail, ok := s.levels[price]
	if !ok {
		return 0
	}
	taken := min(qty, avail)
	if taken == avail {
		delete(s.levels, price)
	} else {
		s.levels[price] = avail - taken
	}
	s.refreshBest()
	return taken
}

// refreshBest recalculates the best price: highest for bids, lowest for asks.
func (s *side) refreshBest() {
	if len(s.levels) == 0 {
		s.has = false
		s.best = 0
		return
	}

	s.has = true
	if s.isBid {
		best := int64(0)
		for price := range s.levels {
			if price > best {
				best = price
			}
		}
		s.best = best
	} else {
		best := int64(1<<62 - 1)
		for price := range s.levels {
			if price < best {
				best = price
			}
		}
		s.best = best
	}
}

// total returns the side's summed quantity in sats.
func (s *side) total() int64 {
	var t int64
	for _, qty := range s.levels {
		t += qty
	}
	return t
}

// sorted returns the side's levels best-first: bids descending by price,
// asks ascending.
func (s *side) sorted(depth int) []domain.PriceLevel {
	prices := make([]int64, 0, len(s.levels))
	for price := range s.levels {
		prices = append(prices, price)
	}

	if s.isBid {
		sort.Slice(prices, func(i, j int) bool { return prices[i] > prices[j] })
	} else {
		sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
	}

	if depth > 0 && len(prices) > depth {
		prices = prices[:depth]
	}

	levels := make([]domain.PriceLevel, len(prices))
	for i, price := range prices {
		levels[i] = domain.PriceLevel{
			decimal.New(price, -priceScale).StringFixed(priceScale),
			decimal.New(s.levels[price], -quantityScale).StringFixed(quantityScale),
		}
	}
	return levels
}

// Book is the two-sided aggregated book for one asset.
type Book struct {
	mu sync.RWMutex

	asset        domain.Asset
	bids         *side
	asks         *side
	lastUpdateID uint64
}

// NewBook creates an empty book for an asset.
func NewBook(asset domain.Asset) *Book {
	return &Book{
		asset: asset,
		bids:  newSide(true),
		asks:  newSide(false),
	}
}

// Asset returns the book's asset.
func (b *Book) Asset() domain.Asset { return b.asset }

// Snapshot returns the current book truncated to depth levels per side.
func (b *Book) Snapshot(depth int) *domain.OrderBook {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &domain.OrderBook{
		LastUpdateID: b.lastUpdateID,
		Bids:         b.bids.sorted(depth),
		Asks:         b.asks.sorted(depth),
	}
}

// Depth returns the summed bid and ask quantities as floats, for metrics.
func (b *Book) Depth() (bids, asks float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return decimal.New(b.bids.total(), -quantityScale).InexactFloat64(),
		decimal.New(b.asks.total(), -quantityScale).InexactFloat64()
}

// Seed places lvls levels on each side around mid, step cents apart, with
// baseQty sats at the touch growing by qtyStep per level out. The result
// is a plausible, never-crossed ladder.
func (b *Book) Seed(mid decimal.Decimal, lvls int, step, baseQty, qtyStep int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	midCents := toCents(mid)
	half := step / 2
	if half == 0 {
		half = 1
	}
	for i := range lvls {
		qty := baseQty + int64(i)*qtyStep
		b.bids.add(midCents-half-int64(i)*step, qty)
		b.asks.add(midCents+half+int64(i)*step, qty)
	}
	b.lastUpdateID++
}

// Fill applies a trade to the book. Market orders consume the opposite
// side from the touch outward and fail when no liquidity rests there.
// Limit orders consume crossing levels and rest any remainder at their
// limit price. The book cannot become crossed: a remainder only rests
// after every crossing level is exhausted.
// It returns the filled quantity in asset units.
func (b *Book) Fill(order *domain.Order) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var opposite, own *side
	if order.Side == domain.SideBuy {
		opposite, own = b.asks, b.bids
	} else {
		opposite, own = b.bids, b.asks
	}

	remaining := toSats(decimal.NewFromFloat(order.Quantity))
	if remaining <= 0 {
		return decimal.Zero, fmt.Errorf("quantity must be positive")
	}

	var limit int64
	if order.Type == domain.OrderTypeLimit {
		if order.Price == nil {
			return decimal.Zero, fmt.Errorf("limit order without price")
		}
		limit = toCents(decimal.NewFromFloat(*order.Price))
		if limit <= 0 {
			return decimal.Zero, fmt.Errorf("price must be positive")
		}
	} else if !opposite.has {
		return decimal.Zero, fmt.Errorf("no liquidity for market %s %s", order.Side, order.Asset)
	}

	var filled int64
	for remaining > 0 && opposite.has {
		best := opposite.best
		if order.Type == domain.OrderTypeLimit {
			if order.Side == domain.SideBuy && limit < best {
				break // buy limit below the ask
			}
			if order.Side == domain.SideSell && limit > best {
				break // sell limit above the bid
			}
		}
		taken := opposite.take(best, remaining)
		remaining -= taken
		filled += taken
	}

	// Unfilled limit remainder rests in the book.
	if remaining > 0 && order.Type == domain.OrderTypeLimit {
		own.add(limit, remaining)
	}

	b.lastUpdateID++
	return decimal.New(filled, -quantityScale), nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(priceScale).Round(0).IntPart()
}

func toSats(d decimal.Decimal) int64 {
	return d.Shift(quantityScale).Round(0).IntPart()
}

// Store holds one book per supported asset.
type Store struct {
	books map[domain.Asset]*Book
}

// NewStore creates a store with an empty book for every supported asset.
func NewStore() *Store {
	books := make(map[domain.Asset]*Book, len(domain.Assets))
	for _, asset := range domain.Assets {
		books[asset] = NewBook(asset)
	}
	return &Store{books: books}
}

// Book returns the book for an asset, or nil for an unsupported one.
func (s *Store) Book(asset domain.Asset) *Book {
	return s.books[asset]
}
