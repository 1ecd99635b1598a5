// Command terminal is a console front-end for the trading API: it renders
// the depth ladder for an asset and can place an order through the same
// order-entry flow the panel uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/nathanyu/trading-terminal/internal/client"
	"github.com/nathanyu/trading-terminal/internal/depth"
	"github.com/nathanyu/trading-terminal/internal/domain"
	"github.com/nathanyu/trading-terminal/internal/orderentry"
	"github.com/nathanyu/trading-terminal/internal/panel"
)

const barWidth = 20

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "trading API base URL")
		asset    = flag.String("asset", "BTC", "asset to display (BTC or ETH)")
		side     = flag.String("side", "", "place an order: BUY or SELL")
		kind     = flag.String("type", "LIMIT", "order type: LIMIT or MARKET")
		price    = flag.String("price", "", "limit price (empty = quick-fill from mid)")
		quantity = flag.String("quantity", "", "order quantity")
		notional = flag.String("notional", "", "order notional (derives quantity)")
	)
	flag.Parse()

	a, err := domain.ParseAsset(strings.ToUpper(*asset))
	if err != nil {
		log.Fatalf("terminal: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	p := panel.New(client.New(*server, nil), a)
	if err := p.SelectAsset(ctx, a); err != nil {
		log.Fatalf("terminal: %s", panel.ErrorMessage(err))
	}

	ladder := p.Ladder()
	if ladder.Empty() {
		fmt.Printf("no order book data for %s\n", a)
		return
	}
	render(a, ladder)

	if *side == "" {
		return
	}
	if err := place(ctx, p, *side, *kind, *price, *quantity, *notional); err != nil {
		fmt.Fprintf(os.Stderr, "order failed: %s\n", panel.ErrorMessage(err))
		os.Exit(1)
	}
}

// place fills the draft from flags and submits it.
func place(ctx context.Context, p *panel.Panel, side, kind, price, quantity, notional string) error {
	d := p.Draft()

	s := domain.Side(strings.ToUpper(side))
	if !s.Valid() {
		return fmt.Errorf("side must be BUY or SELL, got %q", side)
	}
	d.SetSide(s)
	p.SwitchKind(domain.OrderType(strings.ToUpper(kind)))

	if price != "" && !d.SetPrice(price) {
		return fmt.Errorf("price %q is not a number", price)
	}
	if quantity != "" && !d.SetQuantity(quantity) {
		return fmt.Errorf("quantity %q is not a number", quantity)
	}
	if notional != "" && !d.SetNotional(notional) {
		return fmt.Errorf("notional %q is not a number", notional)
	}
	if d.Kind() == domain.OrderTypeLimit && d.Price() == "" {
		p.QuickFill(orderentry.FillMid)
	}

	trade, err := p.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\norder placed: id=%s %s %s qty=%g notional=%.2f\n",
		trade.ID, trade.Side, trade.Asset, trade.Quantity, trade.Notional)
	return nil
}

// render prints the ladder asks-on-top the way exchange UIs draw it.
func render(asset domain.Asset, l *depth.Ladder) {
	fmt.Printf("%s order book (update %d)\n", asset, l.LastUpdateID)
	fmt.Printf("%12s %14s %14s  depth\n", "price", "amount", "total")

	for i := len(l.Asks) - 1; i >= 0; i-- {
		printRow(l.Asks[i], "ask")
	}

	spread := l.Spread()
	fmt.Printf("  --- mid %.2f | spread %.2f (%.3f%%) ---\n",
		l.MidPrice(), spread.Absolute, spread.Percent)

	for _, row := range l.Bids {
		printRow(row, "bid")
	}
}

func printRow(row depth.Row, side string) {
	filled := int(row.Percent / 100 * barWidth)
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	fmt.Printf("%12.2f %14.4f %14.2f  %s %s\n",
		row.Price, row.Quantity, row.Notional, bar, side)
}
