// Package panel is the terminal's order-entry session: one draft order
// and the latest depth ladder for a selected asset, with the submit
// discipline the UI layer relies on.
package panel

import (
	"context"
	"errors"
	"sync"

	"github.com/nathanyu/trading-terminal/internal/client"
	"github.com/nathanyu/trading-terminal/internal/depth"
	"github.com/nathanyu/trading-terminal/internal/domain"
	"github.com/nathanyu/trading-terminal/internal/orderentry"
)

// ErrSubmitInFlight reports a second submit while one is outstanding.
// At most one submission may be in flight per panel.
var ErrSubmitInFlight = errors.New("a submission is already in flight")

// ValidationError is a local validation failure. It never reaches the
// network.
type ValidationError struct {
	Reason orderentry.Reason
}

func (e *ValidationError) Error() string { return e.Reason.Message() }

// Panel drives one order draft against live book data.
type Panel struct {
	mu sync.Mutex

	api    *client.Client
	asset  domain.Asset
	draft  *orderentry.Draft
	ladder *depth.Ladder

	submitting bool
}

// New creates a panel for an asset. The ladder is nil until the first
// refresh, which is the "loading" state as opposed to an empty ladder's
// "no data".
func New(api *client.Client, asset domain.Asset) *Panel {
	return &Panel{
		api:   api,
		asset: asset,
		draft: orderentry.NewDraft(asset),
	}
}

// Asset returns the currently selected asset.
func (p *Panel) Asset() domain.Asset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asset
}

// Ladder returns the latest depth ladder, or nil before the first
// successful refresh.
func (p *Panel) Ladder() *depth.Ladder {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ladder
}

// Draft returns the order draft. The draft is owned by the panel's single
// UI interaction; callers must not share it across goroutines.
func (p *Panel) Draft() *orderentry.Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// SelectAsset switches the panel to another asset: the draft is discarded
// and a fresh book is fetched. On fetch failure the previous state is
// kept and the error returned.
func (p *Panel) SelectAsset(ctx context.Context, asset domain.Asset) error {
	book, err := p.api.GetOrderbook(ctx, asset)
	if err != nil {
		return err
	}
	ladder, err := depth.Build(book)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.asset = asset
	p.ladder = ladder
	p.draft = orderentry.NewDraft(asset)
	p.seedLimitPrice()
	return nil
}

// Refresh refetches the book for the current asset. Snapshots older than
// the one already held are discarded.
func (p *Panel) Refresh(ctx context.Context) error {
	p.mu.Lock()
	asset := p.asset
	p.mu.Unlock()

	book, err := p.api.GetOrderbook(ctx, asset)
	if err != nil {
		return err
	}
	ladder, err := depth.Build(book)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.asset != asset {
		return nil // asset switched while the fetch was outstanding
	}
	if p.ladder != nil && ladder.LastUpdateID < p.ladder.LastUpdateID {
		return nil // stale snapshot
	}
	p.ladder = ladder
	p.seedLimitPrice()
	return nil
}

// seedLimitPrice fills an empty limit price from the current mid.
// Callers hold p.mu.
func (p *Panel) seedLimitPrice() {
	if p.draft.Kind() == domain.OrderTypeLimit && p.draft.Price() == "" && !p.ladder.Empty() {
		p.draft.QuickFill(orderentry.FillMid, p.refs())
	}
}

// refs derives the quick-fill reference prices from the held ladder.
// Callers hold p.mu. A nil or empty ladder yields zero references.
func (p *Panel) refs() orderentry.ReferencePrices {
	if p.ladder == nil {
		return orderentry.ReferencePrices{}
	}
	mid, bid, ask := p.ladder.References()
	return orderentry.ReferencePrices{Mid: mid, Bid: bid, Ask: ask}
}

// QuickFill sets the draft's price from the ladder's mid, best bid or
// best ask.
func (p *Panel) QuickFill(kind orderentry.QuickFillKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft.QuickFill(kind, p.refs())
}

// SwitchKind changes the draft's order type, seeding the limit price from
// mid where the calculator calls for it.
func (p *Panel) SwitchKind(kind domain.OrderType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft.SwitchKind(kind, p.refs())
}

// Submit validates the draft and sends it. Validation failures surface as
// *ValidationError before any network call. Only one submission may be
// outstanding; during that window the draft is left untouched so the
// user's fields stay stable. On success quantity and notional are cleared
// and the limit price reseeded from mid.
func (p *Panel) Submit(ctx context.Context) (*domain.TradeResponse, error) {
	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if v := p.draft.Validate(); !v.Valid() {
		p.mu.Unlock()
		return nil, &ValidationError{Reason: v.Reason}
	}
	order, err := p.draft.Build()
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	p.submitting = true
	p.mu.Unlock()

	trade, err := p.api.SendTrade(ctx, &order)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitting = false
	if err != nil {
		return nil, err
	}
	p.draft.Reset(p.refs())
	return trade, nil
}

// ErrorMessage maps a panel error to the inline message the UI shows.
func ErrorMessage(err error) string {
	var vErr *ValidationError
	var rejected *client.RejectedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.As(err, &rejected):
		return rejected.Error()
	case errors.Is(err, client.ErrFetchOrderbook):
		return "Failed to fetch orderbook"
	case errors.Is(err, ErrSubmitInFlight):
		return "Order submission already in progress"
	default:
		return "Network error. Please try again."
	}
}
