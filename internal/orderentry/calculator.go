package orderentry

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nathanyu/trading-terminal/internal/domain"
)

// Decimal places used when deriving fields. Notional and price are quoted
// in fiat (cents), quantity in crypto units (satoshi-like precision).
const (
	priceScale    = 2
	notionalScale = 2
	quantityScale = 8
)

// Reason classifies why a draft failed validation.
type Reason string

const (
	ReasonPriceNotPositive    Reason = "price-not-positive"
	ReasonQuantityNotPositive Reason = "quantity-not-positive"
	ReasonNotionalNotPositive Reason = "notional-not-positive"
)

// Message returns the user-facing text for a validation failure.
func (r Reason) Message() string {
	switch r {
	case ReasonPriceNotPositive:
		return "Price must be greater than 0"
	case ReasonQuantityNotPositive:
		return "Quantity must be greater than 0"
	case ReasonNotionalNotPositive:
		return "Total must be greater than 0"
	}
	return ""
}

// ValidationResult is the outcome of Draft.Validate. The zero value is
// valid; an invalid result carries the first failing reason only.
type ValidationResult struct {
	Reason Reason
}

// Valid reports whether the draft passed validation.
func (v ValidationResult) Valid() bool { return v.Reason == "" }

// QuickFillKind selects which reference price a quick-fill shortcut uses.
type QuickFillKind string

const (
	FillMid QuickFillKind = "MID"
	FillBid QuickFillKind = "BID"
	FillAsk QuickFillKind = "ASK"
)

// ReferencePrices are the externally supplied top-of-book prices used by
// quick-fill and limit-price seeding.
type ReferencePrices struct {
	Mid decimal.Decimal
	Bid decimal.Decimal
	Ask decimal.Decimal
}

// For returns the reference price for a quick-fill kind.
func (r ReferencePrices) For(kind QuickFillKind) decimal.Decimal {
	switch kind {
	case FillBid:
		return r.Bid
	case FillAsk:
		return r.Ask
	default:
		return r.Mid
	}
}

// field is one editable numeric input: the raw text exactly as typed plus
// a parsed cache. Raw text is kept so partial input ("1.") survives
// redraws without losing keystrokes.
type field struct {
	text    string
	value   decimal.Decimal
	present bool
}

// parseField accepts empty text or text that parses as a finite decimal.
// A trailing decimal point is tolerated as partial input.
func parseField(text string) (field, bool) {
	if text == "" {
		return field{}, true
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(text, "."))
	if err != nil {
		return field{}, false
	}
	return field{text: text, value: d, present: true}, true
}

// derived builds a field from a computed value at the given scale.
func derived(d decimal.Decimal, scale int32) field {
	d = d.Round(scale)
	return field{text: d.StringFixed(scale), value: d, present: true}
}

// Draft is an in-progress order. It keeps price, quantity and notional
// mutually consistent under a last-edited-field-is-authoritative rule:
// editing one field rederives exactly one other and never perturbs the
// remaining one, so updates cannot feed back on themselves.
type Draft struct {
	asset domain.Asset
	side  domain.Side
	kind  domain.OrderType

	price    field
	quantity field
	notional field
}

// NewDraft creates an empty draft for the given asset. New drafts start
// as limit buys, matching the order panel's initial state.
func NewDraft(asset domain.Asset) *Draft {
	return &Draft{
		asset: asset,
		side:  domain.SideBuy,
		kind:  domain.OrderTypeLimit,
	}
}

// Asset returns the draft's asset.
func (d *Draft) Asset() domain.Asset { return d.asset }

// Side returns the draft's side.
func (d *Draft) Side() domain.Side { return d.side }

// Kind returns the draft's order type.
func (d *Draft) Kind() domain.OrderType { return d.kind }

// Price returns the price field text.
func (d *Draft) Price() string { return d.price.text }

// Quantity returns the quantity field text.
func (d *Draft) Quantity() string { return d.quantity.text }

// Notional returns the notional field text.
func (d *Draft) Notional() string { return d.notional.text }

// SetSide switches the draft between buy and sell. Field values carry
// over unchanged.
func (d *Draft) SetSide(side domain.Side) {
	if side.Valid() {
		d.side = side
	}
}

// SetPrice stores new price text and, when quantity is present, rederives
// notional = quantity * price rounded to 2 places. Quantity is never
// touched. Text that does not parse is rejected and the field keeps its
// previous value; the return value reports acceptance.
func (d *Draft) SetPrice(text string) bool {
	f, ok := parseField(text)
	if !ok {
		return false
	}
	d.price = f
	d.deriveNotional()
	return true
}

// SetQuantity stores new quantity text and, when price is present,
// rederives notional. Price is never touched.
func (d *Draft) SetQuantity(text string) bool {
	f, ok := parseField(text)
	if !ok {
		return false
	}
	d.quantity = f
	d.deriveNotional()
	return true
}

// SetNotional stores new notional text and, when price is present and
// non-zero, rederives quantity = notional / price rounded to 8 places.
// With an empty or zero price the notional is kept and quantity is left
// alone; division is never attempted.
func (d *Draft) SetNotional(text string) bool {
	f, ok := parseField(text)
	if !ok {
		return false
	}
	d.notional = f
	if d.notional.present && d.price.present && !d.price.value.IsZero() {
		d.quantity = derived(d.notional.value.Div(d.price.value), quantityScale)
	}
	return true
}

// deriveNotional recomputes notional from price and quantity when both
// are present.
func (d *Draft) deriveNotional() {
	if d.price.present && d.quantity.present {
		d.notional = derived(d.quantity.value.Mul(d.price.value), notionalScale)
	}
}

// QuickFill sets the price to the chosen reference price at 2 decimal
// places, overwriting any prior price, then rederives notional as SetPrice
// does.
func (d *Draft) QuickFill(kind QuickFillKind, refs ReferencePrices) {
	d.price = derived(refs.For(kind), priceScale)
	d.deriveNotional()
}

// SwitchKind changes the order type. Switching to market clears the price
// (market orders carry no limit price); switching to limit seeds an empty
// price from the mid reference.
func (d *Draft) SwitchKind(kind domain.OrderType, refs ReferencePrices) {
	if !kind.Valid() {
		return
	}
	d.kind = kind
	switch kind {
	case domain.OrderTypeMarket:
		d.price = field{}
	case domain.OrderTypeLimit:
		if !d.price.present {
			d.price = derived(refs.Mid, priceScale)
			d.deriveNotional()
		}
	}
}

// Validate checks the draft before submission. Checks run in a fixed
// order — price (limit only), quantity, notional — and the first failure
// wins.
func (d *Draft) Validate() ValidationResult {
	if d.kind == domain.OrderTypeLimit && !positive(d.price) {
		return ValidationResult{Reason: ReasonPriceNotPositive}
	}
	if !positive(d.quantity) {
		return ValidationResult{Reason: ReasonQuantityNotPositive}
	}
	if !positive(d.notional) {
		return ValidationResult{Reason: ReasonNotionalNotPositive}
	}
	return ValidationResult{}
}

func positive(f field) bool {
	return f.present && f.value.IsPositive()
}

// Build assembles the immutable submission payload. It fails if the draft
// does not validate; price is omitted for market orders.
func (d *Draft) Build() (domain.Order, error) {
	if v := d.Validate(); !v.Valid() {
		return domain.Order{}, fmt.Errorf("invalid order draft: %s", v.Reason)
	}

	order := domain.Order{
		Asset:    d.asset,
		Side:     d.side,
		Type:     d.kind,
		Quantity: d.quantity.value.InexactFloat64(),
		Notional: d.notional.value.InexactFloat64(),
	}
	if d.kind == domain.OrderTypeLimit {
		p := d.price.value.InexactFloat64()
		order.Price = &p
	}
	return order, nil
}

// Reset clears quantity and notional after a successful submission and
// reseeds the limit price from the mid reference. Market drafts keep an
// empty price.
func (d *Draft) Reset(refs ReferencePrices) {
	d.quantity = field{}
	d.notional = field{}
	if d.kind == domain.OrderTypeLimit {
		d.price = derived(refs.Mid, priceScale)
	}
}
