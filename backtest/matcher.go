package backtest

import (
	"fmt"

	"github.com/quietwizar/trading-system/market"
)

// FillMode selects which bar a fresh order may first match against.
type FillMode string

const (
	// FillNextOpen is the default: an order submitted on bar t is first
	// eligible on bar t+1, so the matched price is never visible to the
	// strategy that produced the order.
	FillNextOpen FillMode = "next_open"

	// FillSameClose additionally matches the order against its submitting
	// bar at that bar's close. This bakes look-ahead bias into the result
	// and exists as an explicit opt-in only.
	FillSameClose FillMode = "same_close"
)

func ParseFillMode(s string) (FillMode, error) {
	switch FillMode(s) {
	case FillNextOpen, FillSameClose, "":
		if s == "" {
			return FillNextOpen, nil
		}
		return FillMode(s), nil
	default:
		return "", fmt.Errorf("unknown fill mode %q (supported: next_open, same_close)", s)
	}
}

// MatchConfig tunes the fill simulation.
type MatchConfig struct {
	// Lookahead is the order lifetime in bars: an order unfilled after this
	// many subsequent bars expires. Must be >= 1.
	Lookahead int

	Mode FillMode

	// LiquidityLimit caps the quantity filled per bar. Zero means no cap.
	// A cap below the order quantity drives partial fills.
	LiquidityLimit float64
}

func (c MatchConfig) Validate() error {
	if c.Lookahead < 1 {
		return fmt.Errorf("lookahead %d: must be at least 1", c.Lookahead)
	}
	if c.Mode != FillNextOpen && c.Mode != FillSameClose {
		return fmt.Errorf("unknown fill mode %q", c.Mode)
	}
	if c.LiquidityLimit < 0 {
		return fmt.Errorf("liquidity limit %v: must be non-negative", c.LiquidityLimit)
	}
	return nil
}

// Matcher resolves pending orders against bars, one bar at a time.
type Matcher struct {
	cfg MatchConfig
}

func NewMatcher(cfg MatchConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Resolve holds a working order against one subsequent bar. At most one fill
// is produced per order per bar. The order expires when Lookahead bars have
// passed without a complete fill.
func (m *Matcher) Resolve(o *Order, bar market.Bar) (Fill, bool) {
	if o.State.Terminal() {
		return Fill{}, false
	}
	o.barsSeen++

	fill, ok := m.tryFill(o, bar, m.refPrice(bar))

	if !o.State.Terminal() && o.barsSeen >= m.cfg.Lookahead {
		o.State = Expired
		o.Reason = fmt.Sprintf("unfilled after %d bars", o.barsSeen)
	}
	return fill, ok
}

// ResolveSubmit matches a just-submitted order against its own submitting
// bar. Only same_close mode does this; the submitting bar does not count
// against the order's lifetime.
func (m *Matcher) ResolveSubmit(o *Order, bar market.Bar) (Fill, bool) {
	if m.cfg.Mode != FillSameClose || o.State.Terminal() {
		return Fill{}, false
	}
	return m.tryFill(o, bar, bar.Close)
}

// refPrice is the market-order execution price for a subsequent bar: the
// open when the order can only ever match its immediate successor, the close
// once a longer lifetime means the bar is consumed in full.
func (m *Matcher) refPrice(bar market.Bar) float64 {
	if m.cfg.Lookahead == 1 {
		return bar.Open
	}
	return bar.Close
}

func (m *Matcher) tryFill(o *Order, bar market.Bar, ref float64) (Fill, bool) {
	price := ref
	if o.Type == Limit {
		// No favorable slippage: a touched limit fills at the limit price.
		if o.Side == Buy && bar.Low > o.LimitPrice {
			return Fill{}, false
		}
		if o.Side == Sell && bar.High < o.LimitPrice {
			return Fill{}, false
		}
		price = o.LimitPrice
	}

	qty := o.Remaining()
	if m.cfg.LiquidityLimit > 0 && qty > m.cfg.LiquidityLimit {
		qty = m.cfg.LiquidityLimit
	}
	if qty <= 0 {
		return Fill{}, false
	}

	o.FilledQty += qty
	if o.Remaining() <= 0 {
		o.State = Filled
	} else {
		o.State = PartiallyFilled
	}

	return Fill{
		OrderID: o.ID,
		Time:    bar.Time,
		Side:    o.Side,
		Qty:     qty,
		Price:   price,
	}, true
}
