package backtest

import (
	"fmt"
	"math"

	"github.com/quietwizar/trading-system/strategy"
)

// Decision is the outcome of reconciling one intent against current state.
// Order is the newly submitted (or rejected) order, if any; Cancelled is a
// previously pending order this reconcile cancelled. Reason makes every
// no-op traceable.
type Decision struct {
	Order     *Order
	Cancelled *Order
	Reason    string
}

// Manager enforces the single-working-order policy: at most one pending
// order exists at any time, and every intent is reconciled against the
// current position before an order is cut.
type Manager struct {
	pending *Order
	seq     int
}

func NewManager() *Manager {
	return &Manager{}
}

// Pending returns the current working order, nil when there is none.
func (m *Manager) Pending() *Order {
	return m.pending
}

// Release drops the working order once it has reached a terminal state.
func (m *Manager) Release(o *Order) {
	if m.pending == o && o.State.Terminal() {
		m.pending = nil
	}
}

// Reconcile turns an intent into at most one order. The desired delta is the
// signed target minus the current signed position; a pending order whose
// side, remaining quantity, and limit all still match the delta is left
// alone, anything else is cancelled and re-issued.
func (m *Manager) Reconcile(intent strategy.Intent, positionQty float64) Decision {
	delta := intent.TargetSigned() - positionQty

	if m.pending != nil {
		if m.matchesIntent(intent, delta) {
			return Decision{Reason: "pending order already matches intent"}
		}
		cancelled := m.pending
		cancelled.State = Cancelled
		cancelled.Reason = "superseded by new intent"
		m.pending = nil

		if delta == 0 {
			return Decision{Cancelled: cancelled, Reason: "position at target after cancel"}
		}
		o, dec := m.submit(intent, delta)
		dec.Cancelled = cancelled
		if o != nil {
			dec.Order = o
		}
		return dec
	}

	if delta == 0 {
		return Decision{Reason: "position already at target"}
	}
	o, dec := m.submit(intent, delta)
	if o != nil {
		dec.Order = o
	}
	return dec
}

func (m *Manager) matchesIntent(intent strategy.Intent, delta float64) bool {
	o := m.pending
	if delta == 0 {
		return false
	}
	if o.Side != deltaSide(delta) || o.Remaining() != math.Abs(delta) {
		return false
	}
	if intent.LimitPrice == nil {
		return o.Type == Market
	}
	return o.Type == Limit && o.LimitPrice == *intent.LimitPrice
}

// submit builds and validates one order for the signed delta. A malformed
// order is returned in Rejected state and never becomes the working order.
func (m *Manager) submit(intent strategy.Intent, delta float64) (*Order, Decision) {
	m.seq++
	o := &Order{
		ID:         fmt.Sprintf("ORD-%06d", m.seq),
		Side:       deltaSide(delta),
		Qty:        math.Abs(delta),
		Type:       Market,
		State:      Pending,
		SubmitTime: intent.Time,
	}
	if intent.LimitPrice != nil {
		o.Type = Limit
		o.LimitPrice = *intent.LimitPrice
	}

	if reason, ok := validateOrder(o); !ok {
		o.State = Rejected
		o.Reason = reason
		return o, Decision{Reason: "order rejected: " + reason}
	}

	m.pending = o
	return o, Decision{Reason: "order submitted"}
}

func validateOrder(o *Order) (string, bool) {
	if o.Qty <= 0 || math.IsNaN(o.Qty) || math.IsInf(o.Qty, 0) {
		return fmt.Sprintf("quantity %v is not a positive finite number", o.Qty), false
	}
	if o.Type == Limit && (o.LimitPrice <= 0 || math.IsNaN(o.LimitPrice) || math.IsInf(o.LimitPrice, 0)) {
		return fmt.Sprintf("limit price %v is not a positive finite number", o.LimitPrice), false
	}
	if o.SubmitTime.IsZero() {
		return "missing submit time", false
	}
	return "", true
}

func deltaSide(delta float64) Side {
	if delta > 0 {
		return Buy
	}
	return Sell
}
