// Package backtest runs the deterministic bar-replay simulation: order
// management, fill matching, and the per-bar session loop.
package backtest

import (
	"fmt"
	"time"
)

// Side: +1 buy, -1 sell.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

type OrderType int8

const (
	Market OrderType = iota
	Limit
)

func (t OrderType) String() string {
	if t == Limit {
		return "LIMIT"
	}
	return "MARKET"
}

// OrderState is a monotonic state machine. Filled, Cancelled, Expired and
// Rejected are terminal; no transition ever leaves them.
type OrderState int8

const (
	Pending OrderState = iota
	PartiallyFilled
	Filled
	Cancelled
	Expired
	Rejected
)

func (s OrderState) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case Expired:
		return "EXPIRED"
	case Rejected:
		return "REJECTED"
	default:
		return fmt.Sprintf("OrderState(%d)", int8(s))
	}
}

func (s OrderState) Terminal() bool {
	return s == Filled || s == Cancelled || s == Expired || s == Rejected
}

// Order is one working simulation order. The matcher mutates State, FilledQty
// and barsSeen; nothing else writes to a submitted order.
type Order struct {
	ID         string
	Side       Side
	Qty        float64
	Type       OrderType
	LimitPrice float64 // meaningful only for Limit
	State      OrderState
	SubmitTime time.Time
	FilledQty  float64
	Reason     string // set on Rejected / Cancelled / Expired

	barsSeen int // bars the matcher has held this order against
}

// Remaining is the unfilled quantity.
func (o *Order) Remaining() float64 {
	return o.Qty - o.FilledQty
}

// Fill is one execution of (part of) an order against one bar.
type Fill struct {
	OrderID string
	Time    time.Time
	Side    Side
	Qty     float64
	Price   float64
}

// Signed returns the fill quantity with the side's sign applied.
func (f Fill) Signed() float64 {
	return float64(f.Side) * f.Qty
}
