// Package broker is the minimal trading surface the live runner needs:
// recent bars, the net position, an open-order check, and single-order
// submission.
package broker

import (
	"context"
	"time"

	"github.com/quietwizar/trading-system/market"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderRequest is one order submission. LimitPrice is nil for market orders.
type OrderRequest struct {
	Symbol        string
	Side          Side
	Qty           float64
	LimitPrice    *float64
	ClientOrderID string
}

// OrderAck is the broker's acknowledgement of a submitted order.
type OrderAck struct {
	ID            string
	ClientOrderID string
	Status        string
	SubmittedAt   time.Time
}

type Broker interface {
	// LatestBars returns up to limit most recent bars for the symbol and
	// timeframe, oldest first.
	LatestBars(ctx context.Context, symbol string, tf market.Timeframe, limit int) ([]market.Bar, error)

	// NetPosition returns the signed position quantity, zero when flat.
	NetPosition(ctx context.Context, symbol string) (float64, error)

	// HasOpenOrder reports whether any order for the symbol is still open.
	HasOpenOrder(ctx context.Context, symbol string) (bool, error)

	// AccountEquity returns the account's current equity.
	AccountEquity(ctx context.Context) (float64, error)

	SubmitOrder(ctx context.Context, req OrderRequest) (OrderAck, error)

	// ClosePosition flattens the symbol with a market order.
	ClosePosition(ctx context.Context, symbol string) error
}
