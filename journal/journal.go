// Package journal persists per-fill trade rows and per-bar equity snapshots.
package journal

import "time"

// TradeRecord is one applied fill.
type TradeRecord struct {
	Time    time.Time
	Symbol  string
	Side    string // "BUY" or "SELL"
	Qty     float64
	Price   float64
	NetPnL  float64
	OrderID string
}

// EquityRecord is one mark-to-market snapshot, taken at the bar close.
type EquityRecord struct {
	Time        time.Time
	Cash        float64
	PositionQty float64
	Equity      float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// Nop discards every record. Used when no journal is configured.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error   { return nil }
func (Nop) RecordEquity(EquityRecord) error { return nil }
func (Nop) Close() error                    { return nil }
