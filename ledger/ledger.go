// Package ledger owns position, cash, and trade accounting for one session.
//
// Only applied fills mutate the ledger. No other component writes to it.
package ledger

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/quietwizar/trading-system/journal"
)

// Position is the current signed exposure plus cost basis.
type Position struct {
	Qty      float64 // signed: >0 long, <0 short
	AvgEntry float64 // 0 when flat
}

// Trade is one append-only log row, written for every applied fill: opening
// fills with zero NetPnL, realizing fills with the P&L they closed.
type Trade struct {
	Time    time.Time
	Symbol  string
	Side    string // "BUY" or "SELL"
	Qty     float64
	Price   float64
	NetPnL  float64
	OrderID string
}

// Ledger applies fills to position and cash and keeps the trade log.
type Ledger struct {
	symbol      string
	initialCash float64
	cash        float64
	pos         Position
	realized    float64
	trades      []Trade
	closedPnLs  []float64 // one entry per realizing fill, for win-rate stats

	journal        journal.Journal // optional
	log            *slog.Logger
	marginWarnings int
}

func New(symbol string, initialCash float64, j journal.Journal, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{
		symbol:      symbol,
		initialCash: initialCash,
		cash:        initialCash,
		journal:     j,
		log:         log,
	}
}

// Apply books one fill: signedQty > 0 buys, < 0 sells. Same-direction adds
// recompute the size-weighted average entry; reducing or reversing fills
// realize P&L and a reversal re-opens the remainder at the fill price.
func (l *Ledger) Apply(t time.Time, signedQty, price float64, orderID string) (Trade, error) {
	if signedQty == 0 {
		return Trade{}, fmt.Errorf("apply fill: zero quantity")
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return Trade{}, fmt.Errorf("apply fill: invalid price %v", price)
	}

	realized := 0.0
	realizing := false
	switch {
	case l.pos.Qty == 0 || sameSign(l.pos.Qty, signedQty):
		// Opening or adding: weighted average entry.
		total := l.pos.Qty + signedQty
		l.pos.AvgEntry = (l.pos.AvgEntry*math.Abs(l.pos.Qty) + price*math.Abs(signedQty)) / math.Abs(total)
		l.pos.Qty = total

	case math.Abs(signedQty) <= math.Abs(l.pos.Qty):
		// Reducing (possibly to flat).
		closed := math.Abs(signedQty)
		realized = (price - l.pos.AvgEntry) * closed * sign(l.pos.Qty)
		realizing = true
		l.pos.Qty += signedQty
		if l.pos.Qty == 0 {
			l.pos.AvgEntry = 0
		}

	default:
		// Reversing: close everything, re-open the remainder at the fill price.
		closed := math.Abs(l.pos.Qty)
		realized = (price - l.pos.AvgEntry) * closed * sign(l.pos.Qty)
		realizing = true
		l.pos.Qty += signedQty
		l.pos.AvgEntry = price
	}

	l.cash -= signedQty * price
	l.realized += realized

	trade := Trade{
		Time:    t,
		Symbol:  l.symbol,
		Side:    sideName(signedQty),
		Qty:     math.Abs(signedQty),
		Price:   price,
		NetPnL:  realized,
		OrderID: orderID,
	}
	l.trades = append(l.trades, trade)
	if realizing {
		// Break-even closes count too.
		l.closedPnLs = append(l.closedPnLs, realized)
	}

	if l.journal != nil {
		err := l.journal.RecordTrade(journal.TradeRecord{
			Time:    trade.Time,
			Symbol:  trade.Symbol,
			Side:    trade.Side,
			Qty:     trade.Qty,
			Price:   trade.Price,
			NetPnL:  trade.NetPnL,
			OrderID: trade.OrderID,
		})
		if err != nil {
			return Trade{}, fmt.Errorf("journal trade: %w", err)
		}
	}

	if l.cash < 0 {
		// Margin is not modeled; negative cash is allowed but observable.
		l.marginWarnings++
		l.log.Warn("margin warning: cash balance negative",
			"symbol", l.symbol, "cash", l.cash, "order_id", orderID)
	}

	return trade, nil
}

// MarkToMarket journals one equity snapshot at the bar close and returns the
// mark-to-market equity.
func (l *Ledger) MarkToMarket(t time.Time, mark float64) (float64, error) {
	equity := l.Equity(mark)
	if l.journal != nil {
		err := l.journal.RecordEquity(journal.EquityRecord{
			Time:        t,
			Cash:        l.cash,
			PositionQty: l.pos.Qty,
			Equity:      equity,
		})
		if err != nil {
			return equity, fmt.Errorf("journal equity: %w", err)
		}
	}
	return equity, nil
}

func (l *Ledger) Position() Position  { return l.pos }
func (l *Ledger) Cash() float64       { return l.cash }
func (l *Ledger) InitialCash() float64 { return l.initialCash }
func (l *Ledger) RealizedPnL() float64 { return l.realized }
func (l *Ledger) MarginWarnings() int  { return l.marginWarnings }

// UnrealizedPnL marks the open position against the given price.
func (l *Ledger) UnrealizedPnL(mark float64) float64 {
	if l.pos.Qty == 0 {
		return 0
	}
	return (mark - l.pos.AvgEntry) * l.pos.Qty
}

// Equity is cash plus the open position marked at the given price. The
// accounting identity equity == initialCash + realized + unrealized holds
// after every applied fill.
func (l *Ledger) Equity(mark float64) float64 {
	return l.cash + l.pos.Qty*mark
}

// Trades returns the append-only trade log.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// ClosedTradePnLs returns the realized P&L of every position-reducing fill,
// in order. This feeds win-rate statistics.
func (l *Ledger) ClosedTradePnLs() []float64 {
	out := make([]float64, len(l.closedPnLs))
	copy(out, l.closedPnLs)
	return out
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

func sideName(signedQty float64) string {
	if signedQty > 0 {
		return "BUY"
	}
	return "SELL"
}
