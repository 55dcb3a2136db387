package strategy

import "github.com/quietwizar/trading-system/market"

// Noop never trades. Baseline for wiring tests.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) AddIndicators(bars []market.Bar) []Row {
	rows := make([]Row, len(bars))
	for i, b := range bars {
		rows[i] = Row{Bar: b}
	}
	return rows
}

func (Noop) GenerateSignals(rows []Row) []Signal {
	signals := make([]Signal, len(rows))
	for i, r := range rows {
		signals[i] = Signal{Time: r.Bar.Time}
	}
	return signals
}
