package strategy

import (
	"github.com/quietwizar/trading-system/indicators"
	"github.com/quietwizar/trading-system/market"
)

// EMACross targets the prevailing fast/slow EMA regime: long while the fast
// EMA is above the slow one, short while below. Warm-up bars are flat.
type EMACross struct {
	cfg Config
}

func NewEMACross(cfg Config) *EMACross {
	if cfg.PositionSize <= 0 {
		cfg.PositionSize = Defaults().PositionSize
	}
	if cfg.FastPeriod <= 0 {
		cfg.FastPeriod = 10
	}
	if cfg.SlowPeriod <= 0 {
		cfg.SlowPeriod = 30
	}
	return &EMACross{cfg: cfg}
}

func (s *EMACross) Name() string { return "ema-cross" }

func (s *EMACross) AddIndicators(bars []market.Bar) []Row {
	fast := indicators.NewEMA(s.cfg.FastPeriod)
	slow := indicators.NewEMA(s.cfg.SlowPeriod)

	rows := make([]Row, len(bars))
	for i, b := range bars {
		fast.Update(b)
		slow.Update(b)
		row := Row{Bar: b}
		if fast.Ready() && slow.Ready() {
			row.Values = map[string]float64{
				"ema_fast": fast.Value(),
				"ema_slow": slow.Value(),
			}
		}
		rows[i] = row
	}
	return rows
}

func (s *EMACross) GenerateSignals(rows []Row) []Signal {
	signals := make([]Signal, len(rows))
	for i, row := range rows {
		sig := Signal{Time: row.Bar.Time}

		fast, okF := row.Values["ema_fast"]
		slow, okS := row.Values["ema_slow"]
		if okF && okS && fast != slow {
			if fast > slow {
				sig.Signal = +1
			} else {
				sig.Signal = -1
			}
			sig.TargetQty = s.cfg.PositionSize
		}
		signals[i] = sig
	}
	return signals
}
