package strategy

import (
	"github.com/quietwizar/trading-system/indicators"
	"github.com/quietwizar/trading-system/market"
)

// RSIReversion fades RSI extremes on a single instrument:
//   - RSI above the overbought level: target short
//   - RSI below the oversold level: target long
//   - RSI crossing back through the exit midline: target flat
//
// Bars inside the RSI warm-up window resolve to flat.
type RSIReversion struct {
	cfg Config
}

func NewRSIReversion(cfg Config) *RSIReversion {
	if cfg.PositionSize <= 0 {
		cfg.PositionSize = Defaults().PositionSize
	}
	if cfg.Period <= 0 {
		cfg.Period = 14
	}
	if cfg.Overbought == 0 {
		cfg.Overbought = 65
	}
	if cfg.Oversold == 0 {
		cfg.Oversold = 35
	}
	if cfg.ExitLevel == 0 {
		cfg.ExitLevel = 50
	}
	return &RSIReversion{cfg: cfg}
}

func (s *RSIReversion) Name() string { return "rsi-reversion" }

func (s *RSIReversion) AddIndicators(bars []market.Bar) []Row {
	rsi := indicators.NewRSI(s.cfg.Period)

	rows := make([]Row, len(bars))
	for i, b := range bars {
		rsi.Update(b)
		row := Row{Bar: b}
		if rsi.Ready() {
			row.Values = map[string]float64{"rsi": rsi.Value()}
		}
		rows[i] = row
	}
	return rows
}

func (s *RSIReversion) GenerateSignals(rows []Row) []Signal {
	signals := make([]Signal, len(rows))

	state := 0 // current target regime: -1 short, 0 flat, +1 long
	for i, row := range rows {
		rsi, ok := row.Values["rsi"]
		if ok {
			switch state {
			case 0:
				if rsi > s.cfg.Overbought {
					state = -1
				} else if rsi < s.cfg.Oversold {
					state = +1
				}
			case -1:
				if rsi < s.cfg.ExitLevel {
					state = 0
				}
			case +1:
				if rsi > s.cfg.ExitLevel {
					state = 0
				}
			}
		}

		sig := Signal{Time: row.Bar.Time, Signal: state}
		if state != 0 {
			sig.TargetQty = s.cfg.PositionSize
			sig.LimitPrice = entryLimit(s.cfg, state, row.Bar.Close)
		}
		signals[i] = sig
	}
	return signals
}

// entryLimit prices a resting entry inside the last close when LimitOffset is
// configured: buys below the close, sells above it. Returns nil for market.
func entryLimit(cfg Config, signal int, closePrice float64) *float64 {
	if cfg.LimitOffset <= 0 {
		return nil
	}
	lp := closePrice * (1 - float64(signal)*cfg.LimitOffset)
	return &lp
}
