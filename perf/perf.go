// Package perf builds the equity curve and summary statistics for one run.
package perf

import (
	"math"
	"time"
)

// EquityPoint is one mark-to-market sample, taken at a bar close.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Tracker accumulates the equity curve as bars are processed.
type Tracker struct {
	curve []EquityPoint
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Mark appends one equity sample. Call once per bar, after fills are applied.
func (t *Tracker) Mark(at time.Time, equity float64) {
	t.curve = append(t.curve, EquityPoint{Time: at, Equity: equity})
}

// Curve returns the equity samples in bar order.
func (t *Tracker) Curve() []EquityPoint {
	out := make([]EquityPoint, len(t.curve))
	copy(out, t.curve)
	return out
}

// Returns computes per-bar simple returns from the equity curve. A sample
// following zero equity yields a zero return rather than a division blowup.
func (t *Tracker) Returns() []float64 {
	if len(t.curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(t.curve)-1)
	for i := 1; i < len(t.curve); i++ {
		prev := t.curve[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (t.curve[i].Equity-prev)/prev)
	}
	return out
}

// Summary is the end-of-run report.
type Summary struct {
	Bars        int
	Trades      int     // realizing fills
	Wins        int     // realizing fills with positive P&L
	WinRate     float64 // Wins / Trades, 0 when no trades
	NetPnL      float64 // final equity minus initial equity
	FinalEquity float64
	Sharpe      float64 // annualized, 0 when undefined
	Volatility  float64 // annualized stddev of per-bar returns
	MaxDrawdown float64 // fraction of peak equity, >= 0
}

// Summarize reduces the curve and the realized per-trade P&Ls to a Summary.
// initialEquity is the account equity before the first bar; the first curve
// sample already reflects first-bar fills, so net P&L is computed against
// initialEquity, not the first mark. Pass 0 to fall back to the first mark
// (live runs, where pre-run equity is unknown). annualization is the number
// of bars per year for the session's timeframe.
func (t *Tracker) Summarize(initialEquity float64, closedPnLs []float64, annualization float64) Summary {
	s := Summary{Bars: len(t.curve), Trades: len(closedPnLs)}

	for _, pnl := range closedPnLs {
		if pnl > 0 {
			s.Wins++
		}
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades)
	}

	if len(t.curve) > 0 {
		s.FinalEquity = t.curve[len(t.curve)-1].Equity
		base := initialEquity
		if base == 0 {
			base = t.curve[0].Equity
		}
		s.NetPnL = s.FinalEquity - base
		s.MaxDrawdown = maxDrawdown(t.curve)
	}

	returns := t.Returns()
	if len(returns) >= 2 {
		mean, sd := meanStddev(returns)
		s.Volatility = sd * math.Sqrt(annualization)
		if sd > 0 {
			s.Sharpe = mean / sd * math.Sqrt(annualization)
		}
	}
	return s
}

// maxDrawdown is the largest peak-to-trough equity drop as a fraction of the
// peak.
func maxDrawdown(curve []EquityPoint) float64 {
	peak := curve[0].Equity
	worst := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// meanStddev returns the mean and the sample standard deviation.
func meanStddev(xs []float64) (float64, float64) {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}
