package perf

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mark(t *Tracker, start time.Time, equities ...float64) {
	for i, e := range equities {
		t.Mark(start.Add(time.Duration(i)*time.Minute), e)
	}
}

func TestReturns(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	mark(tr, time.Now(), 100, 110, 99)

	rets := tr.Returns()
	assert.Len(t, rets, 2)
	assert.InDelta(t, 0.10, rets[0], 1e-9)
	assert.InDelta(t, -0.10, rets[1], 1e-9)
}

func TestReturnsZeroEquity(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	mark(tr, time.Now(), 100, 0, 50)

	rets := tr.Returns()
	assert.InDelta(t, -1.0, rets[0], 1e-9)
	assert.Zero(t, rets[1])
}

func TestSummarizeWinRate(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	mark(tr, time.Now(), 10000, 10050, 10020)

	s := tr.Summarize(10000, []float64{50, -30, 0}, 252)
	assert.Equal(t, 3, s.Trades)
	assert.Equal(t, 1, s.Wins) // break-even is not a win
	assert.InDelta(t, 1.0/3.0, s.WinRate, 1e-9)
	assert.InDelta(t, 20.0, s.NetPnL, 1e-9)
}

func TestSummarizeNetPnLFromInitialEquity(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	// The first sample already reflects first-bar fills, so it is not the
	// starting equity.
	mark(tr, time.Now(), 10050, 10100)

	s := tr.Summarize(10000, nil, 252)
	assert.InDelta(t, 100.0, s.NetPnL, 1e-9)
	assert.InDelta(t, 10100.0, s.FinalEquity, 1e-9)

	// Zero initial equity falls back to the first mark.
	assert.InDelta(t, 50.0, tr.Summarize(0, nil, 252).NetPnL, 1e-9)
}

func TestSummarizeFlatCurveZeroSharpe(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	mark(tr, time.Now(), 10000, 10000, 10000, 10000)

	s := tr.Summarize(0, nil, 252)
	assert.Zero(t, s.Sharpe)
	assert.Zero(t, s.Volatility)
	assert.Zero(t, s.MaxDrawdown)
	assert.Zero(t, s.WinRate)
}

func TestSummarizeSharpe(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	// Alternating +1%/-1%-ish moves give a well-defined sample stddev.
	mark(tr, time.Now(), 100, 101, 100, 101, 100)

	s := tr.Summarize(0, nil, 252)
	rets := tr.Returns()
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	ss := 0.0
	for _, r := range rets {
		ss += (r - mean) * (r - mean)
	}
	sd := math.Sqrt(ss / float64(len(rets)-1))

	assert.InDelta(t, mean/sd*math.Sqrt(252), s.Sharpe, 1e-9)
	assert.InDelta(t, sd*math.Sqrt(252), s.Volatility, 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	mark(tr, time.Now(), 100, 120, 90, 110)

	s := tr.Summarize(0, nil, 252)
	assert.InDelta(t, 0.25, s.MaxDrawdown, 1e-9) // 120 -> 90
}

func TestSummarizeEmptyCurve(t *testing.T) {
	t.Parallel()

	s := NewTracker().Summarize(0, nil, 252)
	assert.Zero(t, s.Bars)
	assert.Zero(t, s.NetPnL)
	assert.Zero(t, s.FinalEquity)
}
