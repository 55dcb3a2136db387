// Package feed yields historical bars one at a time, in timestamp order.
//
// Feeds are lazy, finite, and non-restartable. Every implementation enforces
// strictly increasing timestamps and candle shape on the way out, so
// downstream components can trust the sequence without re-validating.
package feed

import (
	"time"

	"github.com/quietwizar/trading-system/market"
)

// Feed yields bars from a dataset one at a time.
// Implementations are deterministic and return (ok=false, err=nil) at EOF.
type Feed interface {
	Next() (b market.Bar, ok bool, err error)
	Close() error
}

// sequencer tracks the previous timestamp and rejects duplicates and
// regressions as malformed input.
type sequencer struct {
	last time.Time
}

func (s *sequencer) check(b market.Bar) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if !s.last.IsZero() && !b.Time.After(s.last) {
		return market.DataErrorf("bar %s not after previous bar %s",
			b.Time.Format(time.RFC3339), s.last.Format(time.RFC3339))
	}
	s.last = b.Time
	return nil
}

// SliceFeed replays an in-memory bar slice. Used by tests and by callers
// that already hold a dataset.
type SliceFeed struct {
	bars []market.Bar
	pos  int
	seq  sequencer
}

func NewSliceFeed(bars []market.Bar) *SliceFeed {
	return &SliceFeed{bars: bars}
}

func (f *SliceFeed) Next() (market.Bar, bool, error) {
	if f.pos >= len(f.bars) {
		return market.Bar{}, false, nil
	}
	b := f.bars[f.pos]
	f.pos++
	if err := f.seq.check(b); err != nil {
		return market.Bar{}, false, err
	}
	return b, true, nil
}

func (f *SliceFeed) Close() error {
	f.pos = len(f.bars)
	return nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
