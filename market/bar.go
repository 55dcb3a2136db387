// Package market defines the price data types shared by feeds, strategies,
// and the simulation engine.
package market

import (
	"fmt"
	"math"
	"time"
)

// Bar is an immutable OHLCV record for one time interval. Feeds create bars;
// everyone else only reads them.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Validate checks the candle shape invariants: positive prices, High at or
// above both Open and Close, Low at or below both.
func (b Bar) Validate() error {
	if b.Time.IsZero() {
		return DataErrorf("bar has zero timestamp")
	}
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return DataErrorf("bar %s has invalid price %v", b.Time.Format(time.RFC3339), p)
		}
	}
	if b.Volume < 0 {
		return DataErrorf("bar %s has negative volume %v", b.Time.Format(time.RFC3339), b.Volume)
	}
	if b.High < math.Max(b.Open, b.Close) {
		return DataErrorf("bar %s high %v below max(open, close)", b.Time.Format(time.RFC3339), b.High)
	}
	if b.Low > math.Min(b.Open, b.Close) {
		return DataErrorf("bar %s low %v above min(open, close)", b.Time.Format(time.RFC3339), b.Low)
	}
	return nil
}

// DataError reports malformed or out-of-order market data. It is fatal to a
// session: once the feed is suspect, no downstream trade log can be trusted.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "data error: " + e.Reason
}

func DataErrorf(format string, args ...any) *DataError {
	return &DataError{Reason: fmt.Sprintf(format, args...)}
}
