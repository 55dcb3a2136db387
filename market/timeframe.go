package market

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe names a bar interval using the broker API's spelling.
type Timeframe string

const (
	Min1  Timeframe = "1Min"
	Min5  Timeframe = "5Min"
	Min15 Timeframe = "15Min"
	Hour1 Timeframe = "1Hour"
	Day1  Timeframe = "1Day"
)

// ParseTimeframe accepts the canonical names case-insensitively.
func ParseTimeframe(s string) (Timeframe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1min", "1m":
		return Min1, nil
	case "5min", "5m":
		return Min5, nil
	case "15min", "15m":
		return Min15, nil
	case "1hour", "1h":
		return Hour1, nil
	case "1day", "1d":
		return Day1, nil
	default:
		return "", fmt.Errorf("unknown timeframe %q (supported: 1Min, 5Min, 15Min, 1Hour, 1Day)", s)
	}
}

func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case Min1:
		return time.Minute
	case Min5:
		return 5 * time.Minute
	case Min15:
		return 15 * time.Minute
	case Hour1:
		return time.Hour
	case Day1:
		return 24 * time.Hour
	default:
		return 0
	}
}

// BarsPerYear is the default Sharpe annualization factor for this timeframe,
// based on a 252-day year of 6.5-hour US equity sessions. Sessions override
// it through configuration.
func (tf Timeframe) BarsPerYear() float64 {
	const days = 252.0
	switch tf {
	case Min1:
		return days * 390
	case Min5:
		return days * 78
	case Min15:
		return days * 26
	case Hour1:
		return days * 6.5
	case Day1:
		return days
	default:
		return days
	}
}
