// Package strategy defines the pluggable strategy contract and the adapter
// that normalizes strategy output into per-bar trading intents.
package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/quietwizar/trading-system/market"
)

// Direction is the desired exposure of an Intent.
type Direction int8

const (
	Short Direction = -1
	Flat  Direction = 0
	Long  Direction = +1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// Intent is a strategy's desired target position for the current bar. It is
// produced once per bar by the Adapter and discarded after consumption.
type Intent struct {
	Time       time.Time
	Direction  Direction
	TargetQty  float64
	LimitPrice *float64 // nil means market
}

// TargetSigned returns the signed target quantity (negative for short).
func (i Intent) TargetSigned() float64 {
	return float64(i.Direction) * i.TargetQty
}

// Row is one bar annotated with named indicator values. Strategies append
// columns; they never mutate the bar.
type Row struct {
	Bar    market.Bar
	Values map[string]float64
}

// Signal is the raw per-bar strategy output: signal in {-1, 0, +1}, a target
// quantity, and an optional limit price.
type Signal struct {
	Time       time.Time
	Signal     int
	TargetQty  float64
	LimitPrice *float64
}

// Strategy is the capability set every pluggable strategy must offer. Both
// methods must be pure functions of their input: same history in, same rows
// out. Warm-up bars resolve to signal 0, never to an error.
type Strategy interface {
	Name() string
	AddIndicators(bars []market.Bar) []Row
	GenerateSignals(rows []Row) []Signal
}

// Config carries the tunable parameters shared by the built-in strategies.
// Strategies read only the fields they care about.
type Config struct {
	PositionSize float64 `json:"position_size" yaml:"position_size"`

	// rsi-reversion
	Period     int     `json:"period,omitempty" yaml:"period,omitempty"`
	Overbought float64 `json:"overbought,omitempty" yaml:"overbought,omitempty"`
	Oversold   float64 `json:"oversold,omitempty" yaml:"oversold,omitempty"`
	ExitLevel  float64 `json:"exit_level,omitempty" yaml:"exit_level,omitempty"`

	// ema-cross
	FastPeriod int `json:"fast_period,omitempty" yaml:"fast_period,omitempty"`
	SlowPeriod int `json:"slow_period,omitempty" yaml:"slow_period,omitempty"`

	// LimitOffset, when positive, makes entries rest as limit orders this
	// fraction inside the last close (buys below, sells above). Zero means
	// market orders. Exits are always market so a session can reliably flatten.
	LimitOffset float64 `json:"limit_offset,omitempty" yaml:"limit_offset,omitempty"`
}

// Defaults mirrors the parameters the strategy was researched with.
func Defaults() Config {
	return Config{
		PositionSize: 10,
		Period:       14,
		Overbought:   65,
		Oversold:     35,
		ExitLevel:    50,
		FastPeriod:   10,
		SlowPeriod:   30,
	}
}

// New builds a registered strategy by name.
func New(name string, cfg Config) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil
	case "rsi-reversion", "rsi":
		return NewRSIReversion(cfg), nil
	case "ema-cross", "emacross":
		return NewEMACross(cfg), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, rsi-reversion, ema-cross)", name)
	}
}
