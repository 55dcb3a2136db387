package strategy

import (
	"fmt"
	"math"

	"github.com/quietwizar/trading-system/market"
)

// ContractError reports strategy output that violates the strategy contract.
// It is fatal: a strategy that emits malformed signals is unusable, so the
// session aborts rather than trading on garbage.
type ContractError struct {
	Strategy string
	Reason   string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("strategy %s: contract violation: %s", e.Strategy, e.Reason)
}

func contractErrorf(strat, format string, args ...any) *ContractError {
	return &ContractError{Strategy: strat, Reason: fmt.Sprintf(format, args...)}
}

// Adapter runs a Strategy over history-up-to-and-including the current bar
// and normalizes its final signal into a validated Intent.
type Adapter struct {
	strat Strategy
}

func NewAdapter(s Strategy) *Adapter {
	return &Adapter{strat: s}
}

func (a *Adapter) Strategy() Strategy { return a.strat }

// Evaluate computes the Intent for the last bar of history. The strategy
// sees every bar up to and including it, and nothing after.
func (a *Adapter) Evaluate(history []market.Bar) (Intent, error) {
	name := a.strat.Name()
	if len(history) == 0 {
		return Intent{}, contractErrorf(name, "evaluated with empty history")
	}
	last := history[len(history)-1]

	rows := a.strat.AddIndicators(history)
	if len(rows) != len(history) {
		return Intent{}, contractErrorf(name, "AddIndicators returned %d rows for %d bars", len(rows), len(history))
	}

	signals := a.strat.GenerateSignals(rows)
	if len(signals) == 0 {
		return Intent{}, contractErrorf(name, "GenerateSignals returned no rows")
	}

	sig := signals[len(signals)-1]
	if !sig.Time.Equal(last.Time) {
		return Intent{}, contractErrorf(name, "final signal at %s does not match final bar %s", sig.Time, last.Time)
	}

	return a.normalize(name, sig)
}

func (a *Adapter) normalize(name string, sig Signal) (Intent, error) {
	if sig.Signal < -1 || sig.Signal > 1 {
		return Intent{}, contractErrorf(name, "signal %d outside {-1, 0, 1}", sig.Signal)
	}
	if sig.TargetQty < 0 || math.IsNaN(sig.TargetQty) || math.IsInf(sig.TargetQty, 0) {
		return Intent{}, contractErrorf(name, "target_qty %v is not a non-negative finite number", sig.TargetQty)
	}
	if sig.LimitPrice != nil {
		lp := *sig.LimitPrice
		if lp <= 0 || math.IsNaN(lp) || math.IsInf(lp, 0) {
			return Intent{}, contractErrorf(name, "limit_price %v is not a positive finite number", lp)
		}
	}

	// target_qty == 0 iff direction == Flat.
	if sig.Signal == 0 && sig.TargetQty != 0 {
		return Intent{}, contractErrorf(name, "flat signal with non-zero target_qty %v", sig.TargetQty)
	}
	if sig.Signal != 0 && sig.TargetQty == 0 {
		return Intent{}, contractErrorf(name, "directional signal %d with zero target_qty", sig.Signal)
	}

	return Intent{
		Time:       sig.Time,
		Direction:  Direction(sig.Signal),
		TargetQty:  sig.TargetQty,
		LimitPrice: sig.LimitPrice,
	}, nil
}
