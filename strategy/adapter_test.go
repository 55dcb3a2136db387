package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietwizar/trading-system/market"
)

// stub lets a test hand the adapter arbitrary strategy output.
type stub struct {
	rows    func(bars []market.Bar) []Row
	signals func(rows []Row) []Signal
}

func (s stub) Name() string { return "stub" }

func (s stub) AddIndicators(bars []market.Bar) []Row {
	if s.rows != nil {
		return s.rows(bars)
	}
	out := make([]Row, len(bars))
	for i, b := range bars {
		out[i] = Row{Bar: b}
	}
	return out
}

func (s stub) GenerateSignals(rows []Row) []Signal {
	return s.signals(rows)
}

func history(n int) []market.Bar {
	start := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		bars[i] = market.Bar{
			Time: start.Add(time.Duration(i) * time.Minute),
			Open: 100, High: 100, Low: 100, Close: 100, Volume: 1,
		}
	}
	return bars
}

// aligned builds signals matching the rows, then lets the test mutate the
// final one.
func aligned(mutate func(*Signal)) func([]Row) []Signal {
	return func(rows []Row) []Signal {
		out := make([]Signal, len(rows))
		for i, r := range rows {
			out[i] = Signal{Time: r.Bar.Time}
		}
		if mutate != nil {
			mutate(&out[len(out)-1])
		}
		return out
	}
}

func TestEvaluateNormalizesFinalSignal(t *testing.T) {
	t.Parallel()

	a := NewAdapter(stub{signals: aligned(func(s *Signal) {
		s.Signal = 1
		s.TargetQty = 10
	})})

	intent, err := a.Evaluate(history(5))
	require.NoError(t, err)
	assert.Equal(t, Long, intent.Direction)
	assert.Equal(t, 10.0, intent.TargetQty)
	assert.Nil(t, intent.LimitPrice)
	assert.Equal(t, 10.0, intent.TargetSigned())
}

func TestEvaluateShortSignedTarget(t *testing.T) {
	t.Parallel()

	a := NewAdapter(stub{signals: aligned(func(s *Signal) {
		s.Signal = -1
		s.TargetQty = 4
	})})

	intent, err := a.Evaluate(history(3))
	require.NoError(t, err)
	assert.Equal(t, -4.0, intent.TargetSigned())
}

func TestEvaluateWarmupResolvesFlat(t *testing.T) {
	t.Parallel()

	a := NewAdapter(stub{signals: aligned(nil)})
	intent, err := a.Evaluate(history(2))
	require.NoError(t, err)
	assert.Equal(t, Flat, intent.Direction)
	assert.Zero(t, intent.TargetQty)
}

func TestEvaluateContractViolations(t *testing.T) {
	t.Parallel()

	neg := -5.0
	cases := []struct {
		name string
		s    Strategy
	}{
		{"row count mismatch", stub{
			rows:    func(bars []market.Bar) []Row { return nil },
			signals: aligned(nil),
		}},
		{"no signals", stub{signals: func([]Row) []Signal { return nil }}},
		{"stale final timestamp", stub{signals: func(rows []Row) []Signal {
			out := aligned(nil)(rows)
			out[len(out)-1].Time = out[len(out)-1].Time.Add(-time.Hour)
			return out
		}}},
		{"signal out of range", stub{signals: aligned(func(s *Signal) {
			s.Signal = 2
			s.TargetQty = 1
		})}},
		{"negative target", stub{signals: aligned(func(s *Signal) {
			s.Signal = 1
			s.TargetQty = -1
		})}},
		{"flat with quantity", stub{signals: aligned(func(s *Signal) {
			s.TargetQty = 5
		})}},
		{"directional without quantity", stub{signals: aligned(func(s *Signal) {
			s.Signal = -1
		})}},
		{"negative limit", stub{signals: aligned(func(s *Signal) {
			s.Signal = 1
			s.TargetQty = 1
			s.LimitPrice = &neg
		})}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAdapter(tc.s).Evaluate(history(4))
			var cerr *ContractError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "stub", cerr.Strategy)
		})
	}
}

func TestEvaluateEmptyHistory(t *testing.T) {
	t.Parallel()

	_, err := NewAdapter(Noop{}).Evaluate(nil)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"noop", "rsi-reversion", "RSI", "ema-cross"} {
		s, err := New(name, Defaults())
		require.NoError(t, err, name)
		require.NotNil(t, s)
	}

	_, err := New("momentum-9000", Defaults())
	assert.Error(t, err)
}
