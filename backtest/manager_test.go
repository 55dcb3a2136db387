package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietwizar/trading-system/strategy"
)

func intent(dir strategy.Direction, qty float64, limit *float64) strategy.Intent {
	return strategy.Intent{
		Time:       time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
		Direction:  dir,
		TargetQty:  qty,
		LimitPrice: limit,
	}
}

func TestReconcileSubmitsDelta(t *testing.T) {
	t.Parallel()

	m := NewManager()
	dec := m.Reconcile(intent(strategy.Long, 10, nil), 0)

	require.NotNil(t, dec.Order)
	assert.Equal(t, Buy, dec.Order.Side)
	assert.Equal(t, 10.0, dec.Order.Qty)
	assert.Equal(t, Market, dec.Order.Type)
	assert.Equal(t, "ORD-000001", dec.Order.ID)
	assert.Same(t, dec.Order, m.Pending())
}

func TestReconcileSizesAgainstPosition(t *testing.T) {
	t.Parallel()

	m := NewManager()
	// Long 4 already held, target long 10: buy the 6 difference.
	dec := m.Reconcile(intent(strategy.Long, 10, nil), 4)
	require.NotNil(t, dec.Order)
	assert.Equal(t, Buy, dec.Order.Side)
	assert.Equal(t, 6.0, dec.Order.Qty)
}

func TestReconcileAtTargetIsNoop(t *testing.T) {
	t.Parallel()

	m := NewManager()
	dec := m.Reconcile(intent(strategy.Long, 10, nil), 10)
	assert.Nil(t, dec.Order)
	assert.NotEmpty(t, dec.Reason)
	assert.Nil(t, m.Pending())
}

func TestReconcileUnchangedIntentIsIdempotent(t *testing.T) {
	t.Parallel()

	m := NewManager()
	first := m.Reconcile(intent(strategy.Long, 10, nil), 0)
	require.NotNil(t, first.Order)

	second := m.Reconcile(intent(strategy.Long, 10, nil), 0)
	assert.Nil(t, second.Order)
	assert.Nil(t, second.Cancelled)
	assert.Same(t, first.Order, m.Pending())
}

func TestReconcileChangedIntentCancelsAndReissues(t *testing.T) {
	t.Parallel()

	m := NewManager()
	first := m.Reconcile(intent(strategy.Long, 10, nil), 0)
	require.NotNil(t, first.Order)

	dec := m.Reconcile(intent(strategy.Short, 5, nil), 0)
	require.NotNil(t, dec.Cancelled)
	assert.Equal(t, Cancelled, dec.Cancelled.State)
	require.NotNil(t, dec.Order)
	assert.Equal(t, Sell, dec.Order.Side)
	assert.Equal(t, 5.0, dec.Order.Qty)
	assert.Same(t, dec.Order, m.Pending())
}

func TestReconcileCancelWithoutReissue(t *testing.T) {
	t.Parallel()

	m := NewManager()
	require.NotNil(t, m.Reconcile(intent(strategy.Long, 10, nil), 0).Order)

	// Position drifted to target while the order was working.
	dec := m.Reconcile(intent(strategy.Long, 10, nil), 10)
	require.NotNil(t, dec.Cancelled)
	assert.Nil(t, dec.Order)
	assert.Nil(t, m.Pending())
}

func TestReconcileLimitChangeReissues(t *testing.T) {
	t.Parallel()

	m := NewManager()
	l1, l2 := 95.0, 96.0
	require.NotNil(t, m.Reconcile(intent(strategy.Long, 10, &l1), 0).Order)

	dec := m.Reconcile(intent(strategy.Long, 10, &l2), 0)
	require.NotNil(t, dec.Cancelled)
	require.NotNil(t, dec.Order)
	assert.Equal(t, Limit, dec.Order.Type)
	assert.Equal(t, 96.0, dec.Order.LimitPrice)
}

func TestRejectedOrderNeverPends(t *testing.T) {
	t.Parallel()

	m := NewManager()
	bad := intent(strategy.Long, 10, nil)
	bad.Time = time.Time{} // no submit time

	dec := m.Reconcile(bad, 0)
	require.NotNil(t, dec.Order)
	assert.Equal(t, Rejected, dec.Order.State)
	assert.NotEmpty(t, dec.Order.Reason)
	assert.Nil(t, m.Pending())
}

func TestReleaseOnlyDropsTerminal(t *testing.T) {
	t.Parallel()

	m := NewManager()
	dec := m.Reconcile(intent(strategy.Long, 10, nil), 0)
	require.NotNil(t, dec.Order)

	m.Release(dec.Order) // still pending: no-op
	assert.Same(t, dec.Order, m.Pending())

	dec.Order.State = Filled
	m.Release(dec.Order)
	assert.Nil(t, m.Pending())
}
