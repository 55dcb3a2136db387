package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	require.NoError(t, j.RecordTrade(TradeRecord{
		Time: base, Symbol: "AAPL", Side: "BUY",
		Qty: 10, Price: 101.5, NetPnL: 0, OrderID: "ORD-000001",
	}))
	require.NoError(t, j.RecordTrade(TradeRecord{
		Time: base.Add(5 * time.Minute), Symbol: "AAPL", Side: "SELL",
		Qty: 10, Price: 103.0, NetPnL: 15, OrderID: "ORD-000002",
	}))
	require.NoError(t, j.RecordEquity(EquityRecord{
		Time: base, Cash: 8985, PositionQty: 10, Equity: 10000,
	}))

	trades, err := j.ListTradesBetween(base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "BUY", trades[0].Side)
	assert.Equal(t, "ORD-000002", trades[1].OrderID)
	assert.InDelta(t, 15.0, trades[1].NetPnL, 1e-9)

	eq, err := j.ListEquityBetween(base, base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, eq, 1)
	assert.InDelta(t, 10000.0, eq[0].Equity, 1e-9)
}

func TestSQLiteGetTrade(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	// Two partial fills under one order id, plus an unrelated order.
	require.NoError(t, j.RecordTrade(TradeRecord{
		Time: base, Symbol: "AAPL", Side: "BUY",
		Qty: 4, Price: 101.0, OrderID: "ORD-000001",
	}))
	require.NoError(t, j.RecordTrade(TradeRecord{
		Time: base.Add(time.Minute), Symbol: "AAPL", Side: "BUY",
		Qty: 6, Price: 101.5, OrderID: "ORD-000001",
	}))
	require.NoError(t, j.RecordTrade(TradeRecord{
		Time: base.Add(2 * time.Minute), Symbol: "AAPL", Side: "SELL",
		Qty: 10, Price: 102.0, OrderID: "ORD-000002",
	}))

	fills, err := j.GetTrade("ORD-000001")
	require.NoError(t, err)
	require.Len(t, fills, 2)
	assert.Equal(t, 4.0, fills[0].Qty)
	assert.Equal(t, 6.0, fills[1].Qty)
	assert.Equal(t, "ORD-000001", fills[1].OrderID)

	_, err = j.GetTrade("ORD-999999")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteWindowExcludesEnd(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordTrade(TradeRecord{
			Time: base.Add(time.Duration(i) * time.Hour), Symbol: "SPY",
			Side: "BUY", Qty: 1, Price: 500, OrderID: "ORD-00000" + string(rune('1'+i)),
		}))
	}

	trades, err := j.ListTradesBetween(base, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}
