package journal

import (
	"fmt"
	"time"
)

// GetTrade returns the fills recorded under one order id, in time order.
// Partially filled orders journal one row per fill, all sharing the id.
func (j *SQLiteJournal) GetTrade(orderID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, symbol, side, qty, price, net_pnl, order_id
		FROM trades
		WHERE order_id = ?
		ORDER BY time ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.Time,
			&rec.Symbol,
			&rec.Side,
			&rec.Qty,
			&rec.Price,
			&rec.NetPnL,
			&rec.OrderID,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("trade %q not found", orderID)
	}
	return out, nil
}

// ListTradesBetween returns trades whose time is within [start, end).
func (j *SQLiteJournal) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, symbol, side, qty, price, net_pnl, order_id
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.Time,
			&rec.Symbol,
			&rec.Side,
			&rec.Qty,
			&rec.Price,
			&rec.NetPnL,
			&rec.OrderID,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity snapshots within [start, end).
func (j *SQLiteJournal) ListEquityBetween(start, end time.Time) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, position_qty, equity
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var rec EquityRecord
		if err := rows.Scan(&rec.Time, &rec.Cash, &rec.PositionQty, &rec.Equity); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
