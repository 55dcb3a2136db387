// Package live runs a strategy against a real broker on a polling timer.
//
// The runner reuses the exact strategy adapter the backtester uses, so a
// strategy graduates from simulation to live trading without code changes.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/quietwizar/trading-system/broker"
	"github.com/quietwizar/trading-system/journal"
	"github.com/quietwizar/trading-system/market"
	"github.com/quietwizar/trading-system/perf"
	"github.com/quietwizar/trading-system/pkg/id"
	"github.com/quietwizar/trading-system/strategy"
)

type Config struct {
	Symbol    string
	Timeframe market.Timeframe

	// Interval is the polling period.
	Interval time.Duration

	// Lookback is how many recent bars each evaluation sees. Must cover the
	// strategy's indicator warm-up.
	Lookback int

	// MaxOrderNotional caps a single order's qty x price. Zero disables.
	MaxOrderNotional float64
}

func (c Config) validate() error {
	if c.Symbol == "" {
		return errors.New("live: symbol is required")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("live: interval %v must be positive", c.Interval)
	}
	if c.Lookback < 2 {
		return fmt.Errorf("live: lookback %d must be at least 2", c.Lookback)
	}
	if c.MaxOrderNotional < 0 {
		return fmt.Errorf("live: max order notional %v must be non-negative", c.MaxOrderNotional)
	}
	return nil
}

// Runner polls the broker on a timer and submits at most one order per tick.
type Runner struct {
	cfg     Config
	broker  broker.Broker
	adapter *strategy.Adapter
	journal journal.Journal
	tracker *perf.Tracker
	log     *slog.Logger
}

func NewRunner(cfg Config, b broker.Broker, strat strategy.Strategy, j journal.Journal, log *slog.Logger) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if j == nil {
		j = journal.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		cfg:     cfg,
		broker:  b,
		adapter: strategy.NewAdapter(strat),
		journal: j,
		tracker: perf.NewTracker(),
		log:     log,
	}, nil
}

// Run evaluates immediately, then once per interval, until the context is
// cancelled. Cancellation is a clean shutdown: the accumulated equity-curve
// summary is returned with a nil error. Contract violations are fatal;
// broker and data hiccups are logged and retried on the next tick.
func (r *Runner) Run(ctx context.Context) (perf.Summary, error) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := r.step(ctx); err != nil {
			var cerr *strategy.ContractError
			if errors.As(err, &cerr) {
				return r.summary(), err
			}
			r.log.Warn("tick failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return r.summary(), nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) summary() perf.Summary {
	return r.tracker.Summarize(0, nil, r.cfg.Timeframe.BarsPerYear())
}

func (r *Runner) step(ctx context.Context) error {
	bars, err := r.broker.LatestBars(ctx, r.cfg.Symbol, r.cfg.Timeframe, r.cfg.Lookback)
	if err != nil {
		return err
	}
	if len(bars) < 2 {
		r.log.Info("not enough bars yet", "have", len(bars))
		return nil
	}
	last := bars[len(bars)-1]

	intent, err := r.adapter.Evaluate(bars)
	if err != nil {
		return err
	}

	if err := r.trade(ctx, intent, last); err != nil {
		return err
	}

	equity, err := r.broker.AccountEquity(ctx)
	if err != nil {
		return err
	}
	r.tracker.Mark(last.Time, equity)
	if err := r.journal.RecordEquity(journal.EquityRecord{
		Time:   last.Time,
		Equity: equity,
	}); err != nil {
		return fmt.Errorf("journal equity: %w", err)
	}
	return nil
}

func (r *Runner) trade(ctx context.Context, intent strategy.Intent, last market.Bar) error {
	open, err := r.broker.HasOpenOrder(ctx, r.cfg.Symbol)
	if err != nil {
		return err
	}
	if open {
		r.log.Info("skip: open order working", "symbol", r.cfg.Symbol)
		return nil
	}

	pos, err := r.broker.NetPosition(ctx, r.cfg.Symbol)
	if err != nil {
		return err
	}

	if intent.Direction == strategy.Flat {
		if pos == 0 {
			return nil
		}
		r.log.Info("flattening position", "symbol", r.cfg.Symbol, "qty", pos)
		if err := r.broker.ClosePosition(ctx, r.cfg.Symbol); err != nil {
			return err
		}
		return r.journalSubmission(closeSide(pos), math.Abs(pos), last.Close, "", 0)
	}

	// Already positioned in the intent's direction: hold, never pyramid.
	if pos != 0 && (pos > 0) == (intent.Direction == strategy.Long) {
		r.log.Debug("skip: already positioned", "symbol", r.cfg.Symbol, "qty", pos)
		return nil
	}

	delta := intent.TargetSigned() - pos
	if delta == 0 {
		return nil
	}

	qty := math.Abs(delta)
	ref := last.Close
	if intent.LimitPrice != nil {
		ref = *intent.LimitPrice
	}
	if r.cfg.MaxOrderNotional > 0 && qty*ref > r.cfg.MaxOrderNotional {
		capped := r.cfg.MaxOrderNotional / ref
		r.log.Info("capping order notional",
			"symbol", r.cfg.Symbol, "qty", qty, "capped", capped)
		qty = capped
	}
	if qty <= 0 {
		return nil
	}

	side := broker.Buy
	if delta < 0 {
		side = broker.Sell
	}
	req := broker.OrderRequest{
		Symbol:        r.cfg.Symbol,
		Side:          side,
		Qty:           qty,
		LimitPrice:    intent.LimitPrice,
		ClientOrderID: id.Tagged("LIVE"),
	}

	ack, err := r.broker.SubmitOrder(ctx, req)
	if err != nil {
		return err
	}
	r.log.Info("order submitted",
		"symbol", r.cfg.Symbol, "side", side, "qty", qty,
		"order_id", ack.ID, "client_order_id", ack.ClientOrderID, "status", ack.Status)

	return r.journalSubmission(side, qty, ref, ack.ID, 0)
}

// journalSubmission records the order as a trade row at the reference price.
// Live fills are asynchronous, so the row captures the submission, not the
// execution.
func (r *Runner) journalSubmission(side broker.Side, qty, price float64, orderID string, pnl float64) error {
	rec := journal.TradeRecord{
		Time:    time.Now().UTC(),
		Symbol:  r.cfg.Symbol,
		Side:    "BUY",
		Qty:     qty,
		Price:   price,
		NetPnL:  pnl,
		OrderID: orderID,
	}
	if side == broker.Sell {
		rec.Side = "SELL"
	}
	if err := r.journal.RecordTrade(rec); err != nil {
		return fmt.Errorf("journal trade: %w", err)
	}
	return nil
}

func closeSide(pos float64) broker.Side {
	if pos > 0 {
		return broker.Sell
	}
	return broker.Buy
}
