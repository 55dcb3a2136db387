package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quietwizar/trading-system/feed"
	"github.com/quietwizar/trading-system/journal"
	"github.com/quietwizar/trading-system/ledger"
	"github.com/quietwizar/trading-system/market"
	"github.com/quietwizar/trading-system/perf"
	"github.com/quietwizar/trading-system/strategy"
)

// SessionConfig configures one backtest run over one instrument.
type SessionConfig struct {
	Symbol      string
	InitialCash float64
	Match       MatchConfig

	// Annualization is the bars-per-year factor for Sharpe and volatility.
	Annualization float64

	Journal journal.Journal // nil disables journaling
	Logger  *slog.Logger    // nil uses slog.Default
}

func (c SessionConfig) validate() error {
	if c.Symbol == "" {
		return errors.New("session: symbol is required")
	}
	if c.InitialCash <= 0 {
		return fmt.Errorf("session: initial cash %v must be positive", c.InitialCash)
	}
	if c.Annualization <= 0 {
		return fmt.Errorf("session: annualization factor %v must be positive", c.Annualization)
	}
	return c.Match.Validate()
}

// Result is the complete output of one run.
type Result struct {
	Symbol   string
	Strategy string
	Start    time.Time
	End      time.Time

	InitialCash    float64
	Summary        perf.Summary
	Trades         []ledger.Trade
	EquityCurve    []perf.EquityPoint
	Rejections     int
	Expirations    int
	MarginWarnings int
}

// Session drives the single-threaded bar pipeline. Per bar, in order: resolve
// the pending order, extend history, evaluate the strategy, reconcile the
// intent into an order, then mark equity at the close. Strategies only ever
// see bars up to and including the current one.
type Session struct {
	cfg     SessionConfig
	feed    feed.Feed
	adapter *strategy.Adapter
	manager *Manager
	matcher *Matcher
	ledger  *ledger.Ledger
	tracker *perf.Tracker
	log     *slog.Logger
}

func NewSession(cfg SessionConfig, f feed.Feed, strat strategy.Strategy) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		cfg:     cfg,
		feed:    f,
		adapter: strategy.NewAdapter(strat),
		manager: NewManager(),
		matcher: NewMatcher(cfg.Match),
		ledger:  ledger.New(cfg.Symbol, cfg.InitialCash, cfg.Journal, log),
		tracker: perf.NewTracker(),
		log:     log,
	}, nil
}

// Run consumes the feed to exhaustion and returns the run result. Data and
// contract errors are fatal; the partial state behind them is not returned.
func (s *Session) Run(ctx context.Context) (Result, error) {
	res := Result{
		Symbol:      s.cfg.Symbol,
		Strategy:    s.adapter.Strategy().Name(),
		InitialCash: s.cfg.InitialCash,
	}

	var history []market.Bar

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		bar, ok, err := s.feed.Next()
		if err != nil {
			return Result{}, fmt.Errorf("feed: %w", err)
		}
		if !ok {
			break
		}
		if res.Start.IsZero() {
			res.Start = bar.Time
		}
		res.End = bar.Time

		// 1. Resolve the working order against this bar before the
		// strategy sees it.
		if err := s.resolvePending(bar, &res); err != nil {
			return Result{}, err
		}

		// 2. Extend history, evaluate, reconcile.
		history = append(history, bar)
		intent, err := s.adapter.Evaluate(history)
		if err != nil {
			return Result{}, err
		}

		dec := s.manager.Reconcile(intent, s.ledger.Position().Qty)
		s.logDecision(bar, intent, dec, &res)

		// 3. same_close orders may match their own bar immediately.
		if dec.Order != nil && !dec.Order.State.Terminal() {
			if fill, ok := s.matcher.ResolveSubmit(dec.Order, bar); ok {
				if err := s.applyFill(fill); err != nil {
					return Result{}, err
				}
			}
			s.manager.Release(dec.Order)
		}

		// 4. Mark to market at the close.
		equity, err := s.ledger.MarkToMarket(bar.Time, bar.Close)
		if err != nil {
			return Result{}, err
		}
		s.tracker.Mark(bar.Time, equity)
	}

	res.Summary = s.tracker.Summarize(s.cfg.InitialCash, s.ledger.ClosedTradePnLs(), s.cfg.Annualization)
	res.Trades = s.ledger.Trades()
	res.EquityCurve = s.tracker.Curve()
	res.MarginWarnings = s.ledger.MarginWarnings()
	return res, nil
}

func (s *Session) resolvePending(bar market.Bar, res *Result) error {
	o := s.manager.Pending()
	if o == nil {
		return nil
	}
	if fill, ok := s.matcher.Resolve(o, bar); ok {
		if err := s.applyFill(fill); err != nil {
			return err
		}
	}
	if o.State == Expired {
		res.Expirations++
		s.log.Info("order expired",
			"order_id", o.ID, "side", o.Side.String(), "remaining", o.Remaining())
	}
	s.manager.Release(o)
	return nil
}

func (s *Session) applyFill(fill Fill) error {
	trade, err := s.ledger.Apply(fill.Time, fill.Signed(), fill.Price, fill.OrderID)
	if err != nil {
		return fmt.Errorf("apply fill %s: %w", fill.OrderID, err)
	}
	s.log.Debug("fill applied",
		"order_id", fill.OrderID, "side", fill.Side.String(),
		"qty", fill.Qty, "price", fill.Price, "net_pnl", trade.NetPnL)
	return nil
}

func (s *Session) logDecision(bar market.Bar, intent strategy.Intent, dec Decision, res *Result) {
	if dec.Cancelled != nil {
		s.log.Debug("order cancelled",
			"order_id", dec.Cancelled.ID, "reason", dec.Cancelled.Reason)
	}
	switch {
	case dec.Order == nil:
		s.log.Debug("no order", "time", bar.Time, "reason", dec.Reason)
	case dec.Order.State == Rejected:
		res.Rejections++
		s.log.Warn("order rejected",
			"order_id", dec.Order.ID, "reason", dec.Order.Reason)
	default:
		s.log.Debug("order submitted",
			"order_id", dec.Order.ID, "side", dec.Order.Side.String(),
			"type", dec.Order.Type.String(), "qty", dec.Order.Qty,
			"direction", intent.Direction.String())
	}
}
