// Package alpaca implements the broker surface over the Alpaca trading and
// market-data REST APIs.
package alpaca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"github.com/quietwizar/trading-system/broker"
	"github.com/quietwizar/trading-system/market"
)

// Config carries Alpaca credentials and endpoints. Empty URLs use the SDK
// defaults (paper URLs must be set explicitly).
type Config struct {
	APIKey      string
	APISecret   string
	BaseURL     string // trading API
	DataBaseURL string // market-data API
	Feed        string // "iex" or "sip"
}

type Client struct {
	trading *alpacaapi.Client
	data    *marketdata.Client
	feed    string
}

var _ broker.Broker = (*Client)(nil)

func New(cfg Config) *Client {
	feed := cfg.Feed
	if feed == "" {
		feed = "iex"
	}
	return &Client{
		trading: alpacaapi.NewClient(alpacaapi.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.BaseURL,
		}),
		data: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.DataBaseURL,
		}),
		feed: feed,
	}
}

func (c *Client) LatestBars(ctx context.Context, symbol string, tf market.Timeframe, limit int) ([]market.Bar, error) {
	// Fetch from far enough back to cover the limit even across weekends.
	start := time.Now().UTC().Add(-time.Duration(limit*4) * tf.Duration())

	raw, err := c.data.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: sdkTimeframe(tf),
		Start:     start,
		Feed:      marketdata.Feed(c.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("get bars %s: %w", symbol, err)
	}

	bars := make([]market.Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, market.Bar{
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("bar feed %s: %w", symbol, err)
		}
	}
	return bars, nil
}

func (c *Client) NetPosition(ctx context.Context, symbol string) (float64, error) {
	pos, err := c.trading.GetPosition(symbol)
	if err != nil {
		var apiErr *alpacaapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return 0, nil // flat
		}
		return 0, fmt.Errorf("get position %s: %w", symbol, err)
	}
	return pos.Qty.InexactFloat64(), nil
}

func (c *Client) HasOpenOrder(ctx context.Context, symbol string) (bool, error) {
	orders, err := c.trading.GetOrders(alpacaapi.GetOrdersRequest{
		Status:  "open",
		Symbols: []string{symbol},
	})
	if err != nil {
		return false, fmt.Errorf("get open orders %s: %w", symbol, err)
	}
	return len(orders) > 0, nil
}

func (c *Client) AccountEquity(ctx context.Context) (float64, error) {
	acct, err := c.trading.GetAccount()
	if err != nil {
		return 0, fmt.Errorf("get account: %w", err)
	}
	return acct.Equity.InexactFloat64(), nil
}

func (c *Client) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderAck, error) {
	qty := decimal.NewFromFloat(req.Qty)
	place := alpacaapi.PlaceOrderRequest{
		Symbol:        req.Symbol,
		Qty:           &qty,
		Side:          alpacaapi.Buy,
		Type:          alpacaapi.Market,
		TimeInForce:   alpacaapi.Day,
		ClientOrderID: req.ClientOrderID,
	}
	if req.Side == broker.Sell {
		place.Side = alpacaapi.Sell
	}
	if req.LimitPrice != nil {
		lp := decimal.NewFromFloat(*req.LimitPrice)
		place.Type = alpacaapi.Limit
		place.LimitPrice = &lp
	}

	order, err := c.trading.PlaceOrder(place)
	if err != nil {
		return broker.OrderAck{}, fmt.Errorf("place order %s %s %v: %w",
			req.Side, req.Symbol, req.Qty, err)
	}
	return broker.OrderAck{
		ID:            order.ID,
		ClientOrderID: order.ClientOrderID,
		Status:        string(order.Status),
		SubmittedAt:   order.SubmittedAt,
	}, nil
}

func (c *Client) ClosePosition(ctx context.Context, symbol string) error {
	_, err := c.trading.ClosePosition(symbol, alpacaapi.ClosePositionRequest{})
	if err != nil {
		var apiErr *alpacaapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil // already flat
		}
		return fmt.Errorf("close position %s: %w", symbol, err)
	}
	return nil
}

func sdkTimeframe(tf market.Timeframe) marketdata.TimeFrame {
	switch tf {
	case market.Min1:
		return marketdata.OneMin
	case market.Min5:
		return marketdata.NewTimeFrame(5, marketdata.Min)
	case market.Min15:
		return marketdata.NewTimeFrame(15, marketdata.Min)
	case market.Hour1:
		return marketdata.OneHour
	case market.Day1:
		return marketdata.OneDay
	default:
		return marketdata.OneDay
	}
}
