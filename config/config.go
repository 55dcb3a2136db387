// Package config loads and validates the simulation configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quietwizar/trading-system/market"
	"github.com/quietwizar/trading-system/strategy"
)

// Config represents the complete run configuration, backtest and live.
type Config struct {
	Session  SessionConfig  `json:"session" yaml:"session"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Live     LiveConfig     `json:"live,omitempty" yaml:"live,omitempty"`
}

// SessionConfig contains the simulation session parameters.
type SessionConfig struct {
	Symbol      string  `json:"symbol" yaml:"symbol"`
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`

	// LookaheadBars is the order lifetime in bars; orders unfilled after
	// that many bars expire.
	LookaheadBars int `json:"lookahead_bars" yaml:"lookahead_bars"`

	// FillMode is "next_open" (default) or "same_close".
	FillMode string `json:"fill_mode,omitempty" yaml:"fill_mode,omitempty"`

	// LiquidityLimit caps per-bar fill quantity. Zero disables the cap.
	LiquidityLimit float64 `json:"liquidity_limit,omitempty" yaml:"liquidity_limit,omitempty"`

	// AnnualizationFactor overrides the bars-per-year factor derived from
	// the data timeframe. Zero means derive.
	AnnualizationFactor float64 `json:"annualization_factor,omitempty" yaml:"annualization_factor,omitempty"`
}

// StrategyConfig selects and parameterizes the strategy.
type StrategyConfig struct {
	Name   string          `json:"name" yaml:"name"`
	Params strategy.Config `json:"params" yaml:"params"`
}

// DataConfig locates the bar dataset.
type DataConfig struct {
	Format    string `json:"format" yaml:"format"` // "csv" or "parquet"
	Path      string `json:"path" yaml:"path"`
	Timeframe string `json:"timeframe" yaml:"timeframe"`
	From      string `json:"from,omitempty" yaml:"from,omitempty"` // RFC3339 or YYYY-MM-DD
	To        string `json:"to,omitempty" yaml:"to,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LiveConfig contains the live polling-runner parameters.
type LiveConfig struct {
	Interval         string  `json:"interval,omitempty" yaml:"interval,omitempty"` // e.g. "5m"
	LookbackBars     int     `json:"lookback_bars,omitempty" yaml:"lookback_bars,omitempty"`
	MaxOrderNotional float64 `json:"max_order_notional,omitempty" yaml:"max_order_notional,omitempty"`
	APIKey           string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret        string  `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`
	BaseURL          string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	DataBaseURL      string  `json:"data_base_url,omitempty" yaml:"data_base_url,omitempty"`
	DataFeed         string  `json:"data_feed,omitempty" yaml:"data_feed,omitempty"` // "iex" or "sip"
}

// LoadFromFile loads configuration from a file, trying YAML then JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", yerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file, format chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Session.Symbol == "" {
		return fmt.Errorf("session.symbol is required")
	}
	if c.Session.InitialCash <= 0 {
		return fmt.Errorf("session.initial_cash must be positive")
	}
	if c.Session.LookaheadBars < 1 {
		return fmt.Errorf("session.lookahead_bars must be at least 1")
	}
	switch c.Session.FillMode {
	case "", "next_open", "same_close":
	default:
		return fmt.Errorf("session.fill_mode must be 'next_open' or 'same_close'")
	}
	if c.Session.LiquidityLimit < 0 {
		return fmt.Errorf("session.liquidity_limit must be non-negative")
	}
	if c.Session.AnnualizationFactor < 0 {
		return fmt.Errorf("session.annualization_factor must be non-negative")
	}

	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}

	if c.Data.Format != "csv" && c.Data.Format != "parquet" {
		return fmt.Errorf("data.format must be 'csv' or 'parquet'")
	}
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if _, err := market.ParseTimeframe(c.Data.Timeframe); err != nil {
		return fmt.Errorf("data.timeframe: %w", err)
	}
	if _, _, err := c.Data.Window(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "none", "":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if c.Live.Interval != "" {
		if _, err := time.ParseDuration(c.Live.Interval); err != nil {
			return fmt.Errorf("live.interval: %w", err)
		}
	}
	if c.Live.LookbackBars < 0 {
		return fmt.Errorf("live.lookback_bars must be non-negative")
	}
	if c.Live.MaxOrderNotional < 0 {
		return fmt.Errorf("live.max_order_notional must be non-negative")
	}
	return nil
}

// Timeframe returns the parsed data timeframe. Call Validate first.
func (c *Config) Timeframe() market.Timeframe {
	tf, _ := market.ParseTimeframe(c.Data.Timeframe)
	return tf
}

// Annualization resolves the bars-per-year factor: the explicit override
// when set, otherwise derived from the data timeframe.
func (c *Config) Annualization() float64 {
	if c.Session.AnnualizationFactor > 0 {
		return c.Session.AnnualizationFactor
	}
	return c.Timeframe().BarsPerYear()
}

// Window returns the optional [from, to) data window.
func (d DataConfig) Window() (time.Time, time.Time, error) {
	from, err := parseWhen(d.From)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data.from: %w", err)
	}
	to, err := parseWhen(d.To)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data.to: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("data window: to %s must be after from %s", d.To, d.From)
	}
	return from, to, nil
}

func parseWhen(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// LiveInterval returns the polling interval, defaulting to five minutes.
func (c *Config) LiveInterval() time.Duration {
	if c.Live.Interval == "" {
		return 5 * time.Minute
	}
	d, _ := time.ParseDuration(c.Live.Interval)
	return d
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Symbol:        "SPY",
			InitialCash:   100_000,
			LookaheadBars: 1,
			FillMode:      "next_open",
		},
		Strategy: StrategyConfig{
			Name:   "rsi-reversion",
			Params: strategy.Defaults(),
		},
		Data: DataConfig{
			Format:    "csv",
			Path:      "./bars.csv",
			Timeframe: "5Min",
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Live: LiveConfig{
			Interval:         "5m",
			LookbackBars:     120,
			MaxOrderNotional: 10_000,
			DataFeed:         "iex",
		},
	}
}
