package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quietwizar/trading-system/broker/alpaca"
	"github.com/quietwizar/trading-system/config"
	"github.com/quietwizar/trading-system/live"
	"github.com/quietwizar/trading-system/strategy"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run a strategy against the live broker on a polling timer",
	Long: `Live polls recent bars from the broker at a fixed interval, evaluates
the configured strategy, and submits at most one order per tick. Interrupt
with Ctrl-C for a clean shutdown and a final summary.

Credentials come from the config file or the APCA_API_KEY_ID /
APCA_API_SECRET_KEY environment variables.

Example:
  tradesim live --config sim.yaml`,
	RunE: runLive,
}

var liveConfigPath string

func init() {
	rootCmd.AddCommand(liveCmd)
	liveCmd.Flags().StringVarP(&liveConfigPath, "config", "c", "", "path to config file (required)")
	liveCmd.MarkFlagRequired("config")
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(liveConfigPath)
	if err != nil {
		return err
	}

	strat, err := strategy.New(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return err
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	apiKey := cfg.Live.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("APCA_API_KEY_ID")
	}
	apiSecret := cfg.Live.APISecret
	if apiSecret == "" {
		apiSecret = os.Getenv("APCA_API_SECRET_KEY")
	}
	if apiKey == "" || apiSecret == "" {
		return fmt.Errorf("missing broker credentials: set live.api_key/live.api_secret or APCA_API_KEY_ID/APCA_API_SECRET_KEY")
	}

	client := alpaca.New(alpaca.Config{
		APIKey:      apiKey,
		APISecret:   apiSecret,
		BaseURL:     cfg.Live.BaseURL,
		DataBaseURL: cfg.Live.DataBaseURL,
		Feed:        cfg.Live.DataFeed,
	})

	lookback := cfg.Live.LookbackBars
	if lookback == 0 {
		lookback = 120
	}

	runner, err := live.NewRunner(live.Config{
		Symbol:           cfg.Session.Symbol,
		Timeframe:        cfg.Timeframe(),
		Interval:         cfg.LiveInterval(),
		Lookback:         lookback,
		MaxOrderNotional: cfg.Live.MaxOrderNotional,
	}, client, strat, j, slog.Default())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("live runner starting",
		"symbol", cfg.Session.Symbol, "strategy", cfg.Strategy.Name,
		"interval", cfg.LiveInterval())

	summary, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("live: %w", err)
	}

	fmt.Printf("\nLive session summary: ticks=%d final_equity=%.2f net_pnl=%.2f\n",
		summary.Bars, summary.FinalEquity, summary.NetPnL)
	return nil
}
