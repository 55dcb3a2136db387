package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradesim",
	Short: "A bar-level trading strategy backtester with a matching live runner",
	Long: `Tradesim replays historical bars through pluggable strategies with a
deterministic order-matching simulation, and can run the same strategies
against a live broker on a polling timer.

It provides tools for:
  - Backtesting strategies over CSV or Parquet bar datasets
  - Configurable fill simulation (next-open / same-close, lookahead, liquidity)
  - Trade and equity journaling to CSV or SQLite
  - Performance reporting (win rate, Sharpe, volatility, drawdown)
  - Live polling execution through the Alpaca API`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cobra.OnInitialize(func() {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	})
}
