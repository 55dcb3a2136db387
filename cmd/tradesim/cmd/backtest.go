package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quietwizar/trading-system/backtest"
	"github.com/quietwizar/trading-system/config"
	"github.com/quietwizar/trading-system/feed"
	"github.com/quietwizar/trading-system/journal"
	"github.com/quietwizar/trading-system/strategy"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a bar dataset through a strategy",
	Long: `Backtest replays historical bars through the configured strategy with a
deterministic fill simulation and prints the run report.

Example:
  tradesim backtest --config sim.yaml`,
	RunE: runBacktest,
}

var backtestConfigPath string

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringVarP(&backtestConfigPath, "config", "c", "", "path to config file (required)")
	backtestCmd.MarkFlagRequired("config")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(backtestConfigPath)
	if err != nil {
		return err
	}

	strat, err := strategy.New(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return err
	}

	f, err := openFeed(cfg)
	if err != nil {
		return err
	}
	defer f.Close()

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	mode, err := backtest.ParseFillMode(cfg.Session.FillMode)
	if err != nil {
		return err
	}

	session, err := backtest.NewSession(backtest.SessionConfig{
		Symbol:      cfg.Session.Symbol,
		InitialCash: cfg.Session.InitialCash,
		Match: backtest.MatchConfig{
			Lookahead:      cfg.Session.LookaheadBars,
			Mode:           mode,
			LiquidityLimit: cfg.Session.LiquidityLimit,
		},
		Annualization: cfg.Annualization(),
		Journal:       j,
	}, f, strat)
	if err != nil {
		return err
	}

	res, err := session.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	backtest.PrintResult(os.Stdout, res)
	return nil
}

func openFeed(cfg *config.Config) (feed.Feed, error) {
	from, to, err := cfg.Data.Window()
	if err != nil {
		return nil, err
	}
	switch cfg.Data.Format {
	case "parquet":
		return feed.NewParquetFeed(cfg.Data.Path, from, to)
	default:
		return feed.NewCSVFeed(cfg.Data.Path, from, to)
	}
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}
