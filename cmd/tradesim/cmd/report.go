package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietwizar/trading-system/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print trades and equity from a SQLite journal",
	Long: `Report reads a SQLite journal written by a backtest or live run and
prints the trade log and equity snapshots in a time window.

Example:
  tradesim report --db run.db --from 2024-03-01 --to 2024-04-01`,
	RunE: runReport,
}

var (
	reportDBPath string
	reportFrom   string
	reportTo     string
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "", "path to SQLite journal (required)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "window start (RFC3339 or YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "window end (RFC3339 or YYYY-MM-DD)")
	reportCmd.MarkFlagRequired("db")
}

func runReport(cmd *cobra.Command, args []string) error {
	from, err := parseReportTime(reportFrom, time.Time{})
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseReportTime(reportTo, time.Now().AddDate(100, 0, 0))
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	trades, err := j.ListTradesBetween(from, to)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	fmt.Println("Trades")
	fmt.Println("--------------------------------------------------")
	total := 0.0
	for _, t := range trades {
		fmt.Printf("%s  %-4s %10.4f @ %10.4f  pnl %10.2f  %s\n",
			t.Time.Format(time.RFC3339), t.Side, t.Qty, t.Price, t.NetPnL, t.OrderID)
		total += t.NetPnL
	}
	fmt.Printf("%d trades, realized P/L %.2f\n\n", len(trades), total)

	equity, err := j.ListEquityBetween(from, to)
	if err != nil {
		return fmt.Errorf("list equity: %w", err)
	}
	if len(equity) > 0 {
		first, last := equity[0], equity[len(equity)-1]
		fmt.Println("Equity")
		fmt.Println("--------------------------------------------------")
		fmt.Printf("First: %s  %.2f\n", first.Time.Format(time.RFC3339), first.Equity)
		fmt.Printf("Last:  %s  %.2f\n", last.Time.Format(time.RFC3339), last.Equity)
		fmt.Printf("Snapshots: %d\n", len(equity))
	}
	return nil
}

func parseReportTime(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
