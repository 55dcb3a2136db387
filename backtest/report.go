package backtest

import (
	"fmt"
	"io"
	"time"
)

// PrintResult writes the human-readable end-of-run report.
func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Symbol:        %s\n", r.Symbol)
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	if !r.Start.IsZero() {
		fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
		fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Bars:          %d\n", r.Summary.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Fills:         %d\n", len(r.Trades))
	fmt.Fprintf(w, "Closed Trades: %d\n", r.Summary.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", r.Summary.Wins)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.Summary.WinRate*100)
	if r.Rejections > 0 {
		fmt.Fprintf(w, "Rejections:    %d\n", r.Rejections)
	}
	if r.Expirations > 0 {
		fmt.Fprintf(w, "Expirations:   %d\n", r.Expirations)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Initial Cash:  %.2f\n", r.InitialCash)
	fmt.Fprintf(w, "Final Equity:  %.2f\n", r.Summary.FinalEquity)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", r.Summary.NetPnL)
	if r.InitialCash > 0 {
		fmt.Fprintf(w, "Return:        %.2f%%\n", r.Summary.NetPnL/r.InitialCash*100)
	}
	fmt.Fprintf(w, "Sharpe:        %.3f\n", r.Summary.Sharpe)
	fmt.Fprintf(w, "Volatility:    %.2f%%\n", r.Summary.Volatility*100)
	if r.Summary.MaxDrawdown > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.Summary.MaxDrawdown*100)
	}
	if r.MarginWarnings > 0 {
		fmt.Fprintf(w, "Margin Warnings: %d\n", r.MarginWarnings)
	}

	fmt.Fprintln(w)
}
