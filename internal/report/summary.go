// Package report renders backtest results for terminals and appends run
// summaries as JSON lines for later analysis.
package report

import (
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/rahulsunilkumar/backtestsim/internal/engine"
	"github.com/rahulsunilkumar/backtestsim/internal/strategy"
)

// MaxDrawdown measures the deepest peak-to-trough decline of the equity
// curve as a positive fraction (0.25 means -25% from the running peak).
func MaxDrawdown(total []float64) float64 {
	var peak, worst float64
	for i, v := range total {
		if i == 0 || v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak; dd > worst {
			worst = dd
		}
	}
	return worst
}

// Summary writes a human-readable recap of one run.
func Summary(w io.Writer, res *engine.Result) {
	buys := lo.CountBy(res.Events, func(e strategy.Event) bool { return e.Side == strategy.Buy })
	sells := len(res.Events) - buys

	fmt.Fprintf(w, "Backtest %s\n", res.RunID)
	fmt.Fprintf(w, "  Ticker:        %s (%d bars)\n", res.Ticker, res.Signals.Len())
	fmt.Fprintf(w, "  Windows:       short=%d long=%d\n", res.Params.ShortWindow, res.Params.LongWindow)
	if res.Degenerate {
		fmt.Fprintf(w, "  Warning:       short window >= long window; strategy may never cross\n")
	}
	fmt.Fprintf(w, "  Capital:       %.2f (lot size %d)\n", res.Params.InitialCapital, res.Params.LotSize)
	fmt.Fprintf(w, "  Total Return:  %.2f%%\n", res.TotalReturn*100)
	fmt.Fprintf(w, "  Final Value:   %.2f\n", res.FinalValue)
	fmt.Fprintf(w, "  Max Drawdown:  %.2f%%\n", MaxDrawdown(res.Portfolio.Total)*100)
	fmt.Fprintf(w, "  Trades:        %d buys, %d sells\n", buys, sells)

	lines := lo.Map(res.Events, func(e strategy.Event, _ int) string {
		return fmt.Sprintf("    %s %-4s @ %.2f (short MA %.2f)", e.Date.Format("2006-01-02"), e.Side, e.Price, e.ShortMA)
	})
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
