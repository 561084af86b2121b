// Package engine runs a complete backtest in one call.
package engine

import (
	"github.com/google/uuid"

	"github.com/rahulsunilkumar/backtestsim/internal/metrics"
	"github.com/rahulsunilkumar/backtestsim/internal/portfolio"
	"github.com/rahulsunilkumar/backtestsim/internal/series"
	"github.com/rahulsunilkumar/backtestsim/internal/strategy"
)

// Params bundles the tunable knobs of a single backtest run.
type Params struct {
	ShortWindow    int     `json:"short_window"`
	LongWindow     int     `json:"long_window"`
	InitialCapital float64 `json:"initial_capital"`
	LotSize        int     `json:"lot_size"`
}

// DefaultParams mirrors the classic 20/50 crossover on a 100k account.
func DefaultParams() Params {
	return Params{
		ShortWindow:    20,
		LongWindow:     50,
		InitialCapital: 100_000,
		LotSize:        portfolio.DefaultLotSize,
	}
}

// Degenerate reports whether the window ordering inverts the strategy's
// domain convention. Such runs compute fine but rarely mean what the
// caller intended, so surfaces flag them instead of rejecting them.
func (p Params) Degenerate() bool { return p.ShortWindow >= p.LongWindow }

// Result is everything one run produces: both derived series, the
// transition events, and the summary metrics.
type Result struct {
	RunID       string            `json:"run_id"`
	Ticker      string            `json:"ticker"`
	Params      Params            `json:"params"`
	Signals     *strategy.Series  `json:"-"`
	Portfolio   *portfolio.Series `json:"-"`
	Events      []strategy.Event  `json:"events"`
	TotalReturn float64           `json:"total_return"`
	FinalValue  float64           `json:"final_value"`
	Degenerate  bool              `json:"degenerate"`
}

// Run feeds the price series through the signal engine and the portfolio
// simulator and tags the outcome with a fresh run ID.
func Run(prices series.PriceSeries, p Params) (*Result, error) {
	signals, err := strategy.Crossover(prices, p.ShortWindow, p.LongWindow)
	if err != nil {
		return nil, err
	}
	port, err := portfolio.Simulate(signals, p.InitialCapital, p.LotSize)
	if err != nil {
		return nil, err
	}
	totalReturn, err := port.TotalReturn()
	if err != nil {
		return nil, err
	}
	finalValue, err := port.FinalValue()
	if err != nil {
		return nil, err
	}

	metrics.BacktestsTotal.WithLabelValues(prices.Ticker).Inc()

	return &Result{
		RunID:       uuid.NewString(),
		Ticker:      prices.Ticker,
		Params:      p,
		Signals:     signals,
		Portfolio:   port,
		Events:      signals.Events(),
		TotalReturn: totalReturn,
		FinalValue:  finalValue,
		Degenerate:  p.Degenerate(),
	}, nil
}
