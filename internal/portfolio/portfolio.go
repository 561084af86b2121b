// Package portfolio simulates lot-sized position accounting over a signal
// series and produces the equity curve.
package portfolio

import (
	"errors"
	"math"
	"time"

	"github.com/rahulsunilkumar/backtestsim/internal/series"
	"github.com/rahulsunilkumar/backtestsim/internal/strategy"
)

// ErrDivisionUndefined indicates a total-return summary was requested on an
// equity curve with fewer than two points.
var ErrDivisionUndefined = errors.New("total return needs at least two equity points")

// DefaultLotSize is the number of shares traded on each signal transition.
const DefaultLotSize = 100

// Series carries the per-date accounting of the simulated position. All
// slices share the index of the signal series that produced them.
type Series struct {
	Ticker         string
	InitialCapital float64
	LotSize        int
	Dates          []time.Time
	// StockUnits is lotSize while long, 0 while flat.
	StockUnits []float64
	Holdings   []float64
	Cash       []float64
	Total      []float64
	// Returns is the day-over-day percent change of Total, NaN at index 0.
	Returns []float64
}

// Simulate runs the all-in/all-out accounting policy over a signal series.
// Each long day holds exactly lotSize shares; transitions move the trade
// notional between cash and holdings. The first index never moves cash,
// even if it opened long: there is no prior position to diff against.
// Cash may go negative when capital is insufficient; nothing guards that.
//
// A non-positive lotSize falls back to DefaultLotSize. The function is pure.
func Simulate(signals *strategy.Series, initialCapital float64, lotSize int) (*Series, error) {
	if signals == nil || signals.Len() < 2 {
		return nil, series.ErrInsufficientData
	}
	if lotSize <= 0 {
		lotSize = DefaultLotSize
	}

	n := signals.Len()
	p := &Series{
		Ticker:         signals.Ticker,
		InitialCapital: initialCapital,
		LotSize:        lotSize,
		Dates:          signals.Dates,
		StockUnits:     make([]float64, n),
		Holdings:       make([]float64, n),
		Cash:           make([]float64, n),
		Total:          make([]float64, n),
		Returns:        make([]float64, n),
	}

	var spent float64 // cumulative notional of all transitions so far
	for i := 0; i < n; i++ {
		p.StockUnits[i] = float64(lotSize) * signals.Signal[i]
		p.Holdings[i] = p.StockUnits[i] * signals.Price[i]

		if i > 0 {
			delta := p.StockUnits[i] - p.StockUnits[i-1]
			spent += delta * signals.Price[i]
		}
		p.Cash[i] = initialCapital - spent
		p.Total[i] = p.Cash[i] + p.Holdings[i]
	}

	p.Returns[0] = math.NaN()
	for i := 1; i < n; i++ {
		p.Returns[i] = p.Total[i]/p.Total[i-1] - 1
	}
	return p, nil
}

// Len reports the number of observations.
func (p *Series) Len() int { return len(p.Total) }

// TotalReturn summarizes the whole simulation as last/first - 1.
func (p *Series) TotalReturn() (float64, error) {
	if len(p.Total) < 2 {
		return 0, ErrDivisionUndefined
	}
	return p.Total[len(p.Total)-1]/p.Total[0] - 1, nil
}

// FinalValue returns the closing equity of the simulation.
func (p *Series) FinalValue() (float64, error) {
	if len(p.Total) == 0 {
		return 0, ErrDivisionUndefined
	}
	return p.Total[len(p.Total)-1], nil
}
