// Package strategy implements the moving-average-crossover signal engine.
package strategy

import (
	"math"
	"time"

	"github.com/rahulsunilkumar/backtestsim/internal/series"
)

// Side enumerates the direction of a signal transition.
type Side string

const (
	// Buy marks a flat-to-long transition.
	Buy Side = "BUY"
	// Sell marks a long-to-flat transition.
	Sell Side = "SELL"
)

// Series carries the per-date output of the signal engine. All slices share
// the index of the input price series.
type Series struct {
	Ticker      string
	ShortWindow int
	LongWindow  int
	Dates       []time.Time
	Price       []float64
	ShortMA     []float64
	LongMA      []float64
	// Signal is 1.0 while the strategy is long and 0.0 while flat.
	Signal []float64
	// Position is the first difference of Signal: +1.0 buy, -1.0 sell,
	// 0.0 no change. Position[0] is NaN; there is no prior state to diff
	// against, and NaN never compares equal to +/-1.
	Position []float64
}

// Event is a single buy or sell transition, positioned on the short moving
// average the way the chart markers are drawn.
type Event struct {
	Index   int       `json:"index"`
	Date    time.Time `json:"date"`
	Side    Side      `json:"side"`
	Price   float64   `json:"price"`
	ShortMA float64   `json:"short_ma"`
}

// Crossover computes the long/flat signal series for the given windows.
// Both moving averages use a trailing window that shrinks at the start of
// the series (minimum one sample), so every index has a defined mean. The
// strategy is forced flat for indices below shortWindow; past that it is
// long exactly when the short mean strictly exceeds the long mean.
//
// The function is pure: identical inputs always yield identical output.
func Crossover(prices series.PriceSeries, shortWindow, longWindow int) (*Series, error) {
	if shortWindow < 1 || longWindow < 1 {
		return nil, series.ErrInvalidWindow
	}
	if err := prices.Validate(); err != nil {
		return nil, err
	}

	px := prices.Prices()
	n := len(px)

	s := &Series{
		Ticker:      prices.Ticker,
		ShortWindow: shortWindow,
		LongWindow:  longWindow,
		Dates:       prices.Dates(),
		Price:       px,
		ShortMA:     rollingMean(px, shortWindow),
		LongMA:      rollingMean(px, longWindow),
		Signal:      make([]float64, n),
		Position:    make([]float64, n),
	}

	for i := shortWindow; i < n; i++ {
		if s.ShortMA[i] > s.LongMA[i] {
			s.Signal[i] = 1.0
		}
	}

	s.Position[0] = math.NaN()
	for i := 1; i < n; i++ {
		s.Position[i] = s.Signal[i] - s.Signal[i-1]
	}
	return s, nil
}

// rollingMean computes a trailing mean over at most window samples, using
// every sample available before the window has filled.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
			out[i] = sum / float64(window)
			continue
		}
		out[i] = sum / float64(i+1)
	}
	return out
}

// Len reports the number of observations.
func (s *Series) Len() int { return len(s.Price) }

// Events extracts the buy and sell transitions in index order.
func (s *Series) Events() []Event {
	var events []Event
	for i, pos := range s.Position {
		var side Side
		switch {
		case pos == 1.0:
			side = Buy
		case pos == -1.0:
			side = Sell
		default:
			continue
		}
		events = append(events, Event{
			Index:   i,
			Date:    s.Dates[i],
			Side:    side,
			Price:   s.Price[i],
			ShortMA: s.ShortMA[i],
		})
	}
	return events
}
