// Package series defines the price series data model shared between market
// data retrieval, the signal engine, and the portfolio simulator.
package series

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrInsufficientData indicates a series with fewer than two points,
	// which is too short for rolling means or returns.
	ErrInsufficientData = errors.New("price series needs at least two points")
	// ErrInvalidWindow indicates a non-positive rolling window length.
	ErrInvalidWindow = errors.New("window length must be positive")
)

// Point is one daily observation of the adjusted close.
type Point struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries is an ordered run of daily adjusted closes for one ticker.
// Callers supply it already sorted by date and deduplicated; the engine
// trusts that and never reindexes.
type PriceSeries struct {
	Ticker string
	Points []Point
}

// Len reports the number of observations.
func (s PriceSeries) Len() int { return len(s.Points) }

// Validate checks the series is long enough to backtest.
func (s PriceSeries) Validate() error {
	if len(s.Points) < 2 {
		return ErrInsufficientData
	}
	return nil
}

// Prices returns the adjusted closes as a flat slice.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Dates returns the observation dates as a flat slice.
func (s PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// Returns computes the day-over-day percent change of the adjusted close.
// The first element is NaN since there is no prior observation.
func (s PriceSeries) Returns() []float64 {
	out := make([]float64, len(s.Points))
	if len(out) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(s.Points); i++ {
		out[i] = s.Points[i].Price/s.Points[i-1].Price - 1
	}
	return out
}
