package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rahulsunilkumar/backtestsim/internal/series"
)

func testSeries(prices ...float64) series.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]series.Point, len(prices))
	for i, p := range prices {
		points[i] = series.Point{Date: start.AddDate(0, 0, i), Price: p}
	}
	return series.PriceSeries{Ticker: "TEST", Points: points}
}

func TestRunProducesResult(t *testing.T) {
	params := Params{ShortWindow: 2, LongWindow: 3, InitialCapital: 1000, LotSize: 100}
	res, err := Run(testSeries(10, 10, 10, 12, 8, 8), params)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if res.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if res.Ticker != "TEST" {
		t.Fatalf("unexpected ticker %s", res.Ticker)
	}
	if math.Abs(res.TotalReturn-(-0.4)) > 1e-9 {
		t.Fatalf("expected total return -0.4, got %v", res.TotalReturn)
	}
	if math.Abs(res.FinalValue-600) > 1e-9 {
		t.Fatalf("expected final value 600, got %v", res.FinalValue)
	}
	if len(res.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(res.Events))
	}
	if res.Degenerate {
		t.Fatalf("2/3 windows should not flag degenerate")
	}
	if res.Signals.Len() != res.Portfolio.Len() {
		t.Fatalf("series index mismatch: %d vs %d", res.Signals.Len(), res.Portfolio.Len())
	}
}

func TestRunIDsAreUnique(t *testing.T) {
	params := Params{ShortWindow: 2, LongWindow: 3, InitialCapital: 1000, LotSize: 100}
	input := testSeries(10, 10, 10, 12, 8, 8)
	a, err := Run(input, params)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	b, err := Run(input, params)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if a.RunID == b.RunID {
		t.Fatalf("expected distinct run ids")
	}
}

func TestRunFlagsDegenerateWindows(t *testing.T) {
	params := Params{ShortWindow: 5, LongWindow: 5, InitialCapital: 1000, LotSize: 100}
	res, err := Run(testSeries(1, 2, 3, 4, 5, 6, 7, 8), params)
	if err != nil {
		t.Fatalf("degenerate windows should still run, got %v", err)
	}
	if !res.Degenerate {
		t.Fatalf("expected degenerate flag for equal windows")
	}
}

func TestRunPropagatesEngineErrors(t *testing.T) {
	if _, err := Run(testSeries(1, 2, 3), Params{ShortWindow: 0, LongWindow: 3}); !errors.Is(err, series.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if _, err := Run(testSeries(1), Params{ShortWindow: 2, LongWindow: 3}); !errors.Is(err, series.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.ShortWindow != 20 || p.LongWindow != 50 {
		t.Fatalf("unexpected default windows: %+v", p)
	}
	if p.Degenerate() {
		t.Fatalf("defaults must not be degenerate")
	}
}
