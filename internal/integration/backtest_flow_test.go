package integration

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulsunilkumar/backtestsim/internal/engine"
	"github.com/rahulsunilkumar/backtestsim/internal/marketdata"
	"github.com/rahulsunilkumar/backtestsim/internal/report"
)

// TestFetchBacktestReportFlow drives the whole pipeline: download bars from
// a fake endpoint, run the crossover backtest, and render the summary.
func TestFetchBacktestReportFlow(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n" +
			"2024-01-02,10,10,10,10,100\n" +
			"2024-01-03,10,10,10,10,100\n" +
			"2024-01-04,10,10,10,10,100\n" +
			"2024-01-05,12,12,12,12,100\n" +
			"2024-01-08,8,8,8,8,100\n" +
			"2024-01-09,8,8,8,8,100\n"))
	}))
	defer upstream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc := marketdata.NewService(marketdata.NewClient(upstream.URL, zerolog.Nop()), time.Hour, zerolog.Nop())
	prices, err := svc.History(ctx, "AAPL",
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}

	res, err := engine.Run(prices, engine.Params{
		ShortWindow:    2,
		LongWindow:     3,
		InitialCapital: 1000,
		LotSize:        100,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if math.Abs(res.TotalReturn-(-0.4)) > 1e-9 {
		t.Fatalf("expected total return -0.4, got %v", res.TotalReturn)
	}
	if len(res.Events) != 2 {
		t.Fatalf("expected a buy and a sell, got %d events", len(res.Events))
	}

	var buf bytes.Buffer
	report.Summary(&buf, res)
	out := buf.String()
	if !strings.Contains(out, "Total Return:  -40.00%") {
		t.Fatalf("summary missing total return:\n%s", out)
	}
	if !strings.Contains(out, "AAPL") {
		t.Fatalf("summary missing ticker:\n%s", out)
	}

	// A rerun over the cached series is deterministic.
	again, err := svc.History(ctx, "AAPL",
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("cached History returned error: %v", err)
	}
	rerun, err := engine.Run(again, engine.Params{
		ShortWindow:    2,
		LongWindow:     3,
		InitialCapital: 1000,
		LotSize:        100,
	})
	if err != nil {
		t.Fatalf("rerun returned error: %v", err)
	}
	if rerun.TotalReturn != res.TotalReturn || rerun.FinalValue != res.FinalValue {
		t.Fatalf("rerun diverged: %v/%v vs %v/%v",
			rerun.TotalReturn, rerun.FinalValue, res.TotalReturn, res.FinalValue)
	}
}
