package marketdata

import (
	"testing"
	"time"

	"github.com/rahulsunilkumar/backtestsim/internal/series"
)

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(10 * time.Minute)
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	key := Key("AAPL", current.AddDate(0, -1, 0), current)
	stored := series.PriceSeries{Ticker: "AAPL", Points: []series.Point{{Date: current, Price: 100}}}
	cache.Put(key, stored)

	got, ok := cache.Get(key)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.Ticker != "AAPL" || got.Len() != 1 {
		t.Fatalf("unexpected cached series: %+v", got)
	}

	current = current.Add(11 * time.Minute)
	if _, ok := cache.Get(key); ok {
		t.Fatalf("expected entry to expire")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", cache.Len())
	}
}

func TestCacheKeySeparatesRanges(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if Key("AAPL", from, to) == Key("AAPL", from, to.AddDate(0, 0, 1)) {
		t.Fatalf("different ranges must not share a key")
	}
	if Key("AAPL", from, to) == Key("MSFT", from, to) {
		t.Fatalf("different tickers must not share a key")
	}
}
