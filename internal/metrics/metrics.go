package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BacktestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtests_total", Help: "Backtest runs completed"},
		[]string{"ticker"},
	)
	FetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fetch_requests_total", Help: "Historical data requests by outcome"},
		[]string{"ticker", "status"},
	)
	BarsFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_fetched_total", Help: "Daily bars parsed from the data source"},
		[]string{"ticker"},
	)
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "series_cache_hits_total", Help: "Price series served from the TTL cache"},
	)
	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "series_cache_misses_total", Help: "Price series fetched after a cache miss"},
	)
)

func init() {
	prometheus.MustRegister(BacktestsTotal, FetchRequestsTotal, BarsFetchedTotal, CacheHitsTotal, CacheMissesTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
