package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulsunilkumar/backtestsim/internal/metrics"
	"github.com/rahulsunilkumar/backtestsim/internal/series"
)

// Service fronts the HTTP client with the TTL cache so repeated backtests of
// the same ticker and range reuse one download.
type Service struct {
	client *Client
	cache  *Cache
	log    zerolog.Logger
}

// NewService wires a client and a cache with the given entry lifetime.
func NewService(client *Client, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{client: client, cache: NewCache(ttl), log: log}
}

// History returns the daily price series for ticker between from and to,
// serving from cache when a live entry exists.
func (s *Service) History(ctx context.Context, ticker string, from, to time.Time) (series.PriceSeries, error) {
	key := Key(ticker, from, to)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheHitsTotal.Inc()
		s.log.Debug().Str("ticker", ticker).Msg("price series cache hit")
		return cached, nil
	}
	metrics.CacheMissesTotal.Inc()

	fetched, err := s.client.Daily(ctx, ticker, from, to)
	if err != nil {
		return series.PriceSeries{}, err
	}
	s.cache.Put(key, fetched)
	return fetched, nil
}
