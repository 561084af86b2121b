// Package marketdata retrieves historical daily bars over HTTP and caches
// the resulting price series.
package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulsunilkumar/backtestsim/internal/metrics"
	"github.com/rahulsunilkumar/backtestsim/internal/series"
)

// DefaultBaseURL points at Stooq, which serves split-adjusted daily bars as
// plain CSV without an API key.
const DefaultBaseURL = "https://stooq.com"

// Bar is one daily OHLCV observation. The close is split-adjusted and feeds
// the price series.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Client downloads daily bars for a ticker and date range.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// NewClient builds a client against the given base URL, falling back to
// DefaultBaseURL when empty.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// Daily fetches the adjusted daily closes for one ticker between from and to
// inclusive, sorted ascending by date.
func (c *Client) Daily(ctx context.Context, ticker string, from, to time.Time) (series.PriceSeries, error) {
	endpoint := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d",
		c.baseURL,
		url.QueryEscape(strings.ToLower(ticker)),
		from.Format("20060102"),
		to.Format("20060102"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return series.PriceSeries{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues(ticker, "error").Inc()
		return series.PriceSeries{}, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchRequestsTotal.WithLabelValues(ticker, strconv.Itoa(resp.StatusCode)).Inc()
		return series.PriceSeries{}, fmt.Errorf("fetch %s: unexpected status %d", ticker, resp.StatusCode)
	}

	bars, err := decodeBars(resp.Body)
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues(ticker, "decode_error").Inc()
		return series.PriceSeries{}, fmt.Errorf("decode %s: %w", ticker, err)
	}

	metrics.FetchRequestsTotal.WithLabelValues(ticker, "ok").Inc()
	metrics.BarsFetchedTotal.WithLabelValues(ticker).Add(float64(len(bars)))
	c.log.Debug().Str("ticker", ticker).Int("bars", len(bars)).Msg("fetched daily bars")

	return ToPriceSeries(ticker, bars), nil
}

// LoadCSV reads daily bars from a local file in the same Date,Open,High,
// Low,Close,Volume layout the remote endpoint serves.
func LoadCSV(path, ticker string) (series.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return series.PriceSeries{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	bars, err := decodeBars(f)
	if err != nil {
		return series.PriceSeries{}, fmt.Errorf("decode csv: %w", err)
	}
	return ToPriceSeries(ticker, bars), nil
}

// ToPriceSeries projects bars onto the adjusted-close series consumed by the
// engine, sorted ascending by date.
func ToPriceSeries(ticker string, bars []Bar) series.PriceSeries {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	points := make([]series.Point, len(sorted))
	for i, b := range sorted {
		points[i] = series.Point{Date: b.Date, Price: b.Close}
	}
	return series.PriceSeries{Ticker: ticker, Points: points}
}

func decodeBars(r io.Reader) ([]Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 5 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(header, ","))
	}

	var bars []Bar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) < 5 {
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", record[0], err)
		}
		bar := Bar{Date: date}
		for i, dst := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close} {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("parse %q: %w", record[i+1], err)
			}
			*dst = v
		}
		if len(record) > 5 && strings.TrimSpace(record[5]) != "" {
			// Volume is optional in some exports.
			bar.Volume, _ = strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
