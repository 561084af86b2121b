package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/rahulsunilkumar/backtestsim/internal/config"
	"github.com/rahulsunilkumar/backtestsim/internal/engine"
	"github.com/rahulsunilkumar/backtestsim/internal/marketdata"
	"github.com/rahulsunilkumar/backtestsim/internal/report"
	"github.com/rahulsunilkumar/backtestsim/internal/series"
	"github.com/rahulsunilkumar/backtestsim/internal/util"
)

func main() {
	_ = godotenv.Load() // best-effort

	configPath := flag.String("config", envOr("BACKTESTSIM_CONFIG", "config.yaml"), "path to YAML config")
	ticker := flag.String("ticker", "", "ticker to fetch (e.g. AAPL)")
	start := flag.String("start", "", "range start, YYYY-MM-DD")
	end := flag.String("end", "", "range end, YYYY-MM-DD")
	csvPath := flag.String("csv", "", "load bars from a local CSV instead of fetching")
	short := flag.Int("short", 0, "short moving average window (overrides config)")
	long := flag.Int("long", 0, "long moving average window (overrides config)")
	capital := flag.Float64("capital", 0, "initial capital (overrides config)")
	lot := flag.Int("lot", 0, "shares per transition (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := util.NewConsoleLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewConsoleLogger(cfg.App.LogLevel)

	params := engine.Params{
		ShortWindow:    cfg.Strategy.ShortWindow,
		LongWindow:     cfg.Strategy.LongWindow,
		InitialCapital: cfg.Portfolio.InitialCapital,
		LotSize:        cfg.Portfolio.LotSize,
	}
	if *short > 0 {
		params.ShortWindow = *short
	}
	if *long > 0 {
		params.LongWindow = *long
	}
	if *capital > 0 {
		params.InitialCapital = *capital
	}
	if *lot > 0 {
		params.LotSize = *lot
	}
	if params.Degenerate() {
		log.Warn().Int("short", params.ShortWindow).Int("long", params.LongWindow).
			Msg("short window >= long window; strategy may never cross")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	prices, err := loadPrices(ctx, cfg, log, *ticker, *csvPath, *start, *end)
	if err != nil {
		log.Fatal().Err(err).Msg("load prices")
	}

	res, err := engine.Run(prices, params)
	if err != nil {
		log.Fatal().Err(err).Msg("backtest failed")
	}

	if cfg.Portfolio.RunsPath != "" {
		recorder, err := report.NewJSONLRecorder(cfg.Portfolio.RunsPath)
		if err != nil {
			log.Warn().Err(err).Msg("open runs file")
		} else {
			if err := recorder.Record(report.NewRunRecord(res)); err != nil {
				log.Warn().Err(err).Msg("record run")
			}
			_ = recorder.Close()
		}
	}

	report.Summary(os.Stdout, res)
}

func loadPrices(ctx context.Context, cfg *config.Config, log zerolog.Logger, ticker, csvPath, start, end string) (series.PriceSeries, error) {
	if csvPath != "" {
		if ticker == "" {
			ticker = "CSV"
		}
		return marketdata.LoadCSV(csvPath, ticker)
	}
	if ticker == "" {
		return series.PriceSeries{}, errors.New("either -ticker or -csv is required")
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	if end != "" {
		parsed, err := time.Parse("2006-01-02", end)
		if err != nil {
			return series.PriceSeries{}, fmt.Errorf("parse end: %w", err)
		}
		to = parsed
	}
	from := to.AddDate(-3, 0, 0)
	if start != "" {
		parsed, err := time.Parse("2006-01-02", start)
		if err != nil {
			return series.PriceSeries{}, fmt.Errorf("parse start: %w", err)
		}
		from = parsed
	}

	client := marketdata.NewClient(cfg.Data.BaseURL, log)
	svc := marketdata.NewService(client, time.Duration(cfg.Data.CacheTTLSecs)*time.Second, log)
	return svc.History(ctx, ticker, from, to)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
