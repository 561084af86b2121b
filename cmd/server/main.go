package main

import (
	"context"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rahulsunilkumar/backtestsim/internal/api"
	"github.com/rahulsunilkumar/backtestsim/internal/config"
	"github.com/rahulsunilkumar/backtestsim/internal/marketdata"
	"github.com/rahulsunilkumar/backtestsim/internal/metrics"
	"github.com/rahulsunilkumar/backtestsim/internal/report"
	"github.com/rahulsunilkumar/backtestsim/internal/util"
)

func main() {
	_ = godotenv.Load() // best-effort

	configPath := os.Getenv("BACKTESTSIM_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := marketdata.NewClient(cfg.Data.BaseURL, log)
	svc := marketdata.NewService(client, time.Duration(cfg.Data.CacheTTLSecs)*time.Second, log)

	var recorder *report.JSONLRecorder
	if cfg.Portfolio.RunsPath != "" {
		recorder, err = report.NewJSONLRecorder(cfg.Portfolio.RunsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open runs file")
		}
		defer recorder.Close()
	}

	server := api.NewServer(svc, cfg.Data.Tickers, cfg.Server, recorder, log)
	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: server.Router}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("api up")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("api stopped")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
