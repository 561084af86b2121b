package config

import (
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "backtestsim-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected App.LogLevel: %s", cfg.App.LogLevel)
	}
	if cfg.Data.BaseURL != "https://stooq.com" {
		t.Fatalf("unexpected Data.BaseURL: %s", cfg.Data.BaseURL)
	}
	if cfg.Data.CacheTTLSecs != 900 {
		t.Fatalf("unexpected Data.CacheTTLSecs: %d", cfg.Data.CacheTTLSecs)
	}
	if len(cfg.Data.Tickers) != 2 || cfg.Data.Tickers[0] != "AAPL" {
		t.Fatalf("unexpected Data.Tickers: %+v", cfg.Data.Tickers)
	}
	if cfg.Strategy.ShortWindow != 20 || cfg.Strategy.LongWindow != 50 {
		t.Fatalf("unexpected strategy windows: %+v", cfg.Strategy)
	}
	if cfg.Portfolio.InitialCapital != 100000 {
		t.Fatalf("unexpected initial capital: %.2f", cfg.Portfolio.InitialCapital)
	}
	if cfg.Portfolio.LotSize != 100 {
		t.Fatalf("unexpected lot size: %d", cfg.Portfolio.LotSize)
	}
	if cfg.Portfolio.RunsPath != "data/runs.jsonl" {
		t.Fatalf("unexpected runs path: %s", cfg.Portfolio.RunsPath)
	}
	if cfg.Server.Addr != ":8089" {
		t.Fatalf("unexpected server addr: %s", cfg.Server.Addr)
	}
	if cfg.Server.ShortWindowMin != 5 || cfg.Server.ShortWindowMax != 50 {
		t.Fatalf("unexpected short window bounds: %+v", cfg.Server)
	}
	if cfg.Server.LongWindowMin != 50 || cfg.Server.LongWindowMax != 200 {
		t.Fatalf("unexpected long window bounds: %+v", cfg.Server)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := &Config{
		App:      App{Name: "roundtrip", LogLevel: "info"},
		Strategy: Strategy{ShortWindow: 10, LongWindow: 30},
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.App.Name != "roundtrip" || got.Strategy.LongWindow != 30 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
