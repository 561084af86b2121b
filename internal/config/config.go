// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Data describes where historical daily bars come from and how long a
// fetched series stays cached.
type Data struct {
	BaseURL      string   `yaml:"base_url"`
	CacheTTLSecs int      `yaml:"cache_ttl_secs"`
	Tickers      []string `yaml:"tickers"`
}

// Strategy holds the default crossover windows used when a caller does not
// supply its own.
type Strategy struct {
	ShortWindow int `yaml:"short_window"`
	LongWindow  int `yaml:"long_window"`
}

// Portfolio captures simulation account settings and where run summaries
// are appended.
type Portfolio struct {
	InitialCapital float64 `yaml:"initial_capital"`
	LotSize        int     `yaml:"lot_size"`
	RunsPath       string  `yaml:"runs_path"`
}

// Server configures the HTTP API, including the window bounds enforced at
// the request boundary. The engine itself accepts any positive window; the
// bounds live here because they belong to the user-facing surface.
type Server struct {
	Addr           string `yaml:"addr"`
	ShortWindowMin int    `yaml:"short_window_min"`
	ShortWindowMax int    `yaml:"short_window_max"`
	LongWindowMin  int    `yaml:"long_window_min"`
	LongWindowMax  int    `yaml:"long_window_max"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App       App       `yaml:"app"`
	Data      Data      `yaml:"data"`
	Strategy  Strategy  `yaml:"strategy"`
	Portfolio Portfolio `yaml:"portfolio"`
	Server    Server    `yaml:"server"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
