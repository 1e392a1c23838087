// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// RPC describes Solana RPC connectivity.
type RPC struct {
	URL        string `yaml:"url"`
	Commitment string `yaml:"commitment"`
}

// Bridge locates the upstream privacy CLI that performs proof generation.
type Bridge struct {
	Dir     string   `yaml:"dir"`
	Command []string `yaml:"command"`
}

// Relayer configures the HTTP client for the protocol's fee-config endpoint.
type Relayer struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Fees holds the platform fee wallet, rate, and referrer forwarded on withdrawals.
// A rate of zero disables fee collection entirely.
type Fees struct {
	Wallet   string  `yaml:"wallet"`
	Rate     float64 `yaml:"rate"`
	Referrer string  `yaml:"referrer"`
}

// Indexer bounds the post-deposit wait for the protocol indexer to observe funds.
type Indexer struct {
	InitialDelayMs int `yaml:"initial_delay_ms"`
	MaxDelayMs     int `yaml:"max_delay_ms"`
	DeadlineMs     int `yaml:"deadline_ms"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App     App     `yaml:"app"`
	RPC     RPC     `yaml:"rpc"`
	Bridge  Bridge  `yaml:"bridge"`
	Relayer Relayer `yaml:"relayer"`
	Fees    Fees    `yaml:"fees"`
	Indexer Indexer `yaml:"indexer"`
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
