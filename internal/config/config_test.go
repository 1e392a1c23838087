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

	if cfg.App.Name != "privsend-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.MetricsAddr != ":9091" {
		t.Fatalf("unexpected App.MetricsAddr: %s", cfg.App.MetricsAddr)
	}
	if cfg.RPC.URL != "https://rpc.test" {
		t.Fatalf("unexpected RPC.URL: %s", cfg.RPC.URL)
	}
	if cfg.RPC.Commitment != "processed" {
		t.Fatalf("expected processed commitment, got %s", cfg.RPC.Commitment)
	}
	if cfg.Bridge.Dir != "./bridge-test" {
		t.Fatalf("unexpected Bridge.Dir: %s", cfg.Bridge.Dir)
	}
	if len(cfg.Bridge.Command) != 3 || cfg.Bridge.Command[0] != "npx" {
		t.Fatalf("unexpected Bridge.Command: %+v", cfg.Bridge.Command)
	}
	if cfg.Relayer.BaseURL != "https://relayer.test" {
		t.Fatalf("unexpected Relayer.BaseURL: %s", cfg.Relayer.BaseURL)
	}
	if cfg.Relayer.TimeoutMs != 2500 {
		t.Fatalf("unexpected Relayer.TimeoutMs: %d", cfg.Relayer.TimeoutMs)
	}
	if cfg.Fees.Rate != 0.005 {
		t.Fatalf("unexpected Fees.Rate: %.4f", cfg.Fees.Rate)
	}
	if cfg.Fees.Wallet == "" || cfg.Fees.Referrer == "" {
		t.Fatalf("expected fee wallet and referrer to be set")
	}
	if cfg.Indexer.InitialDelayMs != 250 {
		t.Fatalf("unexpected Indexer.InitialDelayMs: %d", cfg.Indexer.InitialDelayMs)
	}
	if cfg.Indexer.MaxDelayMs != 4000 {
		t.Fatalf("unexpected Indexer.MaxDelayMs: %d", cfg.Indexer.MaxDelayMs)
	}
	if cfg.Indexer.DeadlineMs != 30000 {
		t.Fatalf("unexpected Indexer.DeadlineMs: %d", cfg.Indexer.DeadlineMs)
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
	in := &Config{
		App:  App{Name: "roundtrip", LogLevel: "warn"},
		Fees: Fees{Wallet: "W", Rate: 0.01, Referrer: "R"},
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if out.App.Name != "roundtrip" || out.Fees.Rate != 0.01 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
