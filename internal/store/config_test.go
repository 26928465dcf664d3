package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
mode: DRY_RUN
symbols:
  - EURUSD
  - GBPUSD
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.CycleMinutes != 15 {
		t.Errorf("CycleMinutes = %d, want default 15", cfg.CycleMinutes)
	}
	if cfg.Venue.Retries != 3 {
		t.Errorf("Venue.Retries = %d, want default 3", cfg.Venue.Retries)
	}
	if cfg.Venue.MaxReconnectAttempts != 3 {
		t.Errorf("Venue.MaxReconnectAttempts = %d, want default 3", cfg.Venue.MaxReconnectAttempts)
	}
	if cfg.Trading.DefaultVolume != 0.01 {
		t.Errorf("Trading.DefaultVolume = %v, want default 0.01", cfg.Trading.DefaultVolume)
	}
	if cfg.Trading.MinConfidence != 0.7 {
		t.Errorf("Trading.MinConfidence = %v, want default 0.7", cfg.Trading.MinConfidence)
	}
	if cfg.Trading.MaxPositions != 3 {
		t.Errorf("Trading.MaxPositions = %d, want default 3", cfg.Trading.MaxPositions)
	}
	if cfg.News.MinImpact != "HIGH" {
		t.Errorf("News.MinImpact = %q, want default HIGH", cfg.News.MinImpact)
	}
	if !cfg.DryRun() {
		t.Error("DryRun() = false, want true for DRY_RUN mode")
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
mode: LIVE
cycle_minutes: 5
symbols: [EURUSD]
venue:
  bridge_url: http://localhost:8080
  retries: 7
trading:
  max_risk_percent: 0.5
  min_confidence: 0.9
  max_positions: 1
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.CycleMinutes != 5 {
		t.Errorf("CycleMinutes = %d, want 5", cfg.CycleMinutes)
	}
	if cfg.Venue.BridgeURL != "http://localhost:8080" {
		t.Errorf("BridgeURL = %q", cfg.Venue.BridgeURL)
	}
	if cfg.Venue.Retries != 7 {
		t.Errorf("Venue.Retries = %d, want 7", cfg.Venue.Retries)
	}
	if cfg.Trading.MaxRiskPercent != 0.5 {
		t.Errorf("MaxRiskPercent = %v, want 0.5", cfg.Trading.MaxRiskPercent)
	}
	if cfg.DryRun() {
		t.Error("DryRun() = true, want false for LIVE mode")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MT5_BRIDGE_URL", "http://bridge:9000")
	t.Setenv("TRADER_MODE", "LIVE")
	t.Setenv("MT5_DEFAULT_SYMBOLS", "USDJPY, AUDUSD")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Venue.BridgeURL != "http://bridge:9000" {
		t.Errorf("BridgeURL = %q, want env override", cfg.Venue.BridgeURL)
	}
	if cfg.Mode != "LIVE" {
		t.Errorf("Mode = %q, want LIVE from env", cfg.Mode)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "USDJPY" || cfg.Symbols[1] != "AUDUSD" {
		t.Errorf("Symbols = %v, want [USDJPY AUDUSD] from env", cfg.Symbols)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"bad mode", func(c *Config) { c.Mode = "PAPER" }, "mode"},
		{"no symbols", func(c *Config) { c.Symbols = nil }, "symbols"},
		{"risk too high", func(c *Config) { c.Trading.MaxRiskPercent = 150 }, "max_risk_percent"},
		{"confidence out of range", func(c *Config) { c.Trading.MinConfidence = 1.5 }, "min_confidence"},
		{"negative volume", func(c *Config) { c.Trading.DefaultVolume = -1 }, "default_volume"},
		{"bad impact", func(c *Config) { c.News.Enabled = true; c.News.MinImpact = "SEVERE" }, "min_impact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, minimalConfig))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadConfig() = nil error for missing file")
	}
}
