package store

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode         string   `yaml:"mode"`
	CycleMinutes int      `yaml:"cycle_minutes"`
	Symbols      []string `yaml:"symbols"`
	Venue        struct {
		BridgeURL            string `yaml:"bridge_url"`
		TimeoutSeconds       int    `yaml:"timeout_seconds"`
		Retries              int    `yaml:"retries"`
		RetryDelaySeconds    int    `yaml:"retry_delay_seconds"`
		MaxReconnectAttempts int    `yaml:"max_reconnect_attempts"`
	} `yaml:"venue"`
	Trading struct {
		Tag                 string  `yaml:"tag"`
		MagicNumber         int     `yaml:"magic_number"`
		DefaultVolume       float64 `yaml:"default_volume"`
		MaxVolumeMultiplier float64 `yaml:"max_volume_multiplier"`
		MaxSlippagePoints   int     `yaml:"max_slippage_points"`
		MaxSpreadPoints     float64 `yaml:"max_spread_points"`
		MaxRiskPercent      float64 `yaml:"max_risk_percent"`
		MinRiskReward       float64 `yaml:"min_risk_reward"`
		MinConfidence       float64 `yaml:"min_confidence"`
		MaxPositions        int     `yaml:"max_positions"`
	} `yaml:"trading"`
	Signals struct {
		BaseURL         string `yaml:"base_url"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		Retries         int    `yaml:"retries"`
		ExpiryMinutes   int    `yaml:"expiry_minutes"`
		IntervalMinutes int    `yaml:"interval_minutes"`
	} `yaml:"signals"`
	News struct {
		Enabled            bool   `yaml:"enabled"`
		CalendarURL        string `yaml:"calendar_url"`
		BlockWindowMinutes int    `yaml:"block_window_minutes"`
		MinImpact          string `yaml:"min_impact"`
	} `yaml:"news"`
	Notify struct {
		Enabled bool     `yaml:"enabled"`
		Events  []string `yaml:"events"`
	} `yaml:"notify"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols cannot be empty")
	}
	if c.Trading.MaxRiskPercent <= 0 || c.Trading.MaxRiskPercent > 100 {
		return fmt.Errorf("trading.max_risk_percent must be between 0-100, got %.2f", c.Trading.MaxRiskPercent)
	}
	if c.Trading.MinConfidence < 0 || c.Trading.MinConfidence > 1 {
		return fmt.Errorf("trading.min_confidence must be between 0-1, got %.2f", c.Trading.MinConfidence)
	}
	if c.Trading.DefaultVolume <= 0 {
		return fmt.Errorf("trading.default_volume must be positive, got %.4f", c.Trading.DefaultVolume)
	}
	if c.Trading.MinRiskReward < 0 {
		return fmt.Errorf("trading.min_risk_reward cannot be negative, got %.2f", c.Trading.MinRiskReward)
	}
	if c.Venue.MaxReconnectAttempts < 0 {
		return fmt.Errorf("venue.max_reconnect_attempts cannot be negative, got %d", c.Venue.MaxReconnectAttempts)
	}
	if c.News.Enabled {
		switch strings.ToUpper(c.News.MinImpact) {
		case "LOW", "MEDIUM", "HIGH":
		default:
			return fmt.Errorf("news.min_impact must be 'LOW', 'MEDIUM', or 'HIGH', got '%s'", c.News.MinImpact)
		}
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)
	applyEnvOverrides(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func applyDefaults(c *Config) {
	if c.CycleMinutes == 0 {
		c.CycleMinutes = 15
	}
	if c.Venue.TimeoutSeconds == 0 {
		c.Venue.TimeoutSeconds = 30
	}
	if c.Venue.Retries == 0 {
		c.Venue.Retries = 3
	}
	if c.Venue.RetryDelaySeconds == 0 {
		c.Venue.RetryDelaySeconds = 5
	}
	if c.Venue.MaxReconnectAttempts == 0 {
		c.Venue.MaxReconnectAttempts = 3
	}
	if c.Trading.Tag == "" {
		c.Trading.Tag = "mt5-trader"
	}
	if c.Trading.MagicNumber == 0 {
		c.Trading.MagicNumber = 234001
	}
	if c.Trading.DefaultVolume == 0 {
		c.Trading.DefaultVolume = 0.01
	}
	if c.Trading.MaxVolumeMultiplier == 0 {
		c.Trading.MaxVolumeMultiplier = 10
	}
	if c.Trading.MaxSlippagePoints == 0 {
		c.Trading.MaxSlippagePoints = 20
	}
	if c.Trading.MaxSpreadPoints == 0 {
		c.Trading.MaxSpreadPoints = 50
	}
	if c.Trading.MaxRiskPercent == 0 {
		c.Trading.MaxRiskPercent = 2.0
	}
	if c.Trading.MinRiskReward == 0 {
		c.Trading.MinRiskReward = 1.5
	}
	if c.Trading.MinConfidence == 0 {
		c.Trading.MinConfidence = 0.7
	}
	if c.Trading.MaxPositions == 0 {
		c.Trading.MaxPositions = 3
	}
	if c.Signals.BaseURL == "" {
		c.Signals.BaseURL = "http://localhost:5001"
	}
	if c.Signals.TimeoutSeconds == 0 {
		c.Signals.TimeoutSeconds = 30
	}
	if c.Signals.Retries == 0 {
		c.Signals.Retries = 3
	}
	if c.Signals.ExpiryMinutes == 0 {
		c.Signals.ExpiryMinutes = 60
	}
	if c.Signals.IntervalMinutes == 0 {
		c.Signals.IntervalMinutes = 15
	}
	if c.News.CalendarURL == "" {
		c.News.CalendarURL = "https://nfs.faireconomy.media/ff_calendar_thisweek.json"
	}
	if c.News.BlockWindowMinutes == 0 {
		c.News.BlockWindowMinutes = 30
	}
	if c.News.MinImpact == "" {
		c.News.MinImpact = "HIGH"
	}
}

// applyEnvOverrides lets deployment environments override endpoints and
// the trading mode without editing config.yaml. Credentials never live in
// yaml; the bridge binding reads them from the environment directly.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("MT5_BRIDGE_URL"); v != "" {
		c.Venue.BridgeURL = v
	}
	if v := os.Getenv("LLM_API_BASE_URL"); v != "" {
		c.Signals.BaseURL = v
	}
	if v := os.Getenv("TRADER_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("MT5_DEFAULT_SYMBOLS"); v != "" {
		var syms []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				syms = append(syms, s)
			}
		}
		if len(syms) > 0 {
			c.Symbols = syms
		}
	}
}

// DryRun reports whether orders should be simulated instead of submitted.
func (c *Config) DryRun() bool { return c.Mode == "DRY_RUN" }
