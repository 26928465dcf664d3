package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"mt5-trader/internal/engine"
	"mt5-trader/internal/engine/engineobs"
	"mt5-trader/internal/interfaces"
	"mt5-trader/internal/logger"
	"mt5-trader/internal/news"
	"mt5-trader/internal/notify"
	"mt5-trader/internal/signal"
	"mt5-trader/internal/store"
	"mt5-trader/internal/trace"
	"mt5-trader/internal/tradelog"
	"mt5-trader/internal/venue"
	"mt5-trader/internal/venue/mt5"
	"mt5-trader/internal/venue/venueobs"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger, and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeConnection builds the terminal binding with observability and
// wraps it in the managed connection.
func initializeConnection(ctx context.Context, cfg *store.Config) *venue.Connection {
	term := mt5.NewClient(mt5.Params{
		BaseURL:  cfg.Venue.BridgeURL,
		Login:    os.Getenv("MT5_LOGIN"),
		Password: os.Getenv("MT5_PASSWORD"),
		Server:   os.Getenv("MT5_SERVER"),
		Timeout:  time.Duration(cfg.Venue.TimeoutSeconds) * time.Second,
	})

	if cfg.DryRun() {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}

	return venue.NewConnection(venueobs.Wrap(term), venue.Params{
		Timeout:              time.Duration(cfg.Venue.TimeoutSeconds) * time.Second,
		Retries:              cfg.Venue.Retries,
		RetryDelay:           time.Duration(cfg.Venue.RetryDelaySeconds) * time.Second,
		MaxReconnectAttempts: cfg.Venue.MaxReconnectAttempts,
	})
}

// initializeSignalSource returns the LLM analysis service client.
func initializeSignalSource(ctx context.Context, cfg *store.Config) interfaces.SignalSource {
	src := signal.NewClient(signal.Params{
		BaseURL:  cfg.Signals.BaseURL,
		Timeout:  time.Duration(cfg.Signals.TimeoutSeconds) * time.Second,
		Retries:  cfg.Signals.Retries,
		Expiry:   time.Duration(cfg.Signals.ExpiryMinutes) * time.Minute,
		Interval: time.Duration(cfg.Signals.IntervalMinutes) * time.Minute,
	})

	if !src.Healthy(ctx) {
		logger.Warn(ctx, "Signal service not reachable at startup", "base_url", cfg.Signals.BaseURL)
	}

	return src
}

// initializeNewsGuard returns the economic calendar guard, or nil when
// news blocking is disabled.
func initializeNewsGuard(ctx context.Context, cfg *store.Config) engine.NewsGuard {
	if !cfg.News.Enabled {
		logger.Info(ctx, "News guard disabled in config")
		return nil
	}
	logger.Info(ctx, "News guard enabled",
		"min_impact", cfg.News.MinImpact,
		"block_window_minutes", cfg.News.BlockWindowMinutes,
	)
	return news.NewGuard(cfg)
}

// initializeEngine builds the trading engine with observability
func initializeEngine(cfg *store.Config, conn *venue.Connection, guard engine.NewsGuard) interfaces.Engine {
	return engineobs.Wrap(engine.New(cfg, conn, guard))
}

// initializeNotifier wires the alert channels. Telegram is the only
// channel today; missing credentials disable it with a warning.
func initializeNotifier(ctx context.Context, cfg *store.Config) *notify.Notifier {
	if !cfg.Notify.Enabled {
		return notify.NewNotifier(nil, nil)
	}

	var senders []notify.Sender
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token != "" && chatID != "" {
		senders = append(senders, notify.NewTelegramSender(token, chatID))
		logger.Info(ctx, "Telegram notifications enabled")
	} else {
		logger.Warn(ctx, "Notifications enabled but TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID not set")
	}

	return notify.NewNotifier(senders, cfg.Notify.Events)
}
