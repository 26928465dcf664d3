package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mt5-trader/internal/interfaces"
	"mt5-trader/internal/logger"
	"mt5-trader/internal/notify"
	"mt5-trader/internal/report"
	"mt5-trader/internal/store"
	"mt5-trader/internal/trace"
	"mt5-trader/internal/types"
	"mt5-trader/internal/venue"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	compressOldLogs(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	conn := initializeConnection(ctx, cfg)
	notifier := initializeNotifier(ctx, cfg)

	if err := conn.Connect(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Initial connect failed, will keep retrying per cycle", err)
		_ = notifier.Notify(ctx, notify.EventConnection, "Connection failed",
			fmt.Sprintf("Could not connect to trading venue: %v", err))
	} else {
		logger.Info(ctx, "Connected to trading venue", "bridge_url", cfg.Venue.BridgeURL)
	}

	src := initializeSignalSource(ctx, cfg)
	guard := initializeNewsGuard(ctx, cfg)
	eng := initializeEngine(cfg, conn, guard)

	cycle := time.NewTicker(time.Duration(cfg.CycleMinutes) * time.Minute)
	defer cycle.Stop()
	reportTick := time.NewTicker(60 * time.Second)
	defer reportTick.Stop()

	logger.Info(ctx, "Trader started",
		"mode", cfg.Mode,
		"symbols", cfg.Symbols,
		"cycle_minutes", cfg.CycleMinutes,
	)

	runCycle(ctx, cfg, src, eng, notifier)

	for {
		select {
		case <-cycle.C:
			runCycle(ctx, cfg, src, eng, notifier)
		case <-reportTick.C:
			if ok, _ := report.ShouldRunNow(); ok {
				if p, err := report.SummarizeToday(); err == nil && p != "" {
					logger.Info(ctx, "Daily report written", "path", p)
					_ = notifier.Notify(ctx, notify.EventDailyReport, "Daily report", "Report written: "+p)
				}
			}
		case <-sigc:
			shutdown(ctx, conn)
			return
		case <-ctx.Done():
			shutdown(context.Background(), conn)
			return
		}
	}
}

// runCycle fetches fresh signals and executes them one at a time.
func runCycle(ctx context.Context, cfg *store.Config, src interfaces.SignalSource, eng interfaces.Engine, notifier *notify.Notifier) {
	signals, err := src.Signals(ctx, cfg.Symbols)
	if err != nil {
		logger.ErrorWithErr(ctx, "Signal fetch failed, skipping cycle", err)
		return
	}
	if len(signals) == 0 {
		logger.Info(ctx, "No actionable signals this cycle")
		return
	}

	for _, s := range signals {
		result := eng.ExecuteSignal(ctx, s)
		notifyResult(ctx, notifier, s, result)
	}

	if summary, err := eng.TradingSummary(ctx); err == nil {
		logger.Info(ctx, "Cycle complete",
			"balance", summary.Balance,
			"equity", summary.Equity,
			"open_positions", summary.OpenPositions,
			"win_rate", fmt.Sprintf("%.1f%%", summary.WinRate30d),
		)
	}
}

// notifyResult maps an execution outcome onto an operator alert.
func notifyResult(ctx context.Context, notifier *notify.Notifier, s types.TradingSignal, r types.ExecutionResult) {
	switch r.Outcome {
	case types.OutcomeSuccess:
		_ = notifier.Notify(ctx, notify.EventTradeOpened, "Trade opened",
			fmt.Sprintf("%s %s %.2f lots @ %.5f (position %s)", s.Symbol, s.Direction, r.FilledVolume, r.FilledPrice, r.PositionID))
	case types.OutcomeFailed:
		_ = notifier.Notify(ctx, notify.EventTradeFailed, "Trade failed",
			fmt.Sprintf("%s %s: %s", s.Symbol, s.Direction, r.Message))
	default:
		_ = notifier.Notify(ctx, notify.EventSignalReject, "Signal rejected",
			fmt.Sprintf("%s %s: %s (%s)", s.Symbol, s.Direction, r.Outcome, r.Message))
	}
}

func shutdown(ctx context.Context, conn *venue.Connection) {
	logger.Info(ctx, "Shutting down...")
	if p, err := report.SummarizeToday(); err == nil && p != "" {
		logger.Info(ctx, "Daily report written", "path", p)
	}
	conn.Disconnect(ctx)
}
