package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mt5-trader/internal/interfaces"
	"mt5-trader/internal/logger"
	"mt5-trader/internal/store"
	"mt5-trader/internal/tradelog"
	"mt5-trader/internal/types"
	"mt5-trader/internal/venue"
)

// NewsGuard blocks execution around scheduled market events. A nil guard
// never blocks. Guard failures fail open: a broken calendar feed must
// not stop trading by itself.
type NewsGuard interface {
	Blocked(ctx context.Context, symbol string, now time.Time) (bool, string)
}

// Engine validates, sizes, and executes trading signals against one
// venue connection. All venue interaction is serialized: one in-flight
// request at a time, per the single-session model.
type Engine struct {
	cfg    *store.Config
	policy Policy
	conn   *venue.Connection
	insp   *venue.Inspector
	exec   *orderExecutor
	repo   *positionRepo
	guard  NewsGuard

	mu sync.Mutex
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg *store.Config, conn *venue.Connection, guard NewsGuard) *Engine {
	policy := PolicyFromConfig(cfg)
	insp := venue.NewInspector(conn)
	exec := newOrderExecutor(conn, cfg.DryRun(), policy.MaxSlippagePoints)
	return &Engine{
		cfg:    cfg,
		policy: policy,
		conn:   conn,
		insp:   insp,
		exec:   exec,
		repo:   newPositionRepo(conn, insp, exec, policy),
		guard:  guard,
	}
}

// ExecuteSignal runs the full pipeline for one signal: liveness gate,
// validation, risk checks, sizing, submission, classification. Every
// path returns a typed result; nothing here is fatal to the process.
func (e *Engine) ExecuteSignal(ctx context.Context, signal types.TradingSignal) types.ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger.Signal(ctx, signal.Symbol, string(signal.Direction), signal.Confidence)

	if !e.conn.Ensure(ctx) {
		result := failedResult("connection unavailable")
		e.journal(signal, result)
		return result
	}

	if e.guard != nil {
		if blocked, why := e.guard.Blocked(ctx, signal.Symbol, time.Now().UTC()); blocked {
			logger.Risk(ctx, signal.Symbol, "NEWS_BLOCKED", "reason", why)
			result := types.ExecutionResult{
				Outcome:    types.OutcomeRiskExceeded,
				Message:    fmt.Sprintf("blocked by news guard: %s", why),
				OccurredAt: time.Now().UTC(),
			}
			e.journal(signal, result)
			return result
		}
	}

	spec, err := e.insp.SymbolSpec(ctx, signal.Symbol)
	if err != nil {
		result := failedResult(fmt.Sprintf("symbol spec unavailable: %v", err))
		e.journal(signal, result)
		return result
	}
	account, err := e.insp.AccountSnapshot(ctx)
	if err != nil {
		result := failedResult(fmt.Sprintf("account snapshot unavailable: %v", err))
		e.journal(signal, result)
		return result
	}

	if reason, ok := validateSignal(signal, *spec, e.policy, time.Now().UTC()); !ok {
		logger.Decision(ctx, signal.Symbol, "REJECT", signal.Confidence, string(reason))
		result := types.ExecutionResult{
			Outcome:    types.OutcomeInvalidSignal,
			Reject:     reason,
			Message:    fmt.Sprintf("signal rejected: %s", reason),
			OccurredAt: time.Now().UTC(),
		}
		e.journal(signal, result)
		return result
	}

	if e.policy.MaxPositions > 0 {
		open, err := e.repo.openPositions(ctx, e.policy.Tag)
		if err != nil {
			result := failedResult(fmt.Sprintf("positions fetch failed: %v", err))
			e.journal(signal, result)
			return result
		}
		if len(open) >= e.policy.MaxPositions {
			logger.Risk(ctx, signal.Symbol, "MAX_POSITIONS_REACHED",
				"open_positions", len(open),
				"max_positions", e.policy.MaxPositions,
			)
			result := types.ExecutionResult{
				Outcome:    types.OutcomeRejected,
				Message:    fmt.Sprintf("maximum positions limit (%d) reached", e.policy.MaxPositions),
				OccurredAt: time.Now().UTC(),
			}
			e.journal(signal, result)
			return result
		}
	}

	if e.policy.MaxSpreadPoints > 0 && spec.SpreadPoints() > e.policy.MaxSpreadPoints {
		logger.Risk(ctx, signal.Symbol, "SPREAD_TOO_WIDE",
			"spread_points", spec.SpreadPoints(),
			"max_spread_points", e.policy.MaxSpreadPoints,
		)
		result := types.ExecutionResult{
			Outcome:    types.OutcomeRejected,
			Message:    fmt.Sprintf("spread %.1f points exceeds limit %.1f", spec.SpreadPoints(), e.policy.MaxSpreadPoints),
			OccurredAt: time.Now().UTC(),
		}
		e.journal(signal, result)
		return result
	}

	order := buildOrder(ctx, signal, *account, *spec, e.policy)
	result := e.exec.execute(ctx, order, *spec)
	e.journal(signal, result)
	return result
}

// OpenPositions lists the engine's open positions at the venue.
func (e *Engine) OpenPositions(ctx context.Context) ([]types.OpenPosition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.openPositions(ctx, e.policy.Tag)
}

// ClosePosition flattens one open position by id.
func (e *Engine) ClosePosition(ctx context.Context, positionID string) types.ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := e.repo.closePosition(ctx, positionID)
	_ = tradelog.Append(tradelog.Entry{
		Symbol:     "",
		Direction:  "CLOSE",
		Outcome:    string(result.Outcome),
		PositionID: positionID,
		Price:      result.FilledPrice,
		Volume:     result.FilledVolume,
		Message:    result.Message,
	})
	return result
}

// History lists the engine's fills between since and until.
func (e *Engine) History(ctx context.Context, since, until time.Time) ([]types.FilledTrade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.history(ctx, since, until, e.policy.Tag)
}

// TradingSummary aggregates account state and 30-day performance.
func (e *Engine) TradingSummary(ctx context.Context) (*types.TradingSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.summary(ctx)
}

func (e *Engine) journal(signal types.TradingSignal, result types.ExecutionResult) {
	_ = tradelog.Append(tradelog.Entry{
		Symbol:     signal.Symbol,
		Direction:  string(signal.Direction),
		Volume:     result.FilledVolume,
		Price:      result.FilledPrice,
		Outcome:    string(result.Outcome),
		PositionID: result.PositionID,
		Message:    result.Message,
		Confidence: signal.Confidence,
	})
	verdict := "EXECUTED"
	if result.Outcome != types.OutcomeSuccess {
		verdict = string(result.Outcome)
	}
	_ = tradelog.AppendSignal(tradelog.SignalEntry{
		Symbol:     signal.Symbol,
		Direction:  string(signal.Direction),
		Confidence: signal.Confidence,
		EntryPrice: signal.EntryPrice,
		StopLoss:   signal.StopLoss,
		TakeProfit: signal.TakeProfit,
		Verdict:    verdict,
		Reason:     result.Message,
	})
}
