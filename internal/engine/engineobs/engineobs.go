package engineobs

import (
	"context"
	"time"

	"mt5-trader/internal/interfaces"
	"mt5-trader/internal/logger"
	"mt5-trader/internal/trace"
	"mt5-trader/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) ExecuteSignal(ctx context.Context, signal types.TradingSignal) types.ExecutionResult {
	ctx, span := trace.StartSpan(ctx, "engine.ExecuteSignal")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Executing trading signal",
		"symbol", signal.Symbol,
		"direction", string(signal.Direction),
		"confidence", signal.Confidence,
	)

	result := oe.engine.ExecuteSignal(ctx, signal)

	logger.InfoSkip(ctx, 1, "Signal execution finished",
		"symbol", signal.Symbol,
		"outcome", string(result.Outcome),
		"position_id", result.PositionID,
		"message", result.Message,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}

func (oe *observableEngine) OpenPositions(ctx context.Context) ([]types.OpenPosition, error) {
	ctx, span := trace.StartSpan(ctx, "engine.OpenPositions")
	defer span.End()

	positions, err := oe.engine.OpenPositions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to list open positions", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Open positions listed", "count", len(positions))
	return positions, nil
}

func (oe *observableEngine) ClosePosition(ctx context.Context, positionID string) types.ExecutionResult {
	ctx, span := trace.StartSpan(ctx, "engine.ClosePosition")
	defer span.End()

	result := oe.engine.ClosePosition(ctx, positionID)

	logger.InfoSkip(ctx, 1, "Position close finished",
		"position_id", positionID,
		"outcome", string(result.Outcome),
		"message", result.Message,
	)
	return result
}

func (oe *observableEngine) TradingSummary(ctx context.Context) (*types.TradingSummary, error) {
	ctx, span := trace.StartSpan(ctx, "engine.TradingSummary")
	defer span.End()

	summary, err := oe.engine.TradingSummary(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to build trading summary", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Trading summary built",
		"balance", summary.Balance,
		"open_positions", summary.OpenPositions,
		"trades_30d", summary.Trades30d,
	)
	return summary, nil
}
