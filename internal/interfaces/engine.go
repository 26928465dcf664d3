package interfaces

import (
	"context"

	"mt5-trader/internal/types"
)

type Engine interface {
	ExecuteSignal(ctx context.Context, signal types.TradingSignal) types.ExecutionResult
	OpenPositions(ctx context.Context) ([]types.OpenPosition, error)
	ClosePosition(ctx context.Context, positionID string) types.ExecutionResult
	TradingSummary(ctx context.Context) (*types.TradingSummary, error)
}
