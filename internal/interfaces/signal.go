package interfaces

import (
	"context"

	"mt5-trader/internal/types"
)

// SignalSource produces trading signals for the engine to execute.
type SignalSource interface {
	// Signals returns actionable signals for the given symbols. HOLD
	// recommendations are filtered out before returning.
	Signals(ctx context.Context, symbols []string) ([]types.TradingSignal, error)
	// Healthy reports whether the source is reachable.
	Healthy(ctx context.Context) bool
}
