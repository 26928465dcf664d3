package interfaces

import (
	"context"
	"time"

	"mt5-trader/internal/types"
)

// Terminal is the contract the engine requires of any broker terminal
// binding. All calls block and carry the context's deadline; a timeout is
// treated by callers exactly like a hard failure, never retried in place.
type Terminal interface {
	// Connect initializes the terminal session. It does not retry; the
	// connection layer owns retry policy.
	Connect(ctx context.Context) error
	// Health probes session liveness without side effects.
	Health(ctx context.Context) error
	// AccountInfo returns a fresh account snapshot.
	AccountInfo(ctx context.Context) (*types.AccountSnapshot, error)
	// SymbolInfo returns the current spec for one symbol.
	SymbolInfo(ctx context.Context, symbol string) (*types.SymbolSpec, error)
	// OrderSend submits one order and returns the venue's raw response.
	OrderSend(ctx context.Context, req types.OrderRequest) (*types.OrderResponse, error)
	// PositionsGet lists open positions, all symbols.
	PositionsGet(ctx context.Context) ([]types.OpenPosition, error)
	// HistoryDealsGet lists fills in [from, to].
	HistoryDealsGet(ctx context.Context, from, to time.Time) ([]types.FilledTrade, error)
	// Shutdown tears the session down. Idempotent.
	Shutdown(ctx context.Context) error
}
