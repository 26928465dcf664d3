package venue

import (
	"context"

	"mt5-trader/internal/logger"
	"mt5-trader/internal/types"
)

// Inspector runs read-only account and symbol queries against an active
// connection. Every query requires a passing Ensure; a nil result with a
// non-nil error always means "cannot proceed", never "use zero values".
type Inspector struct {
	conn *Connection
}

func NewInspector(conn *Connection) *Inspector {
	return &Inspector{conn: conn}
}

// AccountSnapshot fetches a fresh account snapshot. Never cached.
func (i *Inspector) AccountSnapshot(ctx context.Context) (*types.AccountSnapshot, error) {
	if !i.conn.Ensure(ctx) {
		return nil, ErrConnectionUnavailable
	}

	snap, err := i.conn.Terminal().AccountInfo(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch account snapshot", err)
		return nil, err
	}
	return snap, nil
}

// SymbolSpec fetches the current spec for one symbol. Treated as a
// snapshot by callers, not cached state.
func (i *Inspector) SymbolSpec(ctx context.Context, symbol string) (*types.SymbolSpec, error) {
	if !i.conn.Ensure(ctx) {
		return nil, ErrConnectionUnavailable
	}

	spec, err := i.conn.Terminal().SymbolInfo(ctx, symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch symbol spec", err, "symbol", symbol)
		return nil, err
	}
	return spec, nil
}
