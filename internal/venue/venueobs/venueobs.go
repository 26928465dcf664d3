package venueobs

import (
	"context"
	"time"

	"mt5-trader/internal/interfaces"
	"mt5-trader/internal/logger"
	"mt5-trader/internal/trace"
	"mt5-trader/internal/types"
)

// observableTerminal wraps a Terminal with observability (logging & tracing)
type observableTerminal struct {
	term interfaces.Terminal
}

// Compile-time interface check
var _ interfaces.Terminal = (*observableTerminal)(nil)

// Wrap wraps a terminal binding with observability middleware
func Wrap(term interfaces.Terminal) interfaces.Terminal {
	return &observableTerminal{term: term}
}

func (ot *observableTerminal) Connect(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "terminal.Connect")
	defer span.End()

	if err := ot.term.Connect(ctx); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Terminal connect failed", err)
		return err
	}
	logger.InfoSkip(ctx, 1, "Terminal session initialized")
	return nil
}

func (ot *observableTerminal) Health(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "terminal.Health")
	defer span.End()

	if err := ot.term.Health(ctx); err != nil {
		logger.WarnSkip(ctx, 1, "Terminal health probe failed", "error", err)
		return err
	}
	return nil
}

func (ot *observableTerminal) AccountInfo(ctx context.Context) (*types.AccountSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.AccountInfo")
	defer span.End()

	snap, err := ot.term.AccountInfo(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch account info", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Account info fetched",
		"balance", snap.Balance,
		"equity", snap.Equity,
		"currency", snap.Currency,
	)
	return snap, nil
}

func (ot *observableTerminal) SymbolInfo(ctx context.Context, symbol string) (*types.SymbolSpec, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.SymbolInfo")
	defer span.End()

	spec, err := ot.term.SymbolInfo(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch symbol info", err, "symbol", symbol)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Symbol info fetched",
		"symbol", symbol,
		"tradable", spec.Tradable,
		"bid", spec.Bid,
		"ask", spec.Ask,
	)
	return spec, nil
}

func (ot *observableTerminal) OrderSend(ctx context.Context, req types.OrderRequest) (*types.OrderResponse, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.OrderSend")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Submitting order",
		"symbol", req.Symbol,
		"action", string(req.Action),
		"volume", req.Volume,
		"deviation", req.Deviation,
		"magic", req.Magic,
	)

	resp, err := ot.term.OrderSend(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Order submission failed", err,
			"symbol", req.Symbol,
			"action", string(req.Action),
			"volume", req.Volume,
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Order response received",
		"symbol", req.Symbol,
		"retcode", resp.Retcode,
		"ticket", resp.Ticket,
		"price", resp.Price,
	)
	return resp, nil
}

func (ot *observableTerminal) PositionsGet(ctx context.Context) ([]types.OpenPosition, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.PositionsGet")
	defer span.End()

	positions, err := ot.term.PositionsGet(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Positions fetched", "count", len(positions))
	return positions, nil
}

func (ot *observableTerminal) HistoryDealsGet(ctx context.Context, from, to time.Time) ([]types.FilledTrade, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.HistoryDealsGet")
	defer span.End()

	deals, err := ot.term.HistoryDealsGet(ctx, from, to)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch deal history", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Deal history fetched", "count", len(deals))
	return deals, nil
}

func (ot *observableTerminal) Shutdown(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "terminal.Shutdown")
	defer span.End()

	if err := ot.term.Shutdown(ctx); err != nil {
		logger.WarnSkip(ctx, 1, "Terminal shutdown returned error", "error", err)
		return err
	}
	return nil
}
