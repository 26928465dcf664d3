package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mt5-trader/internal/logger"
	"mt5-trader/internal/types"
	"mt5-trader/internal/venue"
)

// orderExecutor submits sized orders through the venue connection and
// classifies every response into the execution outcome taxonomy. One
// order in flight at a time; the engine serializes callers.
type orderExecutor struct {
	conn     *venue.Connection
	dryRun   bool
	slippage int
}

func newOrderExecutor(conn *venue.Connection, dryRun bool, slippage int) *orderExecutor {
	return &orderExecutor{conn: conn, dryRun: dryRun, slippage: slippage}
}

// execute submits one order. The spec snapshot is the one the order was
// sized against; it supplies the market price when the signal carried no
// entry level (bid for Sell, ask for Buy).
//
// Dry-run mode is checked before any venue I/O and returns a synthetic
// fill with a sentinel position id. It is never a fallback after a
// failed call.
func (oe *orderExecutor) execute(ctx context.Context, order types.SizedOrder, spec types.SymbolSpec) types.ExecutionResult {
	price := order.RequestedPrice
	if price <= 0 {
		if order.Direction == types.Sell {
			price = spec.Bid
		} else {
			price = spec.Ask
		}
	}

	if oe.dryRun {
		id := "DRY-" + uuid.NewString()
		logger.Info(ctx, "Dry-run order simulated",
			"symbol", order.Symbol,
			"direction", string(order.Direction),
			"volume", order.Volume,
			"price", price,
			"position_id", id,
		)
		return types.ExecutionResult{
			Outcome:      types.OutcomeSuccess,
			PositionID:   id,
			FilledVolume: order.Volume,
			FilledPrice:  price,
			Message:      "dry-run",
			OccurredAt:   time.Now().UTC(),
		}
	}

	req := types.OrderRequest{
		Symbol:     order.Symbol,
		Action:     order.Direction,
		Volume:     order.Volume,
		Price:      price,
		StopLoss:   order.StopLoss,
		TakeProfit: order.TakeProfit,
		Deviation:  order.MaxSlippagePoints,
		Magic:      order.Magic,
		Comment:    order.Tag,
	}

	resp, err := oe.conn.Terminal().OrderSend(ctx, req)
	if err != nil {
		logger.ErrorWithErr(ctx, "Order submission failed", err, "symbol", order.Symbol)
		return failedResult(fmt.Sprintf("order send failed: %v", err))
	}

	return classifyResponse(ctx, order, resp)
}

// classifyResponse maps the venue's reply onto the outcome taxonomy.
// Venue-level rejections are reported as-is and never retried: a second
// blind submission of the same signal could double-execute.
func classifyResponse(ctx context.Context, order types.SizedOrder, resp *types.OrderResponse) types.ExecutionResult {
	now := time.Now().UTC()

	switch resp.Retcode {
	case types.RetcodeDone:
		logger.Trade(ctx, order.Symbol, string(order.Direction), resp.Volume, resp.Price, resp.Ticket)
		return types.ExecutionResult{
			Outcome:      types.OutcomeSuccess,
			PositionID:   resp.Ticket,
			FilledVolume: resp.Volume,
			FilledPrice:  resp.Price,
			Message:      resp.Comment,
			OccurredAt:   now,
		}
	case types.RetcodeNoMoney:
		return types.ExecutionResult{
			Outcome:    types.OutcomeInsufficientMargin,
			Message:    fmt.Sprintf("insufficient margin: %s", resp.Comment),
			OccurredAt: now,
		}
	case types.RetcodeMarketClosed, types.RetcodeTradeDisabled, types.RetcodeAutoDisabled:
		return types.ExecutionResult{
			Outcome:    types.OutcomeMarketClosed,
			Message:    fmt.Sprintf("market closed: %s", resp.Comment),
			OccurredAt: now,
		}
	case types.RetcodeInvalid:
		if strings.Contains(strings.ToLower(resp.Comment), "symbol") {
			return types.ExecutionResult{
				Outcome:    types.OutcomeSymbolUnavailable,
				Message:    fmt.Sprintf("symbol unavailable: %s", resp.Comment),
				OccurredAt: now,
			}
		}
		return rejectedResult(resp)
	default:
		return rejectedResult(resp)
	}
}

// executeClose submits the opposite-direction order that flattens an
// existing position. The closing side takes the bid when selling out of
// a long and the ask when buying back a short.
func (oe *orderExecutor) executeClose(ctx context.Context, pos types.OpenPosition, spec types.SymbolSpec) types.ExecutionResult {
	closeSide := pos.Direction.Opposite()
	price := spec.Ask
	if closeSide == types.Sell {
		price = spec.Bid
	}

	if oe.dryRun {
		logger.Info(ctx, "Dry-run close simulated",
			"position_id", pos.PositionID,
			"symbol", pos.Symbol,
			"volume", pos.Volume,
			"price", price,
		)
		return types.ExecutionResult{
			Outcome:      types.OutcomeSuccess,
			PositionID:   pos.PositionID,
			FilledVolume: pos.Volume,
			FilledPrice:  price,
			Message:      "dry-run",
			OccurredAt:   time.Now().UTC(),
		}
	}

	req := types.OrderRequest{
		Symbol:    pos.Symbol,
		Action:    closeSide,
		Volume:    pos.Volume,
		Price:     price,
		Deviation: oe.slippage,
		Magic:     pos.Magic,
		Comment:   fmt.Sprintf("close %s", pos.PositionID),
		Ticket:    pos.PositionID,
	}

	resp, err := oe.conn.Terminal().OrderSend(ctx, req)
	if err != nil {
		logger.ErrorWithErr(ctx, "Close submission failed", err, "position_id", pos.PositionID)
		return failedResult(fmt.Sprintf("close order failed: %v", err))
	}

	closeOrder := types.SizedOrder{Symbol: pos.Symbol, Direction: closeSide, Volume: pos.Volume}
	return classifyResponse(ctx, closeOrder, resp)
}

func rejectedResult(resp *types.OrderResponse) types.ExecutionResult {
	return types.ExecutionResult{
		Outcome:    types.OutcomeRejected,
		Message:    fmt.Sprintf("order rejected, retcode %d: %s", resp.Retcode, resp.Comment),
		OccurredAt: time.Now().UTC(),
	}
}

func failedResult(msg string) types.ExecutionResult {
	return types.ExecutionResult{
		Outcome:    types.OutcomeFailed,
		Message:    msg,
		OccurredAt: time.Now().UTC(),
	}
}
