package engine

import (
	"context"
	"strings"
	"testing"

	"mt5-trader/internal/types"
)

func TestExecuteDryRun(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	term := newStubTerminal()
	oe := newOrderExecutor(newTestConnection(t, term), true, 20)

	order := types.SizedOrder{
		Symbol:         "EURUSD",
		Direction:      types.Sell,
		Volume:         0.5,
		RequestedPrice: 0, // resolve at market
	}

	result := oe.execute(context.Background(), order, tradableSpec())
	if result.Outcome != types.OutcomeSuccess {
		t.Fatalf("Outcome = %s, want SUCCESS", result.Outcome)
	}
	if !strings.HasPrefix(result.PositionID, "DRY-") {
		t.Errorf("PositionID = %q, want DRY- prefix", result.PositionID)
	}
	if result.FilledPrice != tradableSpec().Bid {
		t.Errorf("FilledPrice = %v, want bid %v for a sell", result.FilledPrice, tradableSpec().Bid)
	}
	if result.FilledVolume != 0.5 {
		t.Errorf("FilledVolume = %v, want 0.5", result.FilledVolume)
	}
	if term.orderSendCalls != 0 {
		t.Errorf("OrderSend calls = %d, want 0 in dry-run", term.orderSendCalls)
	}
}

func TestExecuteDryRunUniquePositionIDs(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	oe := newOrderExecutor(newTestConnection(t, newStubTerminal()), true, 20)
	order := types.SizedOrder{Symbol: "EURUSD", Direction: types.Buy, Volume: 0.1}

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		result := oe.execute(context.Background(), order, tradableSpec())
		if seen[result.PositionID] {
			t.Fatalf("duplicate dry-run position id %q", result.PositionID)
		}
		seen[result.PositionID] = true
	}
}

func TestExecuteSubmitsResolvedMarketPrice(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	term := newStubTerminal()
	oe := newOrderExecutor(newTestConnection(t, term), false, 20)

	order := types.SizedOrder{Symbol: "EURUSD", Direction: types.Buy, Volume: 0.1}
	oe.execute(context.Background(), order, tradableSpec())

	if term.orderSendCalls != 1 {
		t.Fatalf("OrderSend calls = %d, want 1", term.orderSendCalls)
	}
	if term.lastOrder.Price != tradableSpec().Ask {
		t.Errorf("submitted price = %v, want ask %v for a buy", term.lastOrder.Price, tradableSpec().Ask)
	}
}

func TestClassifyResponse(t *testing.T) {
	order := types.SizedOrder{Symbol: "EURUSD", Direction: types.Buy, Volume: 0.1}

	tests := []struct {
		name    string
		resp    types.OrderResponse
		outcome types.ExecutionOutcome
	}{
		{"done", types.OrderResponse{Retcode: types.RetcodeDone, Ticket: "12345", Volume: 0.1, Price: 1.0851}, types.OutcomeSuccess},
		{"no money", types.OrderResponse{Retcode: types.RetcodeNoMoney, Comment: "no money"}, types.OutcomeInsufficientMargin},
		{"market closed", types.OrderResponse{Retcode: types.RetcodeMarketClosed, Comment: "market closed"}, types.OutcomeMarketClosed},
		{"trade disabled", types.OrderResponse{Retcode: types.RetcodeTradeDisabled, Comment: "trade disabled"}, types.OutcomeMarketClosed},
		{"autotrading disabled", types.OrderResponse{Retcode: types.RetcodeAutoDisabled, Comment: "autotrading disabled by client"}, types.OutcomeMarketClosed},
		{"unknown symbol", types.OrderResponse{Retcode: types.RetcodeInvalid, Comment: "invalid symbol"}, types.OutcomeSymbolUnavailable},
		{"invalid request", types.OrderResponse{Retcode: types.RetcodeInvalid, Comment: "invalid stops"}, types.OutcomeRejected},
		{"requote", types.OrderResponse{Retcode: types.RetcodeRequote, Comment: "requote"}, types.OutcomeRejected},
		{"rejected", types.OrderResponse{Retcode: types.RetcodeRejected, Comment: "rejected"}, types.OutcomeRejected},
		{"invalid volume", types.OrderResponse{Retcode: types.RetcodeInvalidVolume, Comment: "invalid volume"}, types.OutcomeRejected},
		{"price off", types.OrderResponse{Retcode: types.RetcodePriceOff, Comment: "off quotes"}, types.OutcomeRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.resp
			result := classifyResponse(context.Background(), order, &resp)
			if result.Outcome != tt.outcome {
				t.Errorf("Outcome = %s, want %s", result.Outcome, tt.outcome)
			}
			if tt.outcome == types.OutcomeSuccess {
				if result.PositionID != "12345" {
					t.Errorf("PositionID = %q, want ticket 12345", result.PositionID)
				}
			} else if result.PositionID != "" {
				t.Errorf("PositionID = %q, want empty on %s", result.PositionID, tt.outcome)
			}
			if result.OccurredAt.IsZero() {
				t.Error("OccurredAt is zero")
			}
		})
	}
}

func TestExecuteCloseOppositeSide(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	term := newStubTerminal()
	oe := newOrderExecutor(newTestConnection(t, term), false, 20)

	pos := types.OpenPosition{
		PositionID: "777",
		Symbol:     "EURUSD",
		Direction:  types.Buy,
		Volume:     0.3,
		Magic:      234001,
	}
	oe.executeClose(context.Background(), pos, tradableSpec())

	if term.lastOrder.Action != types.Sell {
		t.Errorf("close action = %s, want SELL to flatten a long", term.lastOrder.Action)
	}
	if term.lastOrder.Ticket != "777" {
		t.Errorf("close ticket = %q, want 777", term.lastOrder.Ticket)
	}
	if term.lastOrder.Volume != 0.3 {
		t.Errorf("close volume = %v, want full position volume 0.3", term.lastOrder.Volume)
	}
	if term.lastOrder.Price != tradableSpec().Bid {
		t.Errorf("close price = %v, want bid %v", term.lastOrder.Price, tradableSpec().Bid)
	}
}

func TestExecuteCloseDryRun(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	term := newStubTerminal()
	oe := newOrderExecutor(newTestConnection(t, term), true, 20)

	pos := types.OpenPosition{PositionID: "777", Symbol: "EURUSD", Direction: types.Sell, Volume: 0.2}
	result := oe.executeClose(context.Background(), pos, tradableSpec())

	if result.Outcome != types.OutcomeSuccess {
		t.Fatalf("Outcome = %s, want SUCCESS", result.Outcome)
	}
	if result.PositionID != "777" {
		t.Errorf("PositionID = %q, want 777", result.PositionID)
	}
	if term.orderSendCalls != 0 {
		t.Errorf("OrderSend calls = %d, want 0 in dry-run", term.orderSendCalls)
	}
}
