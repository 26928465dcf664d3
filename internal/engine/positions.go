package engine

import (
	"context"
	"fmt"
	"time"

	"mt5-trader/internal/logger"
	"mt5-trader/internal/types"
	"mt5-trader/internal/venue"
)

// positionRepo reads open positions and historical fills back from the
// venue. The venue is the system of record; nothing here is cached
// beyond the scope of one call.
type positionRepo struct {
	conn   *venue.Connection
	insp   *venue.Inspector
	exec   *orderExecutor
	policy Policy
}

func newPositionRepo(conn *venue.Connection, insp *venue.Inspector, exec *orderExecutor, policy Policy) *positionRepo {
	return &positionRepo{conn: conn, insp: insp, exec: exec, policy: policy}
}

// openPositions lists open positions, optionally restricted to one tag.
func (pr *positionRepo) openPositions(ctx context.Context, tagFilter string) ([]types.OpenPosition, error) {
	if !pr.conn.Ensure(ctx) {
		return nil, venue.ErrConnectionUnavailable
	}

	positions, err := pr.conn.Terminal().PositionsGet(ctx)
	if err != nil {
		return nil, err
	}
	if tagFilter == "" {
		return positions, nil
	}

	filtered := positions[:0:0]
	for _, pos := range positions {
		if pos.Tag == tagFilter || pos.Magic == pr.policy.Magic {
			filtered = append(filtered, pos)
		}
	}
	return filtered, nil
}

// closePosition submits an opposite-direction order against the full
// position volume. Outcome classification follows the same taxonomy as
// signal execution.
func (pr *positionRepo) closePosition(ctx context.Context, positionID string) types.ExecutionResult {
	if !pr.conn.Ensure(ctx) {
		return failedResult("connection unavailable")
	}

	positions, err := pr.conn.Terminal().PositionsGet(ctx)
	if err != nil {
		return failedResult(fmt.Sprintf("positions fetch failed: %v", err))
	}

	var pos *types.OpenPosition
	for i := range positions {
		if positions[i].PositionID == positionID {
			pos = &positions[i]
			break
		}
	}
	if pos == nil {
		// The venue never saw a close order, so this is a Failed
		// precondition rather than a venue rejection.
		return failedResult(fmt.Sprintf("position %s not found", positionID))
	}

	spec, err := pr.insp.SymbolSpec(ctx, pos.Symbol)
	if err != nil {
		return failedResult(fmt.Sprintf("symbol spec unavailable for %s: %v", pos.Symbol, err))
	}

	logger.Info(ctx, "Closing position",
		"position_id", positionID,
		"symbol", pos.Symbol,
		"direction", string(pos.Direction),
		"volume", pos.Volume,
	)

	return pr.exec.executeClose(ctx, *pos, *spec)
}

// history lists this engine's fills in [since, until].
func (pr *positionRepo) history(ctx context.Context, since, until time.Time, tagFilter string) ([]types.FilledTrade, error) {
	if !pr.conn.Ensure(ctx) {
		return nil, venue.ErrConnectionUnavailable
	}

	deals, err := pr.conn.Terminal().HistoryDealsGet(ctx, since, until)
	if err != nil {
		return nil, err
	}
	if tagFilter == "" {
		return deals, nil
	}

	filtered := deals[:0:0]
	for _, d := range deals {
		if d.Tag == tagFilter || d.Magic == pr.policy.Magic {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// summary aggregates account state, open positions, and the last 30 days
// of engine-tagged fills.
func (pr *positionRepo) summary(ctx context.Context) (*types.TradingSummary, error) {
	account, err := pr.insp.AccountSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	positions, err := pr.openPositions(ctx, pr.policy.Tag)
	if err != nil {
		return nil, err
	}

	until := time.Now().UTC()
	since := until.AddDate(0, 0, -30)
	fills, err := pr.history(ctx, since, until, pr.policy.Tag)
	if err != nil {
		return nil, err
	}

	s := &types.TradingSummary{
		Balance:       account.Balance,
		Equity:        account.Equity,
		OpenPositions: len(positions),
		Trades30d:     len(fills),
	}
	for _, f := range fills {
		s.TotalProfit30d += f.Profit
		if f.Profit <= 0 {
			s.LosingTrades30d++
		}
	}
	if s.Trades30d > 0 {
		wins := s.Trades30d - s.LosingTrades30d
		s.WinRate30d = float64(wins) / float64(s.Trades30d) * 100
	}
	return s, nil
}
