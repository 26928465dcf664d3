package engine

import (
	"context"
	"math"

	"mt5-trader/internal/logger"
	"mt5-trader/internal/types"
)

// sizeVolume computes the order volume in venue lot units from the risk
// policy and the symbol's volume constraints. Pure and deterministic.
//
// When entry and stop-loss are both present the volume is derived from
// the amount of account balance the policy allows to be at risk;
// otherwise the policy's default volume is used unmodified. Any
// computation that cannot produce a positive volume falls back to the
// default volume.
func sizeVolume(signal types.TradingSignal, account types.AccountSnapshot, spec types.SymbolSpec, policy Policy) float64 {
	if signal.EntryPrice <= 0 || signal.StopLoss <= 0 {
		return policy.DefaultVolume
	}
	if spec.PointSize <= 0 || spec.TickValue <= 0 {
		return policy.DefaultVolume
	}

	riskAmount := account.Balance * policy.MaxRiskPercent / 100

	riskPoints := math.Abs(signal.EntryPrice-signal.StopLoss) / spec.PointSize
	if riskPoints <= 0 {
		return policy.DefaultVolume
	}

	volume := riskAmount / (riskPoints * spec.TickValue)

	if spec.VolumeStep > 0 {
		volume = math.Round(volume/spec.VolumeStep) * spec.VolumeStep
	}
	volume = math.Max(spec.MinVolume, math.Min(volume, spec.MaxVolume))

	// Hard safety ceiling independent of account size.
	ceiling := policy.DefaultVolume * policy.MaxVolumeMultiplier
	if ceiling > 0 {
		volume = math.Min(volume, ceiling)
	}

	if volume <= 0 || math.IsNaN(volume) || math.IsInf(volume, 0) {
		return policy.DefaultVolume
	}
	return volume
}

// buildOrder assembles the sized order for a signal that already passed
// validation. This is the only constructor of a SizedOrder.
func buildOrder(ctx context.Context, signal types.TradingSignal, account types.AccountSnapshot, spec types.SymbolSpec, policy Policy) types.SizedOrder {
	volume := sizeVolume(signal, account, spec, policy)

	if signal.EntryPrice <= 0 || signal.StopLoss <= 0 {
		logger.Risk(ctx, signal.Symbol, "SIZER_DEFAULT_VOLUME",
			"volume", volume,
			"entry_price", signal.EntryPrice,
			"stop_loss", signal.StopLoss,
		)
	}

	return types.SizedOrder{
		Symbol:            signal.Symbol,
		Direction:         signal.Direction,
		Volume:            volume,
		RequestedPrice:    signal.EntryPrice,
		StopLoss:          signal.StopLoss,
		TakeProfit:        signal.TakeProfit,
		MaxSlippagePoints: policy.MaxSlippagePoints,
		Tag:               policy.Tag,
		Magic:             policy.Magic,
	}
}
