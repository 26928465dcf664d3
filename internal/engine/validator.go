package engine

import (
	"math"
	"time"

	"mt5-trader/internal/types"
)

// validateSignal applies the reject rules in order; the first failing
// rule wins. It is a pure function of its inputs: no I/O beyond the
// snapshots passed in, and re-running it on the same inputs always
// yields the same result.
func validateSignal(signal types.TradingSignal, spec types.SymbolSpec, policy Policy, now time.Time) (types.RejectReason, bool) {
	if !signal.ExpiresAt.IsZero() && now.After(signal.ExpiresAt) {
		return types.RejectExpired, false
	}

	if !signal.Direction.Valid() {
		return types.RejectUnsupportedDirection, false
	}

	if signal.Confidence < policy.MinConfidence {
		return types.RejectBelowConfidenceThreshold, false
	}

	if !spec.Tradable {
		return types.RejectSymbolNotTradable, false
	}

	for _, level := range []float64{signal.EntryPrice, signal.StopLoss, signal.TakeProfit} {
		if levelProvided(level) && level <= 0 {
			return types.RejectInvalidPriceLevel, false
		}
	}

	if signal.EntryPrice > 0 && signal.StopLoss > 0 && signal.TakeProfit > 0 {
		risk := math.Abs(signal.EntryPrice - signal.StopLoss)
		reward := math.Abs(signal.TakeProfit - signal.EntryPrice)
		if risk == 0 || reward/risk < policy.MinRiskReward {
			return types.RejectRiskRewardTooLow, false
		}
	}

	return "", true
}

// levelProvided reports whether an optional price level was supplied.
// Levels are optional floats where zero means absent, so only negative
// values can actually trip the invalid-price rule; the check still reads
// as the rule it implements.
func levelProvided(level float64) bool { return level != 0 }
