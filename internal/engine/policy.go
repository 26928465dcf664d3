package engine

import "mt5-trader/internal/store"

// Policy is the risk policy the validator and sizer apply. It is built
// once from config and passed by value so both stay pure and testable
// with mock policies.
type Policy struct {
	MinConfidence       float64
	MinRiskReward       float64
	MaxRiskPercent      float64
	DefaultVolume       float64
	MaxVolumeMultiplier float64
	MaxSlippagePoints   int
	MaxSpreadPoints     float64
	MaxPositions        int
	Tag                 string
	Magic               int
}

// PolicyFromConfig extracts the trading policy from loaded configuration.
func PolicyFromConfig(cfg *store.Config) Policy {
	return Policy{
		MinConfidence:       cfg.Trading.MinConfidence,
		MinRiskReward:       cfg.Trading.MinRiskReward,
		MaxRiskPercent:      cfg.Trading.MaxRiskPercent,
		DefaultVolume:       cfg.Trading.DefaultVolume,
		MaxVolumeMultiplier: cfg.Trading.MaxVolumeMultiplier,
		MaxSlippagePoints:   cfg.Trading.MaxSlippagePoints,
		MaxSpreadPoints:     cfg.Trading.MaxSpreadPoints,
		MaxPositions:        cfg.Trading.MaxPositions,
		Tag:                 cfg.Trading.Tag,
		Magic:               cfg.Trading.MagicNumber,
	}
}
