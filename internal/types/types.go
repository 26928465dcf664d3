package types

import "time"

// Direction is the side of a trade.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// Opposite returns the closing side for a position opened in this direction.
func (d Direction) Opposite() Direction {
	if d == Buy {
		return Sell
	}
	return Buy
}

// Valid reports whether the direction is one the engine can execute.
// HOLD-style signals are filtered before they reach the engine.
func (d Direction) Valid() bool { return d == Buy || d == Sell }

// ExecutionOutcome classifies the terminal result of an order attempt.
type ExecutionOutcome string

const (
	OutcomeSuccess            ExecutionOutcome = "SUCCESS"
	OutcomeFailed             ExecutionOutcome = "FAILED"
	OutcomeRejected           ExecutionOutcome = "REJECTED"
	OutcomeInvalidSignal      ExecutionOutcome = "INVALID_SIGNAL"
	OutcomeInsufficientMargin ExecutionOutcome = "INSUFFICIENT_MARGIN"
	OutcomeMarketClosed       ExecutionOutcome = "MARKET_CLOSED"
	OutcomeSymbolUnavailable  ExecutionOutcome = "SYMBOL_UNAVAILABLE"
	OutcomeRiskExceeded       ExecutionOutcome = "RISK_EXCEEDED"
)

// RejectReason is the specific rule a signal failed during validation.
type RejectReason string

const (
	RejectExpired                  RejectReason = "EXPIRED"
	RejectUnsupportedDirection     RejectReason = "UNSUPPORTED_DIRECTION"
	RejectBelowConfidenceThreshold RejectReason = "BELOW_CONFIDENCE_THRESHOLD"
	RejectSymbolNotTradable        RejectReason = "SYMBOL_NOT_TRADABLE"
	RejectInvalidPriceLevel        RejectReason = "INVALID_PRICE_LEVEL"
	RejectRiskRewardTooLow         RejectReason = "RISK_REWARD_TOO_LOW"
)

// TradingSignal is a directional recommendation produced by the LLM
// analysis service. The engine never mutates a signal, it only derives
// decisions from it. Zero price levels mean "not provided".
type TradingSignal struct {
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	EntryPrice float64   `json:"entry_price,omitempty"`
	StopLoss   float64   `json:"stop_loss,omitempty"`
	TakeProfit float64   `json:"take_profit,omitempty"`
	Reasoning  string    `json:"reasoning,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}

// AccountSnapshot is the account state at one instant. Fetched fresh per
// operation, never cached.
type AccountSnapshot struct {
	ID         int64   `json:"id"`
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	Margin     float64 `json:"margin"`
	MarginFree float64 `json:"margin_free"`
	Currency   string  `json:"currency"`
}

// SymbolSpec is the venue's description of a symbol at one instant.
type SymbolSpec struct {
	Symbol     string  `json:"symbol"`
	Tradable   bool    `json:"tradable"`
	PointSize  float64 `json:"point_size"`
	MinVolume  float64 `json:"min_volume"`
	MaxVolume  float64 `json:"max_volume"`
	VolumeStep float64 `json:"volume_step"`
	TickValue  float64 `json:"tick_value"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
}

// SpreadPoints returns the current bid/ask spread in points.
func (s SymbolSpec) SpreadPoints() float64 {
	if s.PointSize <= 0 {
		return 0
	}
	return (s.Ask - s.Bid) / s.PointSize
}

// SizedOrder is a validated, risk-sized order ready for submission.
// Only the sizer constructs one, and the executor consumes it exactly once.
type SizedOrder struct {
	Symbol            string
	Direction         Direction
	Volume            float64
	RequestedPrice    float64 // 0 means resolve at market
	StopLoss          float64
	TakeProfit        float64
	MaxSlippagePoints int
	Tag               string
	Magic             int
}

// ExecutionResult is the terminal value of one execution attempt.
// OutcomeSuccess always carries PositionID and FilledPrice; no other
// outcome does.
type ExecutionResult struct {
	Outcome      ExecutionOutcome `json:"outcome"`
	Reject       RejectReason     `json:"reject_reason,omitempty"`
	PositionID   string           `json:"position_id,omitempty"`
	FilledVolume float64          `json:"filled_volume,omitempty"`
	FilledPrice  float64          `json:"filled_price,omitempty"`
	Message      string           `json:"message,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// OpenPosition mirrors one open position held at the venue.
type OpenPosition struct {
	PositionID    string    `json:"position_id"`
	Symbol        string    `json:"symbol"`
	Direction     Direction `json:"direction"`
	Volume        float64   `json:"volume"`
	OpenPrice     float64   `json:"open_price"`
	CurrentPrice  float64   `json:"current_price"`
	StopLoss      float64   `json:"stop_loss,omitempty"`
	TakeProfit    float64   `json:"take_profit,omitempty"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	Tag           string    `json:"tag,omitempty"`
	Magic         int       `json:"magic,omitempty"`
	OpenedAt      time.Time `json:"opened_at"`
}

// FilledTrade is one historical fill read back from the venue.
type FilledTrade struct {
	TicketID  string    `json:"ticket_id"`
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Volume    float64   `json:"volume"`
	Price     float64   `json:"price"`
	Profit    float64   `json:"profit"`
	Swap      float64   `json:"swap"`
	Fee       float64   `json:"fee"`
	Tag       string    `json:"tag,omitempty"`
	Magic     int       `json:"magic,omitempty"`
	FilledAt  time.Time `json:"filled_at"`
}

// TradingSummary is the aggregate view exposed to the orchestrator.
type TradingSummary struct {
	Balance         float64 `json:"balance"`
	Equity          float64 `json:"equity"`
	OpenPositions   int     `json:"open_positions"`
	Trades30d       int     `json:"trades_30d"`
	WinRate30d      float64 `json:"win_rate_30d"`
	TotalProfit30d  float64 `json:"total_profit_30d"`
	LosingTrades30d int     `json:"losing_trades_30d"`
}

// OrderRequest is the wire-level order submitted to the terminal binding.
type OrderRequest struct {
	Symbol     string    `json:"symbol"`
	Action     Direction `json:"action"`
	Volume     float64   `json:"volume"`
	Price      float64   `json:"price,omitempty"`
	StopLoss   float64   `json:"sl,omitempty"`
	TakeProfit float64   `json:"tp,omitempty"`
	Deviation  int       `json:"deviation"`
	Magic      int       `json:"magic"`
	Comment    string    `json:"comment"`
	Ticket     string    `json:"ticket,omitempty"` // set when closing an existing position
}

// OrderResponse is the terminal's reply to an order submission.
type OrderResponse struct {
	Retcode int     `json:"retcode"`
	Ticket  string  `json:"ticket"`
	Volume  float64 `json:"volume"`
	Price   float64 `json:"price"`
	Comment string  `json:"comment"`
}

// MT5 trade server return codes, as reported by the bridge.
const (
	RetcodeDone          = 10009
	RetcodeRequote       = 10004
	RetcodeRejected      = 10006
	RetcodeInvalid       = 10013
	RetcodeInvalidVolume = 10014
	RetcodeNoMoney       = 10019
	RetcodeMarketClosed  = 10018
	RetcodeTradeDisabled = 10017
	RetcodeAutoDisabled  = 10026
	RetcodePriceOff      = 10021
)
