package contracts

import "time"

// Action is the trade direction of a signal
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// ExitReason identifies which exit rule fired
type ExitReason string

const (
	ExitStopLoss     ExitReason = "STOP_LOSS"
	ExitTimeBox      ExitReason = "TIME_BOX"
	ExitTrailingStop ExitReason = "TRAILING_STOP"
	ExitTrendBreak   ExitReason = "TREND_BREAK"
	ExitFakeBreakout ExitReason = "FAKE_BREAKOUT"
)

// TradeSignal is a BUY/SELL decision emitted by a strategy
// ⭐ SSOT: 전략 → 오케스트레이터 시그널 전달
type TradeSignal struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Market     Market     `json:"market,omitempty"`
	Action     Action     `json:"action"`
	Price      int64      `json:"price"`
	Quantity   int64      `json:"quantity"`
	Reason     string     `json:"reason"`
	ExitReason ExitReason `json:"exit_reason,omitempty"`
	Strategy   string     `json:"strategy"`
	CreatedAt  time.Time  `json:"created_at"`
}
