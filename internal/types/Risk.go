/*

Types for portfolio risk analysis and rebalancing: drift, risk flags with
their suggestions, and discrete trade instructions.

*/

package types

import (
	"time"
)

// RiskFlag is an enumerated condition raised by the risk analyzer.
// Flags are independent and non-exclusive; evaluation order is fixed and the
// declaration order below is authoritative.
type RiskFlag string

const (
	FlagEmptyPortfolio    RiskFlag = "EMPTY_PORTFOLIO"
	FlagZeroValue         RiskFlag = "ZERO_VALUE"
	FlagHighDrift         RiskFlag = "HIGH_DRIFT"
	FlagConcentrationRisk RiskFlag = "CONCENTRATION_RISK"
	FlagUnderDiversified  RiskFlag = "UNDER_DIVERSIFIED"
	FlagLowHealthHolding  RiskFlag = "LOW_HEALTH_HOLDING"
)

// Concentration summarizes how unevenly a portfolio is allocated.
type Concentration struct {
	MaxWeight  float64 `json:"max_weight"`
	MaxToken   string  `json:"max_token"`
	Herfindahl float64 `json:"herfindahl"`
	Tokens     int     `json:"tokens"`
}

// RiskReport is the result of analyzing a portfolio against an optional
// target allocation.
type RiskReport struct {
	Drift             float64       `json:"drift"`
	Concentration     Concentration `json:"concentration"`
	CurrentAllocation Allocation    `json:"current_allocation,omitempty"`
	TargetAllocation  Allocation    `json:"target_allocation,omitempty"`
	Flags             []RiskFlag    `json:"flags"`
	Suggestions       []string      `json:"suggestions"`
	TokenScores       []TokenScore  `json:"token_scores,omitempty"`
	TotalValue        string        `json:"total_value,omitempty"`
	Timestamp         time.Time     `json:"timestamp"`
}

// TradeAction is the direction of a rebalancing trade.
type TradeAction string

const (
	TradeBuy  TradeAction = "BUY"
	TradeSell TradeAction = "SELL"
)

// Trade is one discrete rebalancing instruction. Amount is the unsigned raw
// integer magnitude as a decimal string; Action conveys the direction.
type Trade struct {
	Token         string      `json:"token"`
	Action        TradeAction `json:"action"`
	CurrentWeight float64     `json:"current_weight"`
	TargetWeight  float64     `json:"target_weight"`
	Delta         float64     `json:"delta"`
	Amount        string      `json:"amount"`
	Reason        string      `json:"reason"`
}
