/*

Types for user portfolios: indexed balances, position weights, and the
derived diversification and concentration metrics.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// Balance is one (user, token) holding with its raw integer amount.
type Balance struct {
	TokenAddress  string      `json:"token_address"`
	Amount        sdkmath.Int `json:"amount"`
	TransferCount int64       `json:"transfer_count"`
	LastUpdated   int64       `json:"last_updated"`
}

// Portfolio is the indexed holdings of a single address.
type Portfolio struct {
	Address     string    `json:"address"`
	Balances    []Balance `json:"balances"`
	TotalTokens int       `json:"total_tokens"`
	LastUpdated int64     `json:"last_updated"`
}

// Allocation maps token address to a portfolio weight in [0,1].
// A current allocation sums to 1 when total value is positive; a target
// allocation may be partial and need not sum to 1.
type Allocation map[string]float64

// Position is one portfolio holding with its share of total value.
type Position struct {
	Token      string      `json:"token"`
	Value      sdkmath.Int `json:"value"`
	Percentage float64     `json:"percentage"`
}

// PortfolioMetrics are the derived per-portfolio statistics. Positions are
// sorted descending by value; TopHolding is nil for an empty portfolio.
type PortfolioMetrics struct {
	TotalValue           sdkmath.Int `json:"total_value"`
	Positions            []Position  `json:"positions"`
	DiversificationScore float64     `json:"diversification_score"`
	Concentration        float64     `json:"concentration"` // Herfindahl, (0,1]
	TopHolding           *Position   `json:"top_holding,omitempty"`
	NumberOfTokens       int         `json:"number_of_tokens"`
}
