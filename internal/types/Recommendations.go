/*

Types for trading recommendations and the whale-activity signal that can
augment them.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// RecommendAction is the tri-state classification of a scored token.
type RecommendAction string

const (
	RecommendBuy   RecommendAction = "BUY"
	RecommendHold  RecommendAction = "HOLD"
	RecommendAvoid RecommendAction = "AVOID"
)

// Transfer is one indexed token transfer.
type Transfer struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Value     sdkmath.Int `json:"value"`
	Timestamp int64       `json:"timestamp"`
}

// WhaleActivity is the net flow attributable to the configured allowlist of
// large-holder addresses over recent large transfers of a token. NetFlow is
// positive when whales are net buyers.
type WhaleActivity struct {
	Token      string      `json:"token"`
	NetFlow    sdkmath.Int `json:"net_flow"`
	Transfers  []Transfer  `json:"transfers,omitempty"`
	WhaleCount int         `json:"whale_count"`
}

// Recommendation is one ranked trading suggestion.
type Recommendation struct {
	Token      string          `json:"token"`
	Score      int             `json:"score"`
	Action     RecommendAction `json:"action"`
	Reasons    []string        `json:"reasons"`
	Confidence int             `json:"confidence"`
	Whale      *WhaleActivity  `json:"whale_activity,omitempty"`
}
