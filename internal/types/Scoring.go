/*

Types for the token health score: configurable component weights, the four
component sub-scores, and the composed result.

*/

package types

import (
	"time"
)

// Weights holds the configurable weight of each score component.
// The defaults are 0.3/0.2/0.3/0.2; the weights are not renormalized if they
// do not sum to 1, the composed score is simply proportionally off.
type Weights struct {
	Liquidity float64 `json:"liquidity"`
	Stability float64 `json:"stability"`
	Demand    float64 `json:"demand"`
	Slippage  float64 `json:"slippage"`
}

// ComponentScores are the four independent sub-scores, each in [0,100].
type ComponentScores struct {
	Liquidity int `json:"liquidity"`
	Stability int `json:"stability"`
	Demand    int `json:"demand"`
	Slippage  int `json:"slippage"`
}

// ScoreMetrics is the aggregate snapshot the score was computed from.
// Amounts are reported as decimal strings of raw integer units.
type ScoreMetrics struct {
	TotalLiquidity string `json:"total_liquidity"`
	Volume24h      string `json:"volume_24h"`
	SwapCount24h   int64  `json:"swap_count_24h"`
	PoolCount      int    `json:"pool_count"`
}

// HealthScore is the composed 0-100 rating of a token.
// Invariant: Score == round(sum of component*weight), clamped to [0,100].
type HealthScore struct {
	Score       int             `json:"score"`
	Components  ComponentScores `json:"components"`
	Weights     Weights         `json:"weights"`
	Metrics     ScoreMetrics    `json:"metrics"`
	Explanation string          `json:"explanation"`
	Timestamp   time.Time       `json:"timestamp"`
}

// TokenScore is one entry of a batch scoring result. Exactly one of Health or
// Error is populated; a failed token never aborts the batch.
type TokenScore struct {
	Address string       `json:"address"`
	Health  *HealthScore `json:"health,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ScoreValue returns the numeric score of a batch entry, 0 for failed tokens.
func (ts TokenScore) ScoreValue() int {
	if ts.Health == nil {
		return 0
	}
	return ts.Health.Score
}
