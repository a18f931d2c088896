/*

This file contains the default scoring weights for the engine.

*/

package config

import (
	"github.com/tokenpulse/engine/internal/types"
)

// DefaultWeights is the baseline weighting of the four health score
// components, used when no weight overrides are present in the environment.
// Liquidity and demand carry the most signal for on-chain tokens; stability
// and slippage refine the score rather than drive it.
var DefaultWeights = types.Weights{
	Liquidity: 0.3,
	Stability: 0.2,
	Demand:    0.3,
	Slippage:  0.2,
}
