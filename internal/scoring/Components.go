/*

This file contains the component score calculations: liquidity, stability,
demand, and slippage. Each returns an integer in [0,100] and is total over
its inputs; degenerate inputs map to explicit fallback scores.

*/

package scoring

import (
	"math"
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/tokenpulse/engine/internal/types"
	"github.com/tokenpulse/engine/internal/utils"
)

// neutralStabilityScore is returned when fewer than two price points exist:
// no volatility signal is not the same as high volatility.
const neutralStabilityScore = 50

// band is one rung of a threshold ladder. Ladders are ordered and the first
// matching rung wins.
type band struct {
	bound float64
	score int
}

// liquidityBands map total liquidity in token units to a score. Descending
// bounds; values below the last rung score 0.
var liquidityBands = []band{
	{10_000_000, 100},
	{5_000_000, 90},
	{1_000_000, 80},
	{500_000, 70},
	{100_000, 60},
	{50_000, 50},
	{10_000, 30},
	{1_000, 10},
}

// volatilityBands map the coefficient of variation (percent) to a score.
// Ascending exclusive upper bounds; values above the last rung score 10.
var volatilityBands = []band{
	{1, 100},
	{3, 90},
	{5, 80},
	{10, 70},
	{15, 60},
	{20, 50},
	{30, 40},
	{50, 20},
}

// volumeBands contribute up to 70 points of the demand score.
var volumeBands = []band{
	{10_000_000, 70},
	{1_000_000, 60},
	{100_000, 50},
	{10_000, 40},
	{1_000, 25},
	{100, 10},
}

// frequencyBands contribute up to 30 points of the demand score.
var frequencyBands = []band{
	{1000, 30},
	{500, 25},
	{100, 20},
	{50, 15},
	{10, 10},
	{1, 5},
}

// slippageBands map the volume-to-liquidity ratio to a score. Ascending
// exclusive upper bounds; values above the last rung score 5.
var slippageBands = []band{
	{0.01, 100},
	{0.05, 90},
	{0.1, 80},
	{0.2, 70},
	{0.5, 60},
	{1.0, 50},
	{2.0, 30},
	{5.0, 10},
}

// scoreAtLeast walks a descending ladder and returns the score of the first
// rung the value meets, or 0 below every rung. NaN scores 0.
func scoreAtLeast(bands []band, value float64) int {
	for _, b := range bands {
		if value >= b.bound {
			return b.score
		}
	}
	return 0
}

// scoreBelow walks an ascending ladder and returns the score of the first
// rung the value stays under, or fallback above every rung.
func scoreBelow(bands []band, value float64, fallback int) int {
	for _, b := range bands {
		if value < b.bound {
			return b.score
		}
	}
	return fallback
}

// calculateLiquidityScore rates the pooled depth of a token across all its
// pools. Deeper liquidity scores higher, saturating at 100.
func calculateLiquidityScore(totalLiquidity sdkmath.Int) int {
	return scoreAtLeast(liquidityBands, utils.RawToUnits(totalLiquidity))
}

// calculateStabilityScore rates price stability from the pooled hourly price
// series. The signal is the coefficient of variation of the series; fewer
// than two points yields the neutral score.
func calculateStabilityScore(prices []float64) int {
	if len(prices) < 2 {
		return neutralStabilityScore
	}

	volatility := coefficientOfVariation(prices)
	if math.IsNaN(volatility) || math.IsInf(volatility, 0) {
		return neutralStabilityScore
	}
	return scoreBelow(volatilityBands, volatility, 10)
}

// coefficientOfVariation returns the population standard deviation of the
// series as a percentage of its mean. A non-positive mean yields NaN so the
// caller falls back to the neutral score.
func coefficientOfVariation(prices []float64) float64 {
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))
	if mean <= 0 {
		return math.NaN()
	}

	sumSqDiff := 0.0
	for _, p := range prices {
		diff := p - mean
		sumSqDiff += diff * diff
	}
	stdDev := math.Sqrt(sumSqDiff / float64(len(prices)))

	return (stdDev / mean) * 100
}

// calculateDemandScore rates trading activity as the sum of a volume ladder
// (up to 70 points) and a swap-frequency ladder (up to 30 points), capped
// at 100.
func calculateDemandScore(volume24h sdkmath.Int, swapCount24h int64) int {
	volumeScore := scoreAtLeast(volumeBands, utils.RawToUnits(volume24h))
	frequencyScore := scoreAtLeast(frequencyBands, float64(swapCount24h))

	total := volumeScore + frequencyScore
	if total > 100 {
		return 100
	}
	return total
}

// calculateSlippageScore rates expected trade impact using the 24h
// volume-to-liquidity ratio as a proxy. A token with no liquidity at all
// scores 0, untradeable rather than merely shallow.
func calculateSlippageScore(totalLiquidity, volume24h sdkmath.Int) int {
	if totalLiquidity.IsNil() || !totalLiquidity.IsPositive() {
		return 0
	}
	ratio := utils.Ratio(volume24h, totalLiquidity)
	return scoreBelow(slippageBands, ratio, 5)
}

// composeScore combines the component scores with the configured weights and
// clamps the rounded result to [0,100].
func composeScore(components types.ComponentScores, weights types.Weights) int {
	weighted := float64(components.Liquidity)*weights.Liquidity +
		float64(components.Stability)*weights.Stability +
		float64(components.Demand)*weights.Demand +
		float64(components.Slippage)*weights.Slippage

	score := int(math.Round(weighted))
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// explain renders the component scores as a one-sentence summary.
func explain(components types.ComponentScores) string {
	parts := make([]string, 0, 4)

	switch {
	case components.Liquidity >= 80:
		parts = append(parts, "excellent liquidity")
	case components.Liquidity >= 60:
		parts = append(parts, "good liquidity")
	case components.Liquidity >= 40:
		parts = append(parts, "moderate liquidity")
	default:
		parts = append(parts, "low liquidity")
	}

	switch {
	case components.Stability >= 80:
		parts = append(parts, "high price stability")
	case components.Stability >= 60:
		parts = append(parts, "moderate stability")
	default:
		parts = append(parts, "high volatility")
	}

	switch {
	case components.Demand >= 80:
		parts = append(parts, "strong trading demand")
	case components.Demand >= 60:
		parts = append(parts, "moderate demand")
	default:
		parts = append(parts, "low demand")
	}

	switch {
	case components.Slippage >= 80:
		parts = append(parts, "minimal slippage expected")
	case components.Slippage >= 60:
		parts = append(parts, "acceptable slippage")
	default:
		parts = append(parts, "high slippage risk")
	}

	return "Token shows " + strings.Join(parts, ", ") + "."
}
