/*

This file contains the derived per-portfolio statistics: position weights,
the diversification score, and the Herfindahl concentration index. Raw
balances stay arbitrary-precision integers; weights are floats.

*/

package portfolio

import (
	"sort"

	sdkmath "cosmossdk.io/math"

	"github.com/tokenpulse/engine/internal/types"
	"github.com/tokenpulse/engine/internal/utils"
)

// ComputeMetrics derives portfolio statistics from a set of balances.
// An empty portfolio, or one whose balances sum to zero, yields a neutral
// result with no positions rather than an error.
func ComputeMetrics(balances []types.Balance) types.PortfolioMetrics {
	totalValue := sdkmath.ZeroInt()
	for _, b := range balances {
		if !b.Amount.IsNil() && b.Amount.IsPositive() {
			totalValue = totalValue.Add(b.Amount)
		}
	}

	metrics := types.PortfolioMetrics{
		TotalValue:     totalValue,
		NumberOfTokens: len(balances),
	}
	if len(balances) == 0 || !totalValue.IsPositive() {
		return metrics
	}

	positions := make([]types.Position, 0, len(balances))
	for _, b := range balances {
		amount := b.Amount
		if amount.IsNil() || amount.IsNegative() {
			amount = sdkmath.ZeroInt()
		}
		positions = append(positions, types.Position{
			Token:      b.TokenAddress,
			Value:      amount,
			Percentage: utils.Percentage(amount, totalValue),
		})
	}
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].Value.GT(positions[j].Value)
	})

	// A single-token portfolio is maximally concentrated by definition.
	// Otherwise the score measures how far position weights deviate from an
	// equal-weight portfolio: 100 at equal weights, 0 at full concentration.
	diversification := 0.0
	if len(positions) > 1 {
		expectedWeight := 100 / float64(len(positions))
		deviation := 0.0
		for _, p := range positions {
			diff := p.Percentage - expectedWeight
			if diff < 0 {
				diff = -diff
			}
			deviation += diff
		}
		diversification = clamp(100-deviation/2, 0, 100)
	}

	herfindahl := 0.0
	for _, p := range positions {
		weight := p.Percentage / 100
		herfindahl += weight * weight
	}

	metrics.Positions = positions
	metrics.DiversificationScore = diversification
	metrics.Concentration = herfindahl
	metrics.TopHolding = &positions[0]
	return metrics
}

// CurrentAllocation maps each token to its weight of total portfolio value.
// Weights sum to 1 when total value is positive; a zero-value portfolio
// yields an empty allocation.
func CurrentAllocation(balances []types.Balance) types.Allocation {
	totalValue := sdkmath.ZeroInt()
	for _, b := range balances {
		if !b.Amount.IsNil() && b.Amount.IsPositive() {
			totalValue = totalValue.Add(b.Amount)
		}
	}

	allocation := make(types.Allocation, len(balances))
	if !totalValue.IsPositive() {
		return allocation
	}
	for _, b := range balances {
		if !b.Amount.IsNil() && b.Amount.IsPositive() {
			allocation[b.TokenAddress] = utils.Weight(b.Amount, totalValue)
		}
	}
	return allocation
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
