/*

This file contains the rebalancing planner: it turns the gap between a
current and a target allocation into discrete, materiality-filtered trade
instructions.

*/

package planner

import (
	"errors"
	"fmt"
	"math"
	"sort"

	sdkmath "cosmossdk.io/math"

	"github.com/tokenpulse/engine/internal/logger"
	"github.com/tokenpulse/engine/internal/types"
	"github.com/tokenpulse/engine/internal/utils"
)

var (
	ErrInvalidAllocation = errors.New("invalid allocation weights")
	ErrInvalidTotalValue = errors.New("invalid total value")
)

var planLogger = logger.GetForComponent("planner")

// materialityThreshold is the minimum absolute weight delta worth trading.
// Smaller deltas are noise and are suppressed.
const materialityThreshold = 0.01

// ComputeTrades plans the trades moving a portfolio from its current
// allocation to the target. Deltas at or below the materiality threshold
// emit no trade; trade amounts are floor(totalValue * delta) with the sign
// carried by the action, and trades are ordered largest move first.
func ComputeTrades(current, target types.Allocation, totalValue sdkmath.Int) ([]types.Trade, error) {
	if err := validateAllocation(current); err != nil {
		return nil, errors.Join(ErrInvalidAllocation, err)
	}
	if err := validateAllocation(target); err != nil {
		return nil, errors.Join(ErrInvalidAllocation, err)
	}
	if totalValue.IsNil() || totalValue.IsNegative() {
		return nil, ErrInvalidTotalValue
	}

	trades := []types.Trade{}
	for _, token := range unionTokens(current, target) {
		currentWeight := current[token]
		targetWeight := target[token]
		delta := targetWeight - currentWeight

		if math.Abs(delta) <= materialityThreshold {
			continue
		}

		amount, err := utils.ScaleInt(totalValue, delta)
		if err != nil {
			return nil, errors.Join(errors.New("trade amount calculation failed"), err)
		}

		trade := types.Trade{
			Token:         token,
			CurrentWeight: currentWeight,
			TargetWeight:  targetWeight,
			Delta:         delta,
			Amount:        amount.Abs().String(),
		}
		if delta > 0 {
			trade.Action = types.TradeBuy
			trade.Reason = fmt.Sprintf("Increase allocation to %.1f%%", targetWeight*100)
		} else {
			trade.Action = types.TradeSell
			trade.Reason = fmt.Sprintf("Decrease allocation to %.1f%%", targetWeight*100)
		}
		trades = append(trades, trade)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return math.Abs(trades[i].Delta) > math.Abs(trades[j].Delta)
	})

	planLogger.Debug().
		Int("tradeCount", len(trades)).
		Str("totalValue", totalValue.String()).
		Msg("Rebalancing trades computed")

	return trades, nil
}

// validateAllocation rejects non-finite or negative weights before any
// arithmetic runs on them.
func validateAllocation(allocation types.Allocation) error {
	for token, weight := range allocation {
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("weight for %s is not finite", token)
		}
		if weight < 0 {
			return fmt.Errorf("weight for %s cannot be negative", token)
		}
	}
	return nil
}

// unionTokens returns the sorted union of the token sets of both allocations.
func unionTokens(a, b types.Allocation) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for token := range a {
		seen[token] = struct{}{}
	}
	for token := range b {
		seen[token] = struct{}{}
	}

	tokens := make([]string, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
