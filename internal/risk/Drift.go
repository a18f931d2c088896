/*

This file contains allocation drift and concentration calculations shared by
the risk analyzer and the rebalancing planner.

*/

package risk

import (
	"sort"

	"github.com/tokenpulse/engine/internal/types"
)

// Drift measures how far the current allocation has moved from the target:
// half the L1 distance over the union of tokens, in [0,1]. An empty target
// means no target is set and yields 0.
func Drift(current, target types.Allocation) float64 {
	if len(target) == 0 {
		return 0
	}

	totalDeviation := 0.0
	for _, token := range unionTokens(current, target) {
		diff := current[token] - target[token]
		if diff < 0 {
			diff = -diff
		}
		totalDeviation += diff
	}
	return totalDeviation / 2
}

// ComputeConcentration summarizes how unevenly an allocation is spread:
// the largest single weight, the token holding it, and the Herfindahl index.
// Weight ties break toward the lexicographically smaller token so the result
// is deterministic.
func ComputeConcentration(allocation types.Allocation) types.Concentration {
	concentration := types.Concentration{Tokens: len(allocation)}
	if len(allocation) == 0 {
		return concentration
	}

	tokens := make([]string, 0, len(allocation))
	for token := range allocation {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	for _, token := range tokens {
		weight := allocation[token]
		if weight > concentration.MaxWeight {
			concentration.MaxWeight = weight
			concentration.MaxToken = token
		}
		concentration.Herfindahl += weight * weight
	}
	return concentration
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
