/*

Custom types for liquidity pools and the per-token aggregates derived from
them. Raw on-chain amounts are arbitrary-precision integers; they are only
converted to floats after normalization (see internal/utils).

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// Pool is the indexed state of a single liquidity pool containing a token.
type Pool struct {
	Address     string      `json:"address"`
	Token0      string      `json:"token0"`
	Token1      string      `json:"token1"`
	Reserve0    sdkmath.Int `json:"reserve0"`
	Reserve1    sdkmath.Int `json:"reserve1"`
	Liquidity   sdkmath.Int `json:"liquidity"`
	Volume0     sdkmath.Int `json:"volume0"`
	Volume1     sdkmath.Int `json:"volume1"`
	TotalSwaps  int64       `json:"total_swaps"`
	LastUpdated int64       `json:"last_updated"` // unix seconds
}

// PoolSnapshot is one immutable hourly snapshot of a pool.
// SqrtPriceX96 is zero for pools that are not concentrated-liquidity.
type PoolSnapshot struct {
	Timestamp    int64       `json:"timestamp"`
	Reserve0     sdkmath.Int `json:"reserve0"`
	Reserve1     sdkmath.Int `json:"reserve1"`
	Volume0      sdkmath.Int `json:"volume0"`
	Volume1      sdkmath.Int `json:"volume1"`
	SwapCount    int64       `json:"swap_count"`
	SqrtPriceX96 sdkmath.Int `json:"sqrt_price_x96"`
}

// PoolVolume is the 24h swap activity of a single pool.
type PoolVolume struct {
	SwapCount int64       `json:"swap_count"`
	Volume0   sdkmath.Int `json:"volume0"`
	Volume1   sdkmath.Int `json:"volume1"`
}

// TokenAggregate folds the state of every pool containing a token into the
// scalar inputs of the component scorers. Derived per scoring call, never
// persisted.
type TokenAggregate struct {
	TotalLiquidity sdkmath.Int `json:"total_liquidity"`
	Volume24h      sdkmath.Int `json:"volume_24h"`
	SwapCount24h   int64       `json:"swap_count_24h"`
	PoolCount      int         `json:"pool_count"`
	PriceSeries    []float64   `json:"-"`
}
