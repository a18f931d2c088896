/*

This file contains the main orchestration for computing a token's health
score: fetching its pools, folding them into a TokenAggregate, and composing
the weighted component scores.

*/

package scoring

import (
	"context"
	"errors"
	"math"
	"math/big"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/tokenpulse/engine/internal/indexer"
	"github.com/tokenpulse/engine/internal/logger"
	"github.com/tokenpulse/engine/internal/types"
	"github.com/tokenpulse/engine/internal/utils"
)

var (
	ErrInvalidWeights       = errors.New("invalid scoring weights")
	ErrTokenAddressRequired = errors.New("token address is required")
)

var scoreLogger = logger.GetForComponent("token_scorer")

// snapshotLookbackHours is how far back the stability signal looks.
const snapshotLookbackHours = 24

// q96 is the fixed-point denominator of concentrated-liquidity sqrt prices.
var q96 = sdkmath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 96))

// Scorer computes health scores for tokens from indexed pool data.
type Scorer struct {
	source  indexer.Source
	weights types.Weights
}

// NewScorer creates a Scorer with the given data source and component
// weights. Weights must be finite and non-negative; they are not required
// to sum to 1.
func NewScorer(source indexer.Source, weights types.Weights) (*Scorer, error) {
	if source == nil {
		return nil, errors.New("data source is required")
	}
	for _, w := range []float64{weights.Liquidity, weights.Stability, weights.Demand, weights.Slippage} {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errors.Join(ErrInvalidWeights, errors.New("weight is not finite"))
		}
		if w < 0 {
			return nil, errors.Join(ErrInvalidWeights, errors.New("weight cannot be negative"))
		}
	}
	return &Scorer{source: source, weights: weights}, nil
}

// Weights returns the component weights the scorer composes with.
func (s *Scorer) Weights() types.Weights {
	return s.weights
}

// ComputeTokenScore computes the 0-100 health score of a token across every
// pool that contains it. A token with no pools scores 0 with an explanatory
// message; an unreachable data source is an error.
func (s *Scorer) ComputeTokenScore(ctx context.Context, tokenAddress string) (types.HealthScore, error) {
	if tokenAddress == "" {
		return types.HealthScore{}, ErrTokenAddressRequired
	}

	pools, err := s.source.GetTokenPools(ctx, tokenAddress)
	if err != nil {
		return types.HealthScore{}, errors.Join(errors.New("failed to fetch token pools"), err)
	}

	if len(pools) == 0 {
		scoreLogger.Debug().Str("token", tokenAddress).Msg("No pools found for token")
		return types.HealthScore{
			Score:       0,
			Components:  types.ComponentScores{},
			Weights:     s.weights,
			Metrics:     zeroMetrics(),
			Explanation: "No liquidity pools found for this token",
			Timestamp:   time.Now().UTC(),
		}, nil
	}

	aggregate := s.aggregatePools(ctx, tokenAddress, pools)

	components := types.ComponentScores{
		Liquidity: calculateLiquidityScore(aggregate.TotalLiquidity),
		Stability: calculateStabilityScore(aggregate.PriceSeries),
		Demand:    calculateDemandScore(aggregate.Volume24h, aggregate.SwapCount24h),
		Slippage:  calculateSlippageScore(aggregate.TotalLiquidity, aggregate.Volume24h),
	}

	score := types.HealthScore{
		Score:      composeScore(components, s.weights),
		Components: components,
		Weights:    s.weights,
		Metrics: types.ScoreMetrics{
			TotalLiquidity: aggregate.TotalLiquidity.String(),
			Volume24h:      aggregate.Volume24h.String(),
			SwapCount24h:   aggregate.SwapCount24h,
			PoolCount:      aggregate.PoolCount,
		},
		Explanation: explain(components),
		Timestamp:   time.Now().UTC(),
	}

	scoreLogger.Debug().
		Str("token", tokenAddress).
		Int("score", score.Score).
		Int("liquidityScore", components.Liquidity).
		Int("stabilityScore", components.Stability).
		Int("demandScore", components.Demand).
		Int("slippageScore", components.Slippage).
		Int("poolCount", aggregate.PoolCount).
		Msg("Token health score calculated")

	return score, nil
}

// aggregatePools folds per-pool state into the scalar inputs of the
// component scorers. A pool whose volume or snapshot fetch fails degrades to
// zero activity for that pool instead of failing the whole token.
func (s *Scorer) aggregatePools(ctx context.Context, tokenAddress string, pools []types.Pool) types.TokenAggregate {
	aggregate := types.TokenAggregate{
		TotalLiquidity: sdkmath.ZeroInt(),
		Volume24h:      sdkmath.ZeroInt(),
		PoolCount:      len(pools),
	}

	for _, pool := range pools {
		aggregate.TotalLiquidity = aggregate.TotalLiquidity.Add(nonNil(pool.Reserve0)).Add(nonNil(pool.Reserve1))

		volume, err := s.source.Get24hVolume(ctx, pool.Address)
		if err != nil {
			scoreLogger.Warn().
				Err(err).
				Str("token", tokenAddress).
				Str("pool", pool.Address).
				Msg("Failed to fetch 24h volume, treating pool as inactive")
		} else {
			aggregate.Volume24h = aggregate.Volume24h.Add(nonNil(volume.Volume0)).Add(nonNil(volume.Volume1))
			aggregate.SwapCount24h += volume.SwapCount
		}

		snapshots, err := s.source.GetPoolSnapshots(ctx, pool.Address, snapshotLookbackHours)
		if err != nil {
			scoreLogger.Warn().
				Err(err).
				Str("token", tokenAddress).
				Str("pool", pool.Address).
				Msg("Failed to fetch pool snapshots, skipping pool in stability signal")
			continue
		}
		for _, snapshot := range snapshots {
			if price, ok := snapshotPrice(snapshot); ok {
				aggregate.PriceSeries = append(aggregate.PriceSeries, price)
			}
		}
	}

	return aggregate
}

// snapshotPrice derives the pool price from an hourly snapshot: the reserve
// ratio for constant-product pools, the squared sqrt price for
// concentrated-liquidity pools. Snapshots carrying neither are skipped.
func snapshotPrice(snapshot types.PoolSnapshot) (float64, bool) {
	if !snapshot.Reserve0.IsNil() && snapshot.Reserve0.IsPositive() &&
		!snapshot.Reserve1.IsNil() && snapshot.Reserve1.IsPositive() {
		return utils.Ratio(snapshot.Reserve1, snapshot.Reserve0), true
	}
	if !snapshot.SqrtPriceX96.IsNil() && snapshot.SqrtPriceX96.IsPositive() {
		sqrtPrice := utils.Ratio(snapshot.SqrtPriceX96, q96)
		return sqrtPrice * sqrtPrice, true
	}
	return 0, false
}

func nonNil(value sdkmath.Int) sdkmath.Int {
	if value.IsNil() {
		return sdkmath.ZeroInt()
	}
	return value
}

func zeroMetrics() types.ScoreMetrics {
	return types.ScoreMetrics{
		TotalLiquidity: "0",
		Volume24h:      "0",
	}
}
