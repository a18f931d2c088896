/*

This file contains the recommendation generator: a tri-state classifier over
health scores, with a confidence signal augmented by large-holder (whale)
transfer flow when an allowlist is configured.

*/

package recommender

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/tokenpulse/engine/internal/indexer"
	"github.com/tokenpulse/engine/internal/logger"
	"github.com/tokenpulse/engine/internal/scoring"
	"github.com/tokenpulse/engine/internal/types"
)

var ErrNoTokens = errors.New("at least one token address is required")

// Action thresholds of the tri-state classifier.
const (
	buyThreshold  = 80
	holdThreshold = 60
)

const (
	baseConfidence          = 40
	whaleAlignedBonus       = 30
	whaleOpposedPenalty     = 10
	componentWarningPenalty = 10
	strongDemandBonus       = 10
)

// Large-transfer scan parameters for the whale signal.
const whaleTransferLimit = 50

// whaleMinTransfer is 1000 whole tokens in raw 1e18 units; smaller transfers
// are not whale moves.
var whaleMinTransfer = sdkmath.NewIntWithDecimal(1, 21)

const defaultLimit = 5

// Recommender turns batch health scores into ranked trading suggestions.
type Recommender struct {
	source indexer.Source
	scorer *scoring.Scorer
	whales map[string]struct{}
	log    zerolog.Logger
}

// New creates a Recommender. whaleAddresses is the allowlist of large-holder
// addresses; an empty list disables the whale-activity signal.
func New(source indexer.Source, scorer *scoring.Scorer, whaleAddresses []string) (*Recommender, error) {
	if source == nil {
		return nil, errors.New("data source is required")
	}
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	whales := make(map[string]struct{}, len(whaleAddresses))
	for _, address := range whaleAddresses {
		address = strings.ToLower(strings.TrimSpace(address))
		if address != "" {
			whales[address] = struct{}{}
		}
	}
	return &Recommender{
		source: source,
		scorer: scorer,
		whales: whales,
		log:    logger.GetForComponent("recommender"),
	}, nil
}

// Generate scores the given tokens and returns up to limit recommendations
// ranked by confidence. Tokens that fail to score are skipped; a
// recommendation is always produced for every token that scores.
func (r *Recommender) Generate(ctx context.Context, tokenAddresses []string, limit int) ([]types.Recommendation, error) {
	if len(tokenAddresses) == 0 {
		return nil, ErrNoTokens
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	scores, err := r.scorer.ComputeTokenScores(ctx, tokenAddresses)
	if err != nil {
		return nil, err
	}

	recommendations := make([]types.Recommendation, 0, len(scores))
	for _, score := range scores {
		if score.Health == nil {
			r.log.Warn().Str("token", score.Address).Str("reason", score.Error).Msg("Skipping unscorable token")
			continue
		}
		recommendations = append(recommendations, r.recommend(ctx, score.Address, score.Health))
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Confidence > recommendations[j].Confidence
	})
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}

	r.log.Debug().
		Int("requested", len(tokenAddresses)).
		Int("returned", len(recommendations)).
		Msg("Recommendations generated")

	return recommendations, nil
}

// recommend classifies one scored token and derives its confidence.
func (r *Recommender) recommend(ctx context.Context, tokenAddress string, health *types.HealthScore) types.Recommendation {
	rec := types.Recommendation{
		Token:      tokenAddress,
		Score:      health.Score,
		Confidence: baseConfidence,
	}

	switch {
	case health.Score >= buyThreshold:
		rec.Action = types.RecommendBuy
		rec.Reasons = append(rec.Reasons, fmt.Sprintf("High health score (%d/100)", health.Score))
	case health.Score >= holdThreshold:
		rec.Action = types.RecommendHold
		rec.Reasons = append(rec.Reasons, fmt.Sprintf("Moderate health score (%d/100)", health.Score))
	default:
		rec.Action = types.RecommendAvoid
		rec.Reasons = append(rec.Reasons, fmt.Sprintf("Low health score (%d/100)", health.Score))
	}

	if whale := r.whaleActivity(ctx, tokenAddress); whale != nil {
		rec.Whale = whale
		switch {
		case whale.NetFlow.IsPositive() && rec.Action == types.RecommendBuy:
			rec.Reasons = append(rec.Reasons, "Smart money net buying")
			rec.Confidence += whaleAlignedBonus
		case whale.NetFlow.IsNegative() && rec.Action == types.RecommendAvoid:
			rec.Reasons = append(rec.Reasons, "Smart money net selling")
			rec.Confidence += whaleAlignedBonus
		case whale.NetFlow.IsPositive() && rec.Action == types.RecommendAvoid,
			whale.NetFlow.IsNegative() && rec.Action == types.RecommendBuy:
			rec.Reasons = append(rec.Reasons, "Smart money flow contradicts score")
			rec.Confidence -= whaleOpposedPenalty
		}
	}

	if health.Components.Liquidity < 30 {
		rec.Reasons = append(rec.Reasons, "Low liquidity warning")
		rec.Confidence -= componentWarningPenalty
	}
	if health.Components.Stability < 30 {
		rec.Reasons = append(rec.Reasons, "High volatility warning")
		rec.Confidence -= componentWarningPenalty
	}
	if health.Components.Demand >= 80 {
		rec.Reasons = append(rec.Reasons, "Strong trading demand")
		if rec.Action == types.RecommendBuy {
			rec.Confidence += strongDemandBonus
		}
	}

	if rec.Confidence > 100 {
		rec.Confidence = 100
	}
	if rec.Confidence < 0 {
		rec.Confidence = 0
	}
	return rec
}

// whaleActivity computes the net flow attributable to allowlisted addresses
// over recent large transfers of a token. A missing allowlist or a fetch
// failure yields nil: the signal is ancillary and never blocks a
// recommendation.
func (r *Recommender) whaleActivity(ctx context.Context, tokenAddress string) *types.WhaleActivity {
	if len(r.whales) == 0 {
		return nil
	}

	transfers, err := r.source.GetLargeTransfers(ctx, tokenAddress, whaleMinTransfer, whaleTransferLimit)
	if err != nil {
		r.log.Warn().Err(err).Str("token", tokenAddress).Msg("Failed to fetch large transfers, skipping whale signal")
		return nil
	}

	activity := &types.WhaleActivity{
		Token:      tokenAddress,
		NetFlow:    sdkmath.ZeroInt(),
		WhaleCount: len(r.whales),
	}
	for _, transfer := range transfers {
		_, toWhale := r.whales[strings.ToLower(transfer.To)]
		_, fromWhale := r.whales[strings.ToLower(transfer.From)]
		if !toWhale && !fromWhale {
			continue
		}
		if toWhale {
			activity.NetFlow = activity.NetFlow.Add(transfer.Value)
		}
		if fromWhale {
			activity.NetFlow = activity.NetFlow.Sub(transfer.Value)
		}
		activity.Transfers = append(activity.Transfers, transfer)
	}
	// Keep the payload small; the net flow already folds in every transfer.
	if len(activity.Transfers) > 10 {
		activity.Transfers = activity.Transfers[:10]
	}
	return activity
}

// Healthiest returns up to limit scored tokens ranked by health score,
// excluding tokens that scored zero or failed.
func (r *Recommender) Healthiest(ctx context.Context, tokenAddresses []string, limit int) ([]types.TokenScore, error) {
	if len(tokenAddresses) == 0 {
		return nil, ErrNoTokens
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	scores, err := r.scorer.ComputeTokenScores(ctx, tokenAddresses)
	if err != nil {
		return nil, err
	}

	healthy := make([]types.TokenScore, 0, len(scores))
	for _, score := range scores {
		if score.ScoreValue() > 0 {
			healthy = append(healthy, score)
		}
	}
	sort.SliceStable(healthy, func(i, j int) bool {
		return healthy[i].ScoreValue() > healthy[j].ScoreValue()
	})
	if len(healthy) > limit {
		healthy = healthy[:limit]
	}
	return healthy, nil
}
