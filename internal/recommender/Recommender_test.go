package recommender

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenpulse/engine/internal/scoring"
	"github.com/tokenpulse/engine/internal/types"
)

var testWeights = types.Weights{Liquidity: 0.3, Stability: 0.2, Demand: 0.3, Slippage: 0.2}

const whale = "0xablecablecablecablecablecablecablecable1"

func units(n int64) sdkmath.Int {
	return sdkmath.NewInt(n).Mul(sdkmath.NewIntWithDecimal(1, 18))
}

// stubSource serves canned pool and transfer data keyed by token.
type stubSource struct {
	pools        map[string][]types.Pool
	poolsErr     map[string]error
	transfers    map[string][]types.Transfer
	transfersErr error
}

func (s *stubSource) GetTokenPools(_ context.Context, token string) ([]types.Pool, error) {
	if err := s.poolsErr[token]; err != nil {
		return nil, err
	}
	return s.pools[token], nil
}

func (s *stubSource) Get24hVolume(_ context.Context, _ string) (types.PoolVolume, error) {
	return types.PoolVolume{SwapCount: 2000, Volume0: units(500_000), Volume1: units(500_000)}, nil
}

func (s *stubSource) GetPoolSnapshots(_ context.Context, _ string, _ int) ([]types.PoolSnapshot, error) {
	return []types.PoolSnapshot{
		{Reserve0: units(100), Reserve1: units(100)},
		{Reserve0: units(100), Reserve1: units(100)},
	}, nil
}

func (s *stubSource) GetUserPortfolio(_ context.Context, _ string) (types.Portfolio, error) {
	return types.Portfolio{}, nil
}

func (s *stubSource) GetLargeTransfers(_ context.Context, token string, _ sdkmath.Int, _ int) ([]types.Transfer, error) {
	if s.transfersErr != nil {
		return nil, s.transfersErr
	}
	return s.transfers[token], nil
}

// healthyPools is deep enough to score in BUY territory.
func healthyPools() []types.Pool {
	return []types.Pool{{Address: "0xpool", Reserve0: units(10_000_000), Reserve1: units(10_000_000)}}
}

func newTestRecommender(t *testing.T, source *stubSource, whales []string) *Recommender {
	t.Helper()
	scorer, err := scoring.NewScorer(source, testWeights)
	require.NoError(t, err)
	rec, err := New(source, scorer, whales)
	require.NoError(t, err)
	return rec
}

func TestGenerateTriStateActions(t *testing.T) {
	source := &stubSource{
		pools: map[string][]types.Pool{
			"0xstrong": healthyPools(),
			"0xempty":  {},
		},
	}
	rec := newTestRecommender(t, source, nil)

	recs, err := rec.Generate(context.Background(), []string{"0xstrong", "0xempty"}, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byToken := map[string]types.Recommendation{}
	for _, r := range recs {
		byToken[r.Token] = r
	}

	strong := byToken["0xstrong"]
	assert.Equal(t, types.RecommendBuy, strong.Action)
	assert.GreaterOrEqual(t, strong.Score, 80)
	assert.Contains(t, strong.Reasons[0], "High health score")

	empty := byToken["0xempty"]
	assert.Equal(t, types.RecommendAvoid, empty.Action)
	assert.Zero(t, empty.Score)
	assert.Contains(t, empty.Reasons[0], "Low health score")
	// Zero-score components trip both warnings.
	assert.Contains(t, empty.Reasons, "Low liquidity warning")
	assert.Contains(t, empty.Reasons, "High volatility warning")
}

func TestGenerateSkipsFailedTokens(t *testing.T) {
	source := &stubSource{
		pools:    map[string][]types.Pool{"0xgood": healthyPools()},
		poolsErr: map[string]error{"0xbad": errors.New("unreachable")},
	}
	rec := newTestRecommender(t, source, nil)

	recs, err := rec.Generate(context.Background(), []string{"0xgood", "0xbad"}, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "0xgood", recs[0].Token)
}

func TestGenerateWhaleBuyingRaisesConfidence(t *testing.T) {
	source := &stubSource{
		pools: map[string][]types.Pool{"0xstrong": healthyPools()},
		transfers: map[string][]types.Transfer{
			"0xstrong": {{From: "0xdex", To: whale, Value: units(5000), Timestamp: 1}},
		},
	}

	baseline := newTestRecommender(t, source, nil)
	baseRecs, err := baseline.Generate(context.Background(), []string{"0xstrong"}, 1)
	require.NoError(t, err)
	require.Len(t, baseRecs, 1)
	require.Nil(t, baseRecs[0].Whale)

	augmented := newTestRecommender(t, source, []string{whale})
	recs, err := augmented.Generate(context.Background(), []string{"0xstrong"}, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NotNil(t, recs[0].Whale)
	assert.True(t, recs[0].Whale.NetFlow.IsPositive())
	assert.Contains(t, recs[0].Reasons, "Smart money net buying")
	assert.Equal(t, baseRecs[0].Confidence+whaleAlignedBonus, recs[0].Confidence)
}

func TestGenerateWhaleSellingOpposesBuy(t *testing.T) {
	source := &stubSource{
		pools: map[string][]types.Pool{"0xstrong": healthyPools()},
		transfers: map[string][]types.Transfer{
			"0xstrong": {{From: whale, To: "0xdex", Value: units(5000), Timestamp: 1}},
		},
	}
	rec := newTestRecommender(t, source, []string{whale})

	recs, err := rec.Generate(context.Background(), []string{"0xstrong"}, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, types.RecommendBuy, recs[0].Action)
	assert.True(t, recs[0].Whale.NetFlow.IsNegative())
	assert.Contains(t, recs[0].Reasons, "Smart money flow contradicts score")
}

func TestGenerateWhaleFetchFailureDegrades(t *testing.T) {
	source := &stubSource{
		pools:        map[string][]types.Pool{"0xstrong": healthyPools()},
		transfersErr: errors.New("indexer down"),
	}
	rec := newTestRecommender(t, source, []string{whale})

	recs, err := rec.Generate(context.Background(), []string{"0xstrong"}, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Whale)
}

func TestGenerateSortsAndLimits(t *testing.T) {
	source := &stubSource{
		pools: map[string][]types.Pool{
			"0xstrong": healthyPools(),
			"0xempty":  {},
			"0xalso":   healthyPools(),
		},
	}
	rec := newTestRecommender(t, source, nil)

	recs, err := rec.Generate(context.Background(), []string{"0xempty", "0xstrong", "0xalso"}, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Confidence, recs[i].Confidence)
	}
	// The zero-score token loses the tiebreak and falls off the limit.
	for _, r := range recs {
		assert.NotEqual(t, "0xempty", r.Token)
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	rec := newTestRecommender(t, &stubSource{}, nil)
	_, err := rec.Generate(context.Background(), nil, 5)
	assert.ErrorIs(t, err, ErrNoTokens)
}

func TestHealthiest(t *testing.T) {
	source := &stubSource{
		pools: map[string][]types.Pool{
			"0xstrong": healthyPools(),
			"0xempty":  {},
			"0xshallow": {{
				Address:  "0xshallowpool",
				Reserve0: units(600),
				Reserve1: units(600),
			}},
		},
	}
	rec := newTestRecommender(t, source, nil)

	top, err := rec.Healthiest(context.Background(), []string{"0xempty", "0xshallow", "0xstrong"}, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "0xstrong", top[0].Address)
	assert.Equal(t, "0xshallow", top[1].Address)
	assert.Greater(t, top[0].ScoreValue(), top[1].ScoreValue())
}
