package indexer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gqlServer returns a test server answering every GraphQL POST with the
// given data payload, recording the last request body.
func gqlServer(t *testing.T, data string, lastRequest *gqlRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if lastRequest != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(lastRequest))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":` + data + `}`))
	}))
}

func TestGetTokenPools(t *testing.T) {
	var request gqlRequest
	server := gqlServer(t, `{
		"Pool": [{
			"address": "0xPOOL",
			"token0": "0xAAA",
			"token1": "0xBBB",
			"reserve0": "1000000000000000000",
			"reserve1": "2000000000000000000",
			"liquidity": "1500000000000000000",
			"totalSwaps": 42,
			"volume0": "10",
			"volume1": "20",
			"lastUpdated": 1700000000
		}]
	}`, &request)
	defer server.Close()

	client := New(server.URL, server.URL)
	pools, err := client.GetTokenPools(context.Background(), "0xAAA")
	require.NoError(t, err)
	require.Len(t, pools, 1)

	// Addresses are normalized to lowercase on both sides of the wire.
	assert.Equal(t, "0xaaa", request.Variables["tokenAddress"])
	assert.Equal(t, "0xpool", pools[0].Address)
	assert.Equal(t, "0xaaa", pools[0].Token0)
	assert.Equal(t, "1000000000000000000", pools[0].Reserve0.String())
	assert.Equal(t, "2000000000000000000", pools[0].Reserve1.String())
	assert.Equal(t, int64(42), pools[0].TotalSwaps)
	assert.Equal(t, int64(1700000000), pools[0].LastUpdated)
}

func TestGetTokenPoolsMalformedAmount(t *testing.T) {
	server := gqlServer(t, `{"Pool": [{"address": "0xp", "reserve0": "not-a-number"}]}`, nil)
	defer server.Close()

	client := New(server.URL, server.URL)
	_, err := client.GetTokenPools(context.Background(), "0xaaa")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGet24hVolume(t *testing.T) {
	server := gqlServer(t, `{
		"SwapEvent_aggregate": {
			"aggregate": {
				"count": 7,
				"sum": {
					"amount0In": "100",
					"amount1In": "30",
					"amount0Out": "50",
					"amount1Out": "20"
				}
			}
		}
	}`, nil)
	defer server.Close()

	client := New(server.URL, server.URL)
	volume, err := client.Get24hVolume(context.Background(), "0xpool")
	require.NoError(t, err)

	assert.Equal(t, int64(7), volume.SwapCount)
	assert.Equal(t, "150", volume.Volume0.String())
	assert.Equal(t, "50", volume.Volume1.String())
}

func TestGet24hVolumeNoSwaps(t *testing.T) {
	// Hasura omits the sum object when no rows match.
	server := gqlServer(t, `{"SwapEvent_aggregate": {"aggregate": {"count": 0, "sum": null}}}`, nil)
	defer server.Close()

	client := New(server.URL, server.URL)
	volume, err := client.Get24hVolume(context.Background(), "0xpool")
	require.NoError(t, err)

	assert.Zero(t, volume.SwapCount)
	assert.True(t, volume.Volume0.IsZero())
	assert.True(t, volume.Volume1.IsZero())
}

func TestGetPoolSnapshots(t *testing.T) {
	server := gqlServer(t, `{
		"PoolHourlySnapshot": [
			{"timestamp": 1, "reserve0": "10", "reserve1": "20", "volume0": "1", "volume1": "2", "swapCount": 3, "sqrtPriceX96": ""},
			{"timestamp": 2, "reserve0": "", "reserve1": "", "volume0": "", "volume1": "", "swapCount": 0, "sqrtPriceX96": "79228162514264337593543950336"}
		]
	}`, nil)
	defer server.Close()

	client := New(server.URL, server.URL)
	snapshots, err := client.GetPoolSnapshots(context.Background(), "0xpool", 24)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(t, "20", snapshots[0].Reserve1.String())
	assert.True(t, snapshots[0].SqrtPriceX96.IsZero())
	assert.True(t, snapshots[1].Reserve0.IsZero())
	assert.Equal(t, "79228162514264337593543950336", snapshots[1].SqrtPriceX96.String())
}

func TestGetUserPortfolio(t *testing.T) {
	server := gqlServer(t, `{
		"UserBalance": [
			{"tokenAddress": "0xAAA", "balance": "500", "transferCount": 3, "lastUpdated": 100},
			{"tokenAddress": "0xBBB", "balance": "700", "transferCount": 1, "lastUpdated": 200}
		]
	}`, nil)
	defer server.Close()

	client := New(server.URL, server.URL)
	portfolio, err := client.GetUserPortfolio(context.Background(), "0xUSER")
	require.NoError(t, err)

	assert.Equal(t, "0xuser", portfolio.Address)
	assert.Equal(t, 2, portfolio.TotalTokens)
	assert.Equal(t, int64(200), portfolio.LastUpdated)
	require.Len(t, portfolio.Balances, 2)
	assert.Equal(t, "0xaaa", portfolio.Balances[0].TokenAddress)
	assert.Equal(t, "500", portfolio.Balances[0].Amount.String())
}

func TestGetUserPortfolioEmpty(t *testing.T) {
	server := gqlServer(t, `{"UserBalance": []}`, nil)
	defer server.Close()

	client := New(server.URL, server.URL)
	portfolio, err := client.GetUserPortfolio(context.Background(), "0xuser")
	require.NoError(t, err)

	assert.Empty(t, portfolio.Balances)
	assert.Zero(t, portfolio.TotalTokens)
}

func TestGetLargeTransfers(t *testing.T) {
	var request gqlRequest
	server := gqlServer(t, `{
		"Transfer": [
			{"from": "0xWHALE", "to": "0xDEX", "value": "5000000000000000000000", "timestamp": 50}
		]
	}`, &request)
	defer server.Close()

	client := New(server.URL, server.URL)
	transfers, err := client.GetLargeTransfers(context.Background(), "0xAAA", sdkmath.NewIntWithDecimal(1, 21), 50)
	require.NoError(t, err)
	require.Len(t, transfers, 1)

	assert.Equal(t, "1000000000000000000000", request.Variables["minAmount"])
	assert.Equal(t, float64(50), request.Variables["limit"])
	assert.Equal(t, "0xwhale", transfers[0].From)
	assert.Equal(t, "5000000000000000000000", transfers[0].Value.String())
}

func TestQueryGraphQLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "field not found"}]}`))
	}))
	defer server.Close()

	client := New(server.URL, server.URL)
	_, err := client.GetTokenPools(context.Background(), "0xaaa")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "field not found")
}

func TestQueryHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, server.URL)
	_, err := client.GetTokenPools(context.Background(), "0xaaa")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestQueryUnreachableEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1", "http://127.0.0.1:1")
	_, err := client.GetTokenPools(context.Background(), "0xaaa")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestQueryMalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := New(server.URL, server.URL)
	_, err := client.GetTokenPools(context.Background(), "0xaaa")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
