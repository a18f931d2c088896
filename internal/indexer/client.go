package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/tokenpulse/engine/internal/logger"
	"github.com/tokenpulse/engine/internal/types"
)

var (
	// ErrUnavailable indicates the indexer could not be reached or answered
	// with a non-2xx status or a GraphQL-level error.
	ErrUnavailable = errors.New("indexer unavailable")

	// ErrMalformedResponse indicates the indexer answered but the payload
	// could not be decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed indexer response")
)

const requestTimeout = 15 * time.Second

// Client queries two GraphQL indexers: one tracking DEX pools and swaps,
// one tracking user balances and transfers. It implements Source.
type Client struct {
	dex       *resty.Client
	portfolio *resty.Client
	log       zerolog.Logger
}

// New creates a Client for the given GraphQL endpoints.
func New(dexEndpoint, portfolioEndpoint string) *Client {
	return &Client{
		dex:       resty.New().SetBaseURL(dexEndpoint).SetTimeout(requestTimeout),
		portfolio: resty.New().SetBaseURL(portfolioEndpoint).SetTimeout(requestTimeout),
		log:       logger.GetForComponent("indexer_client"),
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// query posts a GraphQL request and unmarshals the data field into out.
func (c *Client) query(ctx context.Context, client *resty.Client, query string, variables map[string]any, out any) error {
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(gqlRequest{Query: query, Variables: variables}).
		Post("")
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return errors.Join(ErrUnavailable, fmt.Errorf("unexpected status code: %d", resp.StatusCode()))
	}

	var envelope gqlEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return errors.Join(ErrMalformedResponse, err)
	}
	if len(envelope.Errors) > 0 {
		return errors.Join(ErrUnavailable, fmt.Errorf("graphql error: %s", envelope.Errors[0].Message))
	}
	if envelope.Data == nil {
		return errors.Join(ErrMalformedResponse, errors.New("missing data field"))
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return errors.Join(ErrMalformedResponse, err)
	}
	return nil
}

// parseInt decodes a decimal string amount from the indexer. Missing or
// empty values decode as zero; anything non-numeric is malformed.
func parseInt(raw string) (sdkmath.Int, error) {
	if raw == "" {
		return sdkmath.ZeroInt(), nil
	}
	value, ok := sdkmath.NewIntFromString(raw)
	if !ok {
		return sdkmath.Int{}, errors.Join(ErrMalformedResponse, fmt.Errorf("invalid integer amount %q", raw))
	}
	return value, nil
}

func parseTimestamp(raw json.Number) int64 {
	ts, err := raw.Int64()
	if err != nil {
		return 0
	}
	return ts
}

const tokenPoolsQuery = `
query GetTokenPools($tokenAddress: String!) {
  Pool(where: {_or: [{token0: {_eq: $tokenAddress}}, {token1: {_eq: $tokenAddress}}]}) {
    address
    token0
    token1
    reserve0
    reserve1
    liquidity
    totalSwaps
    volume0
    volume1
    lastUpdated
  }
}`

// GetTokenPools returns every pool containing the token on either side.
func (c *Client) GetTokenPools(ctx context.Context, tokenAddress string) ([]types.Pool, error) {
	var payload struct {
		Pool []struct {
			Address     string      `json:"address"`
			Token0      string      `json:"token0"`
			Token1      string      `json:"token1"`
			Reserve0    string      `json:"reserve0"`
			Reserve1    string      `json:"reserve1"`
			Liquidity   string      `json:"liquidity"`
			TotalSwaps  int64       `json:"totalSwaps"`
			Volume0     string      `json:"volume0"`
			Volume1     string      `json:"volume1"`
			LastUpdated json.Number `json:"lastUpdated"`
		} `json:"Pool"`
	}

	variables := map[string]any{"tokenAddress": strings.ToLower(tokenAddress)}
	if err := c.query(ctx, c.dex, tokenPoolsQuery, variables, &payload); err != nil {
		c.log.Error().Err(err).Str("token", tokenAddress).Msg("Failed to fetch token pools")
		return nil, err
	}

	pools := make([]types.Pool, 0, len(payload.Pool))
	for _, raw := range payload.Pool {
		pool := types.Pool{
			Address:     strings.ToLower(raw.Address),
			Token0:      strings.ToLower(raw.Token0),
			Token1:      strings.ToLower(raw.Token1),
			TotalSwaps:  raw.TotalSwaps,
			LastUpdated: parseTimestamp(raw.LastUpdated),
		}
		var err error
		if pool.Reserve0, err = parseInt(raw.Reserve0); err != nil {
			return nil, err
		}
		if pool.Reserve1, err = parseInt(raw.Reserve1); err != nil {
			return nil, err
		}
		if pool.Liquidity, err = parseInt(raw.Liquidity); err != nil {
			return nil, err
		}
		if pool.Volume0, err = parseInt(raw.Volume0); err != nil {
			return nil, err
		}
		if pool.Volume1, err = parseInt(raw.Volume1); err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}

	c.log.Debug().Str("token", tokenAddress).Int("pool_count", len(pools)).Msg("Fetched token pools")
	return pools, nil
}

const volume24hQuery = `
query Get24hVolume($poolAddress: String!, $since: BigInt!) {
  SwapEvent_aggregate(where: {pool: {_eq: $poolAddress}, timestamp: {_gte: $since}}) {
    aggregate {
      count
      sum {
        amount0In
        amount1In
        amount0Out
        amount1Out
      }
    }
  }
}`

// Get24hVolume returns the swap activity of a pool over the last 24 hours.
// Volume on each side is the sum of amounts swapped in and out.
func (c *Client) Get24hVolume(ctx context.Context, poolAddress string) (types.PoolVolume, error) {
	var payload struct {
		SwapEventAggregate struct {
			Aggregate struct {
				Count int64 `json:"count"`
				Sum   *struct {
					Amount0In  string `json:"amount0In"`
					Amount1In  string `json:"amount1In"`
					Amount0Out string `json:"amount0Out"`
					Amount1Out string `json:"amount1Out"`
				} `json:"sum"`
			} `json:"aggregate"`
		} `json:"SwapEvent_aggregate"`
	}

	since := time.Now().Add(-24 * time.Hour).Unix()
	variables := map[string]any{
		"poolAddress": strings.ToLower(poolAddress),
		"since":       fmt.Sprintf("%d", since),
	}
	if err := c.query(ctx, c.dex, volume24hQuery, variables, &payload); err != nil {
		c.log.Error().Err(err).Str("pool", poolAddress).Msg("Failed to fetch 24h volume")
		return types.PoolVolume{}, err
	}

	volume := types.PoolVolume{
		SwapCount: payload.SwapEventAggregate.Aggregate.Count,
		Volume0:   sdkmath.ZeroInt(),
		Volume1:   sdkmath.ZeroInt(),
	}
	if sum := payload.SwapEventAggregate.Aggregate.Sum; sum != nil {
		in0, err := parseInt(sum.Amount0In)
		if err != nil {
			return types.PoolVolume{}, err
		}
		out0, err := parseInt(sum.Amount0Out)
		if err != nil {
			return types.PoolVolume{}, err
		}
		in1, err := parseInt(sum.Amount1In)
		if err != nil {
			return types.PoolVolume{}, err
		}
		out1, err := parseInt(sum.Amount1Out)
		if err != nil {
			return types.PoolVolume{}, err
		}
		volume.Volume0 = in0.Add(out0)
		volume.Volume1 = in1.Add(out1)
	}
	return volume, nil
}

const poolSnapshotsQuery = `
query GetPoolSnapshots($poolAddress: String!, $since: BigInt!) {
  PoolHourlySnapshot(
    where: {pool: {_eq: $poolAddress}, timestamp: {_gte: $since}}
    order_by: {timestamp: asc}
  ) {
    timestamp
    volume0
    volume1
    swapCount
    reserve0
    reserve1
    sqrtPriceX96
  }
}`

// GetPoolSnapshots returns the hourly snapshots of a pool covering the last
// `hours` hours, ordered ascending by timestamp.
func (c *Client) GetPoolSnapshots(ctx context.Context, poolAddress string, hours int) ([]types.PoolSnapshot, error) {
	var payload struct {
		PoolHourlySnapshot []struct {
			Timestamp    json.Number `json:"timestamp"`
			Volume0      string      `json:"volume0"`
			Volume1      string      `json:"volume1"`
			SwapCount    int64       `json:"swapCount"`
			Reserve0     string      `json:"reserve0"`
			Reserve1     string      `json:"reserve1"`
			SqrtPriceX96 string      `json:"sqrtPriceX96"`
		} `json:"PoolHourlySnapshot"`
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour).Unix()
	variables := map[string]any{
		"poolAddress": strings.ToLower(poolAddress),
		"since":       fmt.Sprintf("%d", since),
	}
	if err := c.query(ctx, c.dex, poolSnapshotsQuery, variables, &payload); err != nil {
		c.log.Error().Err(err).Str("pool", poolAddress).Msg("Failed to fetch pool snapshots")
		return nil, err
	}

	snapshots := make([]types.PoolSnapshot, 0, len(payload.PoolHourlySnapshot))
	for _, raw := range payload.PoolHourlySnapshot {
		snapshot := types.PoolSnapshot{
			Timestamp: parseTimestamp(raw.Timestamp),
			SwapCount: raw.SwapCount,
		}
		var err error
		if snapshot.Reserve0, err = parseInt(raw.Reserve0); err != nil {
			return nil, err
		}
		if snapshot.Reserve1, err = parseInt(raw.Reserve1); err != nil {
			return nil, err
		}
		if snapshot.Volume0, err = parseInt(raw.Volume0); err != nil {
			return nil, err
		}
		if snapshot.Volume1, err = parseInt(raw.Volume1); err != nil {
			return nil, err
		}
		if snapshot.SqrtPriceX96, err = parseInt(raw.SqrtPriceX96); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

const userPortfolioQuery = `
query GetUserPortfolio($address: String!) {
  UserBalance(where: {userAddress: {_eq: $address}, balance: {_gt: "0"}}) {
    tokenAddress
    balance
    transferCount
    lastUpdated
  }
}`

// GetUserPortfolio returns the nonzero balances held by an address. An
// address with no balances yields an empty portfolio, not an error.
func (c *Client) GetUserPortfolio(ctx context.Context, address string) (types.Portfolio, error) {
	var payload struct {
		UserBalance []struct {
			TokenAddress  string      `json:"tokenAddress"`
			Balance       string      `json:"balance"`
			TransferCount int64       `json:"transferCount"`
			LastUpdated   json.Number `json:"lastUpdated"`
		} `json:"UserBalance"`
	}

	normalized := strings.ToLower(address)
	variables := map[string]any{"address": normalized}
	if err := c.query(ctx, c.portfolio, userPortfolioQuery, variables, &payload); err != nil {
		c.log.Error().Err(err).Str("address", address).Msg("Failed to fetch user portfolio")
		return types.Portfolio{}, err
	}

	portfolio := types.Portfolio{
		Address:     normalized,
		Balances:    make([]types.Balance, 0, len(payload.UserBalance)),
		TotalTokens: len(payload.UserBalance),
	}
	for _, raw := range payload.UserBalance {
		amount, err := parseInt(raw.Balance)
		if err != nil {
			return types.Portfolio{}, err
		}
		updated := parseTimestamp(raw.LastUpdated)
		if updated > portfolio.LastUpdated {
			portfolio.LastUpdated = updated
		}
		portfolio.Balances = append(portfolio.Balances, types.Balance{
			TokenAddress:  strings.ToLower(raw.TokenAddress),
			Amount:        amount,
			TransferCount: raw.TransferCount,
			LastUpdated:   updated,
		})
	}

	c.log.Debug().Str("address", address).Int("token_count", portfolio.TotalTokens).Msg("Fetched user portfolio")
	return portfolio, nil
}

const largeTransfersQuery = `
query GetLargeTransfers($tokenAddress: String!, $minAmount: BigInt!, $limit: Int!) {
  Transfer(
    where: {tokenAddress: {_eq: $tokenAddress}, value: {_gte: $minAmount}}
    order_by: {timestamp: desc}
    limit: $limit
  ) {
    from
    to
    value
    timestamp
  }
}`

// GetLargeTransfers returns recent transfers of a token at or above
// minAmount, newest first.
func (c *Client) GetLargeTransfers(ctx context.Context, tokenAddress string, minAmount sdkmath.Int, limit int) ([]types.Transfer, error) {
	var payload struct {
		Transfer []struct {
			From      string      `json:"from"`
			To        string      `json:"to"`
			Value     string      `json:"value"`
			Timestamp json.Number `json:"timestamp"`
		} `json:"Transfer"`
	}

	variables := map[string]any{
		"tokenAddress": strings.ToLower(tokenAddress),
		"minAmount":    minAmount.String(),
		"limit":        limit,
	}
	if err := c.query(ctx, c.portfolio, largeTransfersQuery, variables, &payload); err != nil {
		c.log.Error().Err(err).Str("token", tokenAddress).Msg("Failed to fetch large transfers")
		return nil, err
	}

	transfers := make([]types.Transfer, 0, len(payload.Transfer))
	for _, raw := range payload.Transfer {
		value, err := parseInt(raw.Value)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, types.Transfer{
			From:      strings.ToLower(raw.From),
			To:        strings.ToLower(raw.To),
			Value:     value,
			Timestamp: parseTimestamp(raw.Timestamp),
		})
	}
	return transfers, nil
}
