/*

The Source interface is the engine's only view of the blockchain indexer.
Everything behind it is thin I/O; the engine never decodes chain events
itself. Callers needing retry or backoff wrap this collaborator.

*/

package indexer

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/tokenpulse/engine/internal/types"
)

// Source exposes the indexed pool, balance, and transfer data the engine
// consumes. Implementations must be safe for concurrent use.
type Source interface {
	// GetTokenPools returns every pool containing the token on either side.
	GetTokenPools(ctx context.Context, tokenAddress string) ([]types.Pool, error)

	// Get24hVolume returns the swap activity of a pool over the last 24 hours.
	Get24hVolume(ctx context.Context, poolAddress string) (types.PoolVolume, error)

	// GetPoolSnapshots returns up to the last `hours` hourly snapshots of a
	// pool, ordered ascending by timestamp.
	GetPoolSnapshots(ctx context.Context, poolAddress string, hours int) ([]types.PoolSnapshot, error)

	// GetUserPortfolio returns the nonzero balances held by an address.
	GetUserPortfolio(ctx context.Context, address string) (types.Portfolio, error)

	// GetLargeTransfers returns recent transfers of a token at or above
	// minAmount, newest first.
	GetLargeTransfers(ctx context.Context, tokenAddress string, minAmount sdkmath.Int, limit int) ([]types.Transfer, error)
}
