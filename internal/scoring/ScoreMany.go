/*

This file contains batch scoring across a bounded worker pool. One failing
token never aborts the batch; its entry carries the error instead.

*/

package scoring

import (
	"context"
	"sync"

	"github.com/tokenpulse/engine/internal/types"
)

// scoreWorkers bounds concurrent scoring fan-out so a large batch does not
// hammer the indexer.
const scoreWorkers = 4

// ComputeTokenScores scores every address in the batch and returns one entry
// per input, in input order. Failed tokens get an Error entry; the batch
// itself only fails on an empty input.
func (s *Scorer) ComputeTokenScores(ctx context.Context, tokenAddresses []string) ([]types.TokenScore, error) {
	if len(tokenAddresses) == 0 {
		return nil, ErrTokenAddressRequired
	}

	results := make([]types.TokenScore, len(tokenAddresses))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < scoreWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				address := tokenAddresses[i]
				health, err := s.ComputeTokenScore(ctx, address)
				if err != nil {
					scoreLogger.Error().Err(err).Str("token", address).Msg("Failed to score token in batch")
					results[i] = types.TokenScore{Address: address, Error: err.Error()}
					continue
				}
				results[i] = types.TokenScore{Address: address, Health: &health}
			}
		}()
	}

	for i := range tokenAddresses {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, nil
}
