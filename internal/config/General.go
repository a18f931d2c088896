package config

import (
	"errors"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tokenpulse/engine/internal/types"
)

// Application configuration loaded from environment variables.
// Populated once at startup by Load.
var (
	// ScoringWeights are the component weights used by the health score
	// composer. They are not required to sum to 1.
	ScoringWeights types.Weights

	// WhaleAddresses is the lowercased allowlist of large-holder addresses.
	// An empty list disables whale-activity augmentation.
	WhaleAddresses []string

	// DexIndexerEndpoint is the GraphQL endpoint serving pool data.
	DexIndexerEndpoint string
	// PortfolioIndexerEndpoint is the GraphQL endpoint serving balances and
	// transfers.
	PortfolioIndexerEndpoint string

	// WebPort is the listen port of the HTTP API.
	WebPort string
)

// Load reads configuration from environment variables and sets the global
// config vars. Everything has a default; malformed values are errors.
func Load() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	ScoringWeights, err = loadWeights()
	if err != nil {
		return err
	}

	WhaleAddresses = splitAddressList(os.Getenv("WHALE_ADDRESSES"))

	DexIndexerEndpoint = getEnvOr("INDEXER_DEX_ENDPOINT", "http://localhost:8080/v1/graphql")
	PortfolioIndexerEndpoint = getEnvOr("INDEXER_PORTFOLIO_ENDPOINT", "http://localhost:8080/v1/graphql")
	WebPort = getEnvOr("WEB_PORT", "8080")

	log.Debug().
		Float64("liquidityWeight", ScoringWeights.Liquidity).
		Float64("stabilityWeight", ScoringWeights.Stability).
		Float64("demandWeight", ScoringWeights.Demand).
		Float64("slippageWeight", ScoringWeights.Slippage).
		Int("whaleAddresses", len(WhaleAddresses)).
		Str("dexIndexer", DexIndexerEndpoint).
		Str("portfolioIndexer", PortfolioIndexerEndpoint).
		Msg("Configuration loaded successfully.")

	return nil
}

func loadWeights() (types.Weights, error) {
	w := DefaultWeights

	var err error
	if w.Liquidity, err = getEnvAsWeight("LIQUIDITY_WEIGHT", w.Liquidity); err != nil {
		return types.Weights{}, err
	}
	if w.Stability, err = getEnvAsWeight("STABILITY_WEIGHT", w.Stability); err != nil {
		return types.Weights{}, err
	}
	if w.Demand, err = getEnvAsWeight("DEMAND_WEIGHT", w.Demand); err != nil {
		return types.Weights{}, err
	}
	if w.Slippage, err = getEnvAsWeight("SLIPPAGE_WEIGHT", w.Slippage); err != nil {
		return types.Weights{}, err
	}
	return w, nil
}

// getEnvOr retrieves a string environment variable with a fallback default.
func getEnvOr(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvAsWeight retrieves an environment variable as a non-negative, finite
// float64, falling back to the given default when unset.
func getEnvAsWeight(key string, fallback float64) (float64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid float64, got: " + valueStr)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.New("environment variable " + key + " must be finite")
	}
	if value < 0 {
		return 0, errors.New("environment variable " + key + " cannot be negative")
	}
	return value, nil
}

// splitAddressList parses a comma-separated address list, trimming blanks and
// lowercasing for case-insensitive matching.
func splitAddressList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	addresses := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			addresses = append(addresses, p)
		}
	}
	return addresses
}
