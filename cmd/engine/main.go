package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tokenpulse/engine/internal/config"
	"github.com/tokenpulse/engine/internal/indexer"
	"github.com/tokenpulse/engine/internal/logger"
	"github.com/tokenpulse/engine/internal/recommender"
	"github.com/tokenpulse/engine/internal/risk"
	"github.com/tokenpulse/engine/internal/scoring"
	"github.com/tokenpulse/engine/internal/web"
)

// main is the entry point for the token health engine.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Token health engine starting...")

	// --- 2. Wire Engine Components ---
	client := indexer.New(config.DexIndexerEndpoint, config.PortfolioIndexerEndpoint)

	scorer, err := scoring.NewScorer(client, config.ScoringWeights)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to construct scorer")
	}

	analyzer, err := risk.NewAnalyzer(client, scorer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to construct risk analyzer")
	}

	rec, err := recommender.New(client, scorer, config.WhaleAddresses)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to construct recommender")
	}

	// --- 3. Serve ---
	server := web.NewServer(config.WebPort, client, scorer, analyzer, rec)
	log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting engine API")
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("Web server stopped")
	}
}
