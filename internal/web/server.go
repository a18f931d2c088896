package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/tokenpulse/engine/internal/indexer"
	"github.com/tokenpulse/engine/internal/logger"
	"github.com/tokenpulse/engine/internal/planner"
	"github.com/tokenpulse/engine/internal/portfolio"
	"github.com/tokenpulse/engine/internal/recommender"
	"github.com/tokenpulse/engine/internal/risk"
	"github.com/tokenpulse/engine/internal/scoring"
	"github.com/tokenpulse/engine/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// addressPattern is the 0x-prefixed 20-byte hex form. Requests carrying a
// malformed address are rejected before touching the data source.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

const maxBatchTokens = 100

// Server exposes the scoring, risk, and recommendation engine over HTTP.
type Server struct {
	router      *mux.Router
	port        string
	source      indexer.Source
	scorer      *scoring.Scorer
	analyzer    *risk.Analyzer
	recommender *recommender.Recommender
}

// NewServer creates a web server wired to the engine components.
func NewServer(port string, source indexer.Source, scorer *scoring.Scorer, analyzer *risk.Analyzer, rec *recommender.Recommender) *Server {
	if port == "" {
		port = "8080"
	}

	server := &Server{
		router:      mux.NewRouter(),
		port:        port,
		source:      source,
		scorer:      scorer,
		analyzer:    analyzer,
		recommender: rec,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tokens/{address}/score", s.handleTokenScore).Methods("GET")
	api.HandleFunc("/tokens/{address}/pools", s.handleTokenPools).Methods("GET")
	api.HandleFunc("/tokens/scores", s.handleTokenScores).Methods("POST")
	api.HandleFunc("/portfolio/{address}", s.handlePortfolio).Methods("GET")
	api.HandleFunc("/portfolio/{address}/analyze", s.handleAnalyze).Methods("POST")
	api.HandleFunc("/portfolio/{address}/rebalance", s.handleRebalance).Methods("POST")
	api.HandleFunc("/recommendations", s.handleRecommendations).Methods("POST")
	api.HandleFunc("/recommendations/healthiest", s.handleHealthiest).Methods("POST")

	s.router.Use(s.corsMiddleware)
	s.router.Use(s.loggingMiddleware)
}

// Start starts the web server and blocks until it stops.
func (s *Server) Start() error {
	webLogger.Info().Str("port", s.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := map[string]interface{}{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "tokenpulse-engine",
			"version": "1.0.0",
		},
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleTokenScore returns the health score of a single token.
func (s *Server) handleTokenScore(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	score, err := s.scorer.ComputeTokenScore(r.Context(), address)
	if err != nil {
		webLogger.Error().Err(err).Str("token", address).Msg("Failed to compute token score")
		s.writeError(w, http.StatusInternalServerError, "Failed to compute token score")
		return
	}

	s.writeData(w, http.StatusOK, score)
}

// handleTokenPools returns every pool containing a token.
func (s *Server) handleTokenPools(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	pools, err := s.source.GetTokenPools(r.Context(), address)
	if err != nil {
		webLogger.Error().Err(err).Str("token", address).Msg("Failed to fetch token pools")
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch token pools")
		return
	}

	s.writeData(w, http.StatusOK, pools)
}

// handleTokenScores scores a batch of tokens.
func (s *Server) handleTokenScores(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tokens []string `json:"tokens"`
	}
	if !s.decodeBody(w, r, &body) {
		return
	}
	if !s.validTokenList(w, body.Tokens) {
		return
	}

	scores, err := s.scorer.ComputeTokenScores(r.Context(), body.Tokens)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to compute batch token scores")
		s.writeError(w, http.StatusInternalServerError, "Failed to compute token scores")
		return
	}

	s.writeData(w, http.StatusOK, scores)
}

// handlePortfolio returns a user's balances with derived metrics.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	userPortfolio, err := s.source.GetUserPortfolio(r.Context(), address)
	if err != nil {
		webLogger.Error().Err(err).Str("address", address).Msg("Failed to fetch portfolio")
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch portfolio")
		return
	}

	s.writeData(w, http.StatusOK, map[string]interface{}{
		"portfolio": userPortfolio,
		"metrics":   portfolio.ComputeMetrics(userPortfolio.Balances),
	})
}

// handleAnalyze runs the risk analyzer against an optional target
// allocation.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	var body struct {
		TargetAllocation types.Allocation `json:"targetAllocation"`
	}
	if !s.decodeBody(w, r, &body) {
		return
	}

	report, err := s.analyzer.AnalyzePortfolioRisk(r.Context(), address, body.TargetAllocation)
	if err != nil {
		webLogger.Error().Err(err).Str("address", address).Msg("Failed to analyze portfolio")
		s.writeError(w, http.StatusInternalServerError, "Failed to analyze portfolio")
		return
	}

	s.writeData(w, http.StatusOK, report)
}

// handleRebalance computes the trades moving a portfolio to the target
// allocation. The target is required here, unlike analyze.
func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	var body struct {
		TargetAllocation types.Allocation `json:"targetAllocation"`
	}
	if !s.decodeBody(w, r, &body) {
		return
	}
	if len(body.TargetAllocation) == 0 {
		s.writeError(w, http.StatusBadRequest, "targetAllocation is required")
		return
	}

	userPortfolio, err := s.source.GetUserPortfolio(r.Context(), address)
	if err != nil {
		webLogger.Error().Err(err).Str("address", address).Msg("Failed to fetch portfolio")
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch portfolio")
		return
	}

	if len(userPortfolio.Balances) == 0 {
		s.writeData(w, http.StatusOK, map[string]interface{}{
			"trades":  []types.Trade{},
			"message": "No portfolio to rebalance",
		})
		return
	}

	metrics := portfolio.ComputeMetrics(userPortfolio.Balances)
	current := portfolio.CurrentAllocation(userPortfolio.Balances)

	trades, err := planner.ComputeTrades(current, body.TargetAllocation, metrics.TotalValue)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidAllocation) {
			s.writeError(w, http.StatusBadRequest, "Invalid target allocation")
			return
		}
		webLogger.Error().Err(err).Str("address", address).Msg("Failed to compute rebalancing trades")
		s.writeError(w, http.StatusInternalServerError, "Failed to compute rebalancing trades")
		return
	}

	s.writeData(w, http.StatusOK, map[string]interface{}{
		"trades":            trades,
		"currentAllocation": current,
		"targetAllocation":  body.TargetAllocation,
		"totalValue":        metrics.TotalValue.String(),
	})
}

// handleRecommendations generates ranked trading recommendations.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tokens []string `json:"tokens"`
		Limit  int      `json:"limit"`
	}
	if !s.decodeBody(w, r, &body) {
		return
	}
	if !s.validTokenList(w, body.Tokens) {
		return
	}

	recs, err := s.recommender.Generate(r.Context(), body.Tokens, body.Limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to generate recommendations")
		s.writeError(w, http.StatusInternalServerError, "Failed to generate recommendations")
		return
	}

	s.writeData(w, http.StatusOK, recs)
}

// handleHealthiest returns the top tokens by health score.
func (s *Server) handleHealthiest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tokens []string `json:"tokens"`
		Limit  int      `json:"limit"`
	}
	if !s.decodeBody(w, r, &body) {
		return
	}
	if !s.validTokenList(w, body.Tokens) {
		return
	}

	limit := body.Limit
	if limit <= 0 {
		limit = 10
	}

	healthiest, err := s.recommender.Healthiest(r.Context(), body.Tokens, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to rank healthiest tokens")
		s.writeError(w, http.StatusInternalServerError, "Failed to rank healthiest tokens")
		return
	}

	s.writeData(w, http.StatusOK, healthiest)
}

// pathAddress extracts and validates the address path variable, writing a
// 400 on malformed input.
func (s *Server) pathAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := mux.Vars(r)["address"]
	if !addressPattern.MatchString(address) {
		s.writeError(w, http.StatusBadRequest, "Invalid address")
		return "", false
	}
	return address, true
}

// decodeBody decodes a JSON request body, writing a 400 on malformed input.
// An empty body decodes to the zero value.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// validTokenList rejects empty, oversized, or malformed token batches.
func (s *Server) validTokenList(w http.ResponseWriter, tokens []string) bool {
	if len(tokens) == 0 {
		s.writeError(w, http.StatusBadRequest, "tokens must be a non-empty array")
		return false
	}
	if len(tokens) > maxBatchTokens {
		s.writeError(w, http.StatusBadRequest, "too many tokens in one request")
		return false
	}
	for _, token := range tokens {
		if !addressPattern.MatchString(token) {
			s.writeError(w, http.StatusBadRequest, "Invalid token address: "+token)
			return false
		}
	}
	return true
}

// writeData writes a success envelope.
func (s *Server) writeData(w http.ResponseWriter, statusCode int, data interface{}) {
	s.writeJSON(w, statusCode, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeError writes an error envelope.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
