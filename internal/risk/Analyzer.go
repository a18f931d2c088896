/*

This file contains the portfolio risk analyzer. It fetches a user's indexed
balances, measures drift against an optional target allocation, summarizes
concentration, and raises ordered risk flags with suggestions.

*/

package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tokenpulse/engine/internal/indexer"
	"github.com/tokenpulse/engine/internal/logger"
	"github.com/tokenpulse/engine/internal/portfolio"
	"github.com/tokenpulse/engine/internal/scoring"
	"github.com/tokenpulse/engine/internal/types"
)

var ErrAddressRequired = errors.New("portfolio address is required")

// Thresholds above which the analyzer raises its flags.
const (
	highDriftThreshold     = 0.15
	concentrationThreshold = 0.5
	herfindahlThreshold    = 0.3
	lowHealthThreshold     = 40
)

// Analyzer computes risk reports for user portfolios.
type Analyzer struct {
	source indexer.Source
	scorer *scoring.Scorer
	log    zerolog.Logger
}

// NewAnalyzer creates an Analyzer backed by the given data source and token
// scorer.
func NewAnalyzer(source indexer.Source, scorer *scoring.Scorer) (*Analyzer, error) {
	if source == nil {
		return nil, errors.New("data source is required")
	}
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	return &Analyzer{
		source: source,
		scorer: scorer,
		log:    logger.GetForComponent("risk_analyzer"),
	}, nil
}

// AnalyzePortfolioRisk builds a risk report for the portfolio held by
// address, measured against an optional target allocation. An empty or
// zero-value portfolio short-circuits with a single flag; otherwise every
// applicable flag is raised in a fixed order.
func (a *Analyzer) AnalyzePortfolioRisk(ctx context.Context, address string, target types.Allocation) (types.RiskReport, error) {
	if address == "" {
		return types.RiskReport{}, ErrAddressRequired
	}

	userPortfolio, err := a.source.GetUserPortfolio(ctx, address)
	if err != nil {
		return types.RiskReport{}, errors.Join(errors.New("failed to fetch portfolio"), err)
	}

	if len(userPortfolio.Balances) == 0 {
		return types.RiskReport{
			Flags:       []types.RiskFlag{types.FlagEmptyPortfolio},
			Suggestions: []string{"Fund your account to start trading"},
			Timestamp:   time.Now().UTC(),
		}, nil
	}

	metrics := portfolio.ComputeMetrics(userPortfolio.Balances)
	if !metrics.TotalValue.IsPositive() {
		return types.RiskReport{
			Flags:       []types.RiskFlag{types.FlagZeroValue},
			Suggestions: []string{"Add liquidity to your portfolio"},
			Timestamp:   time.Now().UTC(),
		}, nil
	}

	current := portfolio.CurrentAllocation(userPortfolio.Balances)
	drift := Drift(current, target)
	concentration := ComputeConcentration(current)

	report := types.RiskReport{
		Drift:             drift,
		Concentration:     concentration,
		CurrentAllocation: current,
		TargetAllocation:  target,
		Flags:             []types.RiskFlag{},
		Suggestions:       []string{},
		TotalValue:        metrics.TotalValue.String(),
		Timestamp:         time.Now().UTC(),
	}

	if drift > highDriftThreshold {
		report.Flags = append(report.Flags, types.FlagHighDrift)
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("Portfolio has drifted %.1f%% from target allocation", drift*100))
	}

	if concentration.MaxWeight > concentrationThreshold {
		report.Flags = append(report.Flags, types.FlagConcentrationRisk)
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("%s represents %.1f%% of portfolio - consider diversifying",
				concentration.MaxToken, concentration.MaxWeight*100))
	}

	if concentration.Herfindahl > herfindahlThreshold {
		report.Flags = append(report.Flags, types.FlagUnderDiversified)
		report.Suggestions = append(report.Suggestions, "Portfolio is concentrated in few assets")
	}

	tokenAddresses := make([]string, 0, len(userPortfolio.Balances))
	for _, b := range userPortfolio.Balances {
		tokenAddresses = append(tokenAddresses, b.TokenAddress)
	}

	scores, err := a.scorer.ComputeTokenScores(ctx, tokenAddresses)
	if err != nil {
		return types.RiskReport{}, errors.Join(errors.New("failed to score holdings"), err)
	}
	report.TokenScores = scores

	// Failed tokens score 0 and are flagged too: an unscorable holding is
	// not a healthy holding.
	for _, score := range scores {
		if score.ScoreValue() < lowHealthThreshold {
			report.Flags = append(report.Flags, types.FlagLowHealthHolding)
			report.Suggestions = append(report.Suggestions,
				fmt.Sprintf("Consider reducing %s (health score: %d)", score.Address, score.ScoreValue()))
		}
	}

	a.log.Debug().
		Str("address", address).
		Float64("drift", drift).
		Float64("maxWeight", concentration.MaxWeight).
		Float64("herfindahl", concentration.Herfindahl).
		Int("flagCount", len(report.Flags)).
		Msg("Portfolio risk analyzed")

	return report, nil
}
