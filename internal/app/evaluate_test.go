package app

import (
	"context"
	"path/filepath"
	"testing"

	"polybot/internal/config"
	"polybot/internal/consensus"
	"polybot/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{LogLevel: "error", HTTPAddr: ":0"},
		Consensus: config.ConsensusConfig{
			MinConsensus:         15,
			MinConfidence:        1,
			SourceTimeoutSeconds: 5,
			Weights:              map[string]float64{"policy": 1.0},
		},
		Risk: config.RiskConfig{
			Profile:            "balanced",
			MinFractionalKelly: 0.25,
			MaxFractionalKelly: 0.50,
			PerformanceWindow:  20,
			TransactionCostPct: 0.02,
			MinEdgeThreshold:   0.025,
			MaxPositionPct:     0.20,
			MinPositionSize:    0.10,
		},
		Store: config.StoreConfig{Path: filepath.Join(t.TempDir(), "outcomes.db")},
	}
}

func buildTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func bullishOpportunity(bankroll float64) Opportunity {
	return Opportunity{
		Asset: "BTC",
		Kind:  "latency",
		Market: consensus.MarketContext{
			Price:      0.65,
			Trend:      "bullish",
			Liquidity:  5000,
			Volatility: 0.02,
		},
		Portfolio:         consensus.PortfolioState{Bankroll: bankroll},
		Cost:              10,
		ProfitPct:         0.05,
		WinProbability:    0.995,
		TransactionCosts:  0.01,
		EstimatedSlippage: 0.01,
	}
}

func TestAppEvaluate(t *testing.T) {
	t.Run("full pipeline approves a clean opportunity", func(t *testing.T) {
		a := buildTestApp(t, testConfig(t))
		ev := a.Evaluate(context.Background(), bullishOpportunity(100))

		assert.True(t, ev.Approved)
		assert.Equal(t, consensus.ActionLong, ev.Decision.Action)
		require.NotNil(t, ev.Sizing)
		assert.InDelta(t, 0.02975, ev.Sizing.Edge, 1e-9)
		assert.InDelta(t, 20.0, ev.PositionSize, 1e-6)
		require.NotNil(t, ev.Exits)
		assert.Equal(t, risk.RegimeNormal, ev.Exits.Regime)
	})

	t.Run("an abstain decision blocks before sizing", func(t *testing.T) {
		a := buildTestApp(t, testConfig(t))
		opp := bullishOpportunity(100)
		opp.Market.Trend = "sideways"

		ev := a.Evaluate(context.Background(), opp)
		assert.False(t, ev.Approved)
		assert.Equal(t, "consensus_blocked", ev.Reason)
		assert.Nil(t, ev.Sizing)
	})

	t.Run("excessive costs block after consensus", func(t *testing.T) {
		a := buildTestApp(t, testConfig(t))
		opp := bullishOpportunity(100)
		opp.TransactionCosts = 0.30 // 60% of the 0.50 expected profit

		ev := a.Evaluate(context.Background(), opp)
		assert.False(t, ev.Approved)
		assert.Equal(t, risk.ReasonTransactionCostsHigh, ev.Reason)
		assert.Nil(t, ev.Sizing)
	})

	t.Run("a thin edge blocks at sizing", func(t *testing.T) {
		a := buildTestApp(t, testConfig(t))
		opp := bullishOpportunity(100)
		opp.ProfitPct = 0.025

		ev := a.Evaluate(context.Background(), opp)
		assert.False(t, ev.Approved)
		assert.Equal(t, risk.ReasonEdgeTooLow, ev.Reason)
	})
}

func TestAppRecordOutcome(t *testing.T) {
	a := buildTestApp(t, testConfig(t))
	ctx := context.Background()

	require.NoError(t, a.RecordOutcome(ctx, "latency", "BTC", risk.TradeOutcome{
		PositionSize: 10,
		Profit:       0.5,
		Success:      true,
		Edge:         0.03,
	}))

	assert.Equal(t, 1, a.Controller().Metrics().TotalTrades)
	outcomes, err := a.Store().RecentOutcomes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "BTC", outcomes[0].Asset)
}

func TestBuilderValidation(t *testing.T) {
	t.Run("weight without a source fails", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Consensus.Weights = map[string]float64{"astrology": 1.0}
		_, err := NewApp(cfg)
		assert.Error(t, err)
	})

	t.Run("reasoning weight without a client is skipped", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Consensus.Weights = map[string]float64{"policy": 0.6, "reasoning": 0.4}
		a := buildTestApp(t, cfg)

		ev := a.Evaluate(context.Background(), bullishOpportunity(100))
		// Only the policy source votes; its weight still normalizes cleanly.
		assert.Len(t, ev.Decision.Votes, 1)
	})

	t.Run("nil config fails", func(t *testing.T) {
		_, err := NewApp(nil)
		assert.Error(t, err)
	})
}
