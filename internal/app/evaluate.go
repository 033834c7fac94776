package app

import (
	"context"

	"polybot/internal/consensus"
	"polybot/internal/logger"
	"polybot/internal/risk"
)

// Opportunity is one tradeable situation submitted for evaluation. Cost is
// the entry cost in bankroll units; ProfitPct and WinProbability are
// fractions (0.05 = 5%). TransactionCosts and EstimatedSlippage are absolute
// amounts in the same units as Cost.
type Opportunity struct {
	Asset             string
	Kind              string
	Market            consensus.MarketContext
	Portfolio         consensus.PortfolioState
	Cost              float64
	ProfitPct         float64
	WinProbability    float64
	TransactionCosts  float64
	EstimatedSlippage float64
}

// Evaluation is the full audit trail of one pipeline pass. Approved is true
// only when every gate passed and a positive position size came out.
type Evaluation struct {
	Decision     consensus.Decision         `json:"decision"`
	Approved     bool                       `json:"approved"`
	Reason       string                     `json:"reason,omitempty"`
	CostBenefit  *risk.CostBenefitBreakdown `json:"cost_benefit,omitempty"`
	Sizing       *risk.SizeBreakdown        `json:"sizing,omitempty"`
	PositionSize float64                    `json:"position_size"`
	Exits        *risk.VolatilityAdjustment `json:"exits,omitempty"`
}

// Evaluate runs the full decision pipeline for one opportunity: consensus
// vote, execution gates, cost-benefit check, Kelly sizing and
// volatility-adjusted exits. The first failing gate short-circuits.
func (a *App) Evaluate(ctx context.Context, opp Opportunity) Evaluation {
	decision := a.engine.Decide(ctx, consensus.Request{
		Asset:     opp.Asset,
		Kind:      opp.Kind,
		Market:    opp.Market,
		Portfolio: opp.Portfolio,
	})
	ev := Evaluation{Decision: decision}

	if !a.engine.ShouldExecute(decision) {
		ev.Reason = "consensus_blocked"
		return ev
	}

	expectedProfit := opp.Cost * opp.ProfitPct
	ok, cb := risk.EvaluateCostBenefit(expectedProfit, opp.TransactionCosts, opp.EstimatedSlippage)
	ev.CostBenefit = &cb
	if !ok {
		ev.Reason = cb.Reason
		logger.Infof("trade blocked by cost-benefit asset=%s reason=%s profit=%.2f costs=%.2f",
			opp.Asset, cb.Reason, expectedProfit, cb.TotalCosts)
		return ev
	}

	params := a.controller.Parameters()
	size, bd := risk.Size(opp.Portfolio.Bankroll, opp.ProfitPct, opp.Cost, opp.WinProbability, params)
	ev.Sizing = &bd
	if size <= 0 {
		ev.Reason = bd.Reason
		logger.Infof("trade blocked by sizing asset=%s reason=%s edge=%.4f",
			opp.Asset, bd.Reason, bd.Edge)
		return ev
	}

	exits := risk.AdjustForVolatility(opp.Market.Volatility, params.TakeProfitPct, params.StopLossPct)
	ev.Exits = &exits
	ev.PositionSize = size
	ev.Approved = true
	logger.Infof("trade approved asset=%s action=%s size=%.2f tp=%.2f%% sl=%.2f%% regime=%s",
		opp.Asset, decision.Action, size, exits.TakeProfitPct*100, exits.StopLossPct*100, exits.Regime)
	return ev
}
