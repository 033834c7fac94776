package risk

import "github.com/shopspring/decimal"

// Cost-benefit rejection reasons, checked in order; first match wins.
const (
	ReasonNoProfitExpected     = "no_profit_expected"
	ReasonTransactionCostsHigh = "transaction_costs_too_high"
	ReasonSlippageTooHigh      = "slippage_too_high"
	ReasonNetProfitNegative    = "net_profit_negative"
)

// Cost ceilings as a percentage of expected profit.
const (
	maxTransactionCostPct = 50.0
	maxSlippagePct        = 25.0
)

// CostBenefitBreakdown reports the full cost decomposition of one check.
type CostBenefitBreakdown struct {
	ExpectedProfit     float64 `json:"expected_profit"`
	TransactionCosts   float64 `json:"transaction_costs"`
	TransactionCostPct float64 `json:"transaction_cost_pct"`
	EstimatedSlippage  float64 `json:"estimated_slippage"`
	SlippagePct        float64 `json:"slippage_pct"`
	TotalCosts         float64 `json:"total_costs"`
	NetProfit          float64 `json:"net_profit"`
	NetProfitPct       float64 `json:"net_profit_pct"`
	Reason             string  `json:"reason,omitempty"`
}

// EvaluateCostBenefit rejects trades whose costs eat the expected profit.
// Thresholds are strict: transaction costs at exactly 50% of profit and
// slippage at exactly 25% both pass.
func EvaluateCostBenefit(expectedProfit, transactionCosts, estimatedSlippage float64) (bool, CostBenefitBreakdown) {
	bd := CostBenefitBreakdown{
		ExpectedProfit:    expectedProfit,
		TransactionCosts:  transactionCosts,
		EstimatedSlippage: estimatedSlippage,
	}
	if expectedProfit <= 0 {
		bd.Reason = ReasonNoProfitExpected
		return false, bd
	}

	profit := decimal.NewFromFloat(expectedProfit)
	hundred := decimal.NewFromInt(100)

	costPct := decimal.NewFromFloat(transactionCosts).Div(profit).Mul(hundred)
	bd.TransactionCostPct, _ = costPct.Float64()
	if costPct.GreaterThan(decimal.NewFromFloat(maxTransactionCostPct)) {
		bd.Reason = ReasonTransactionCostsHigh
		return false, bd
	}

	slipPct := decimal.NewFromFloat(estimatedSlippage).Div(profit).Mul(hundred)
	bd.SlippagePct, _ = slipPct.Float64()
	if slipPct.GreaterThan(decimal.NewFromFloat(maxSlippagePct)) {
		bd.Reason = ReasonSlippageTooHigh
		return false, bd
	}

	totalCosts := decimal.NewFromFloat(transactionCosts).Add(decimal.NewFromFloat(estimatedSlippage))
	net := profit.Sub(totalCosts)
	bd.TotalCosts, _ = totalCosts.Float64()
	bd.NetProfit, _ = net.Float64()
	if !net.IsPositive() {
		bd.Reason = ReasonNetProfitNegative
		return false, bd
	}
	bd.NetProfitPct, _ = net.Div(profit).Mul(hundred).Float64()
	return true, bd
}
