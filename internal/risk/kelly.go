package risk

import "github.com/shopspring/decimal"

// Sizing rejection reasons.
const (
	ReasonEdgeTooLow   = "edge_too_low"
	ReasonInvalidCost  = "invalid_cost"
	ReasonBelowMinimum = "below_minimum"
)

// SizeBreakdown exposes the full sizing calculation for logging and audits.
type SizeBreakdown struct {
	Edge            float64 `json:"edge"`
	Odds            float64 `json:"odds"`
	KellyFraction   float64 `json:"kelly_fraction"`
	FractionalKelly float64 `json:"fractional_kelly"`
	AdjustedKelly   float64 `json:"adjusted_kelly"`
	PositionSize    float64 `json:"position_size"`
	MaxPosition     float64 `json:"max_position"`
	Bankroll        float64 `json:"bankroll"`
	WasCapped       bool    `json:"was_capped"`
	Reason          string  `json:"reason,omitempty"`
}

// Edge computes win_probability × profit_pct − transaction_cost_pct exactly.
func Edge(profitPct, winProbability, transactionCostPct float64) float64 {
	edge := decimal.NewFromFloat(winProbability).
		Mul(decimal.NewFromFloat(profitPct)).
		Sub(decimal.NewFromFloat(transactionCostPct))
	f, _ := edge.Float64()
	return f
}

// KellyFraction is edge/odds floored at zero; zero when odds are not positive.
func KellyFraction(edge, odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	f, _ := decimal.NewFromFloat(edge).
		Div(decimal.NewFromFloat(odds)).
		Float64()
	if f < 0 {
		return 0
	}
	return f
}

// Size computes a bounded Kelly position. Pure: all adaptive state is read
// from the passed Parameters snapshot. The returned size is never negative
// and never exceeds bankroll or bankroll × max_position_pct.
func Size(bankroll, profitPct, cost, winProbability float64, p Parameters) (float64, SizeBreakdown) {
	edge := Edge(profitPct, winProbability, p.TransactionCostPct)
	bd := SizeBreakdown{Edge: edge, Bankroll: bankroll, FractionalKelly: p.FractionalKelly}

	if edge < p.MinEdgeThreshold {
		bd.Reason = ReasonEdgeTooLow
		return 0, bd
	}
	if cost <= 0 {
		bd.Reason = ReasonInvalidCost
		return 0, bd
	}

	costDec := decimal.NewFromFloat(cost)
	profit := costDec.Mul(decimal.NewFromFloat(profitPct))
	odds, _ := profit.Div(costDec).Float64()
	bd.Odds = odds

	kelly := KellyFraction(edge, odds)
	bd.KellyFraction = kelly

	adjusted, _ := decimal.NewFromFloat(kelly).
		Mul(decimal.NewFromFloat(p.FractionalKelly)).
		Float64()
	bd.AdjustedKelly = adjusted

	bankrollDec := decimal.NewFromFloat(bankroll)
	size := bankrollDec.Mul(decimal.NewFromFloat(adjusted))
	maxPosition := bankrollDec.Mul(decimal.NewFromFloat(p.MaxPositionPct))
	bd.MaxPosition, _ = maxPosition.Float64()

	if size.GreaterThan(maxPosition) {
		bd.WasCapped = true
		size = maxPosition
	}
	if size.LessThan(decimal.NewFromFloat(p.MinPositionSize)) {
		bd.PositionSize, _ = size.Float64()
		bd.Reason = ReasonBelowMinimum
		return 0, bd
	}
	if size.GreaterThan(bankrollDec) {
		size = bankrollDec
	}

	bd.PositionSize, _ = size.Float64()
	return bd.PositionSize, bd
}
