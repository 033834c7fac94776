package risk

// Volatility regimes.
const (
	RegimeHigh   = "HIGH"
	RegimeLow    = "LOW"
	RegimeNormal = "NORMAL"
)

const (
	highVolatility = 0.05
	lowVolatility  = 0.01
)

// VolatilityAdjustment is the recomputed exit pair for the current regime.
type VolatilityAdjustment struct {
	TakeProfitPct float64 `json:"take_profit_pct"`
	StopLossPct   float64 `json:"stop_loss_pct"`
	Volatility    float64 `json:"volatility"`
	Regime        string  `json:"regime"`
	TPMultiplier  float64 `json:"tp_multiplier"`
	SLMultiplier  float64 `json:"sl_multiplier"`
}

// AdjustForVolatility rescales take-profit and stop-loss for the current
// volatility regime. Stateless: callers pass the base pair in.
//
// High volatility widens the stop (up to 2.5×) and tightens the target
// (down to 0.5×); low volatility does the opposite. The final pair is
// clamped to tp ∈ [0.5%,15%], sl ∈ [0.5%,10%].
func AdjustForVolatility(volatility, baseTakeProfit, baseStopLoss float64) VolatilityAdjustment {
	var tpMult, slMult float64
	var regime string

	switch {
	case volatility > highVolatility:
		factor := volatility / highVolatility
		if factor > 2.5 {
			factor = 2.5
		}
		slMult = 1.5 + (factor-1.0)*0.5
		if slMult > 2.5 {
			slMult = 2.5
		}
		tpMult = 0.8 - (factor-1.0)*0.15
		if tpMult < 0.5 {
			tpMult = 0.5
		}
		regime = RegimeHigh
	case volatility < lowVolatility:
		factor := volatility / lowVolatility
		slMult = 0.7 + factor*0.2
		tpMult = 1.8 - factor*0.6
		regime = RegimeLow
	default:
		slMult = 1.0
		tpMult = 1.0
		regime = RegimeNormal
	}

	tp := clamp(baseTakeProfit*tpMult, 0.005, 0.15)
	sl := clamp(baseStopLoss*slMult, 0.005, 0.10)

	return VolatilityAdjustment{
		TakeProfitPct: tp,
		StopLossPct:   sl,
		Volatility:    volatility,
		Regime:        regime,
		TPMultiplier:  tpMult,
		SLMultiplier:  slMult,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
