package risk

// Parameters is the process-lifetime adaptive risk state. Only the Controller
// mutates it; everything else reads snapshots.
type Parameters struct {
	MinFractionalKelly float64 `json:"min_fractional_kelly"`
	MaxFractionalKelly float64 `json:"max_fractional_kelly"`
	FractionalKelly    float64 `json:"fractional_kelly"`

	TakeProfitPct           float64 `json:"take_profit_pct"`
	StopLossPct             float64 `json:"stop_loss_pct"`
	DailyTradeLimit         int     `json:"daily_trade_limit"`
	CircuitBreakerThreshold int     `json:"circuit_breaker_threshold"`

	MinEdgeThreshold   float64 `json:"min_edge_threshold"`
	TransactionCostPct float64 `json:"transaction_cost_pct"`
	MaxPositionPct     float64 `json:"max_position_pct"`
	MinPositionSize    float64 `json:"min_position_size"`
}

// DynamicThresholds is the read snapshot handed to trading strategies.
type DynamicThresholds struct {
	TakeProfitPct           float64 `json:"take_profit_pct"`
	StopLossPct             float64 `json:"stop_loss_pct"`
	DailyTradeLimit         int     `json:"daily_trade_limit"`
	CircuitBreakerThreshold int     `json:"circuit_breaker_threshold"`
}

// LearnedParameters carries externally learned take-profit/stop-loss values.
// A field <= 0 is treated as absent.
type LearnedParameters struct {
	TakeProfitPct float64 `json:"take_profit_pct"`
	StopLossPct   float64 `json:"stop_loss_pct"`
}

// baseline dynamic thresholds before any adaptation kicks in.
const (
	baseTakeProfitPct  = 0.02
	baseStopLossPct    = 0.02
	baseDailyLimit     = 100
	baseCircuitBreaker = 5
)

func (p *Parameters) normalize() {
	if p.MinFractionalKelly <= 0 {
		p.MinFractionalKelly = 0.25
	}
	if p.MaxFractionalKelly <= 0 {
		p.MaxFractionalKelly = 0.50
	}
	if p.FractionalKelly <= 0 {
		p.FractionalKelly = (p.MinFractionalKelly + p.MaxFractionalKelly) / 2
	}
	if p.TakeProfitPct <= 0 {
		p.TakeProfitPct = baseTakeProfitPct
	}
	if p.StopLossPct <= 0 {
		p.StopLossPct = baseStopLossPct
	}
	if p.DailyTradeLimit <= 0 {
		p.DailyTradeLimit = baseDailyLimit
	}
	if p.CircuitBreakerThreshold <= 0 {
		p.CircuitBreakerThreshold = baseCircuitBreaker
	}
	if p.MaxPositionPct <= 0 {
		p.MaxPositionPct = 0.20
	}
	if p.MinPositionSize <= 0 {
		p.MinPositionSize = 0.10
	}
}
