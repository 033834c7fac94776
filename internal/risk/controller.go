package risk

import (
	"sync"

	"polybot/internal/logger"

	"github.com/shopspring/decimal"
)

// Sample thresholds gating the adaptive updates.
const (
	minSamplesForKelly   = 10
	minSamplesForExits   = 5
	minSamplesForLimits  = 10
	emaAlpha             = 0.2
	edgeConfidenceScale  = 0.10
	takeProfitMultiplier = 1.2
	stopLossMultiplier   = 0.8
)

// Controller is the sole writer of the adaptive risk parameters. Record and
// the learned-parameter blends perform read-modify-write sequences, so all
// entry points serialize on one mutex.
type Controller struct {
	mu     sync.Mutex
	params Parameters
	ledger *Ledger
}

func NewController(params Parameters, windowSize int) *Controller {
	params.normalize()
	return &Controller{
		params: params,
		ledger: NewLedger(windowSize),
	}
}

// Record appends one trade outcome and re-derives every adaptive parameter
// that has enough samples. Updates below their sample threshold are skipped.
func (c *Controller) Record(outcome TradeOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ledger.Add(outcome)
	c.adjustFractionalKelly()
	c.updateDynamic(nil)

	logger.Debugf("trade recorded size=%.2f profit=%.2f success=%v window=%d",
		outcome.PositionSize, outcome.Profit, outcome.Success, c.ledger.Len())
}

// ApplyLearned blends externally learned exit parameters into the running
// values (50/50 per supplied field) on top of a regular dynamic update.
func (c *Controller) ApplyLearned(learned LearnedParameters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateDynamic(&learned)
}

// adjustFractionalKelly is a step function over the recent win rate, not a
// smoothed value: >=95% jumps to max, >=85% to the midpoint, else min.
func (c *Controller) adjustFractionalKelly() {
	if c.ledger.Len() < minSamplesForKelly {
		return
	}
	winRate := c.ledger.Metrics().WinRate
	prev := c.params.FractionalKelly
	switch {
	case winRate >= 0.95:
		c.params.FractionalKelly = c.params.MaxFractionalKelly
	case winRate >= 0.85:
		c.params.FractionalKelly = (c.params.MinFractionalKelly + c.params.MaxFractionalKelly) / 2
	default:
		c.params.FractionalKelly = c.params.MinFractionalKelly
	}
	if c.params.FractionalKelly != prev {
		logger.Infof("fractional kelly adjusted %.2f -> %.2f (win rate %.1f%%)",
			prev, c.params.FractionalKelly, winRate*100)
	}
}

// updateDynamic must be called with the lock held.
func (c *Controller) updateDynamic(learned *LearnedParameters) {
	metrics := c.ledger.Metrics()

	if c.ledger.Len() >= minSamplesForExits {
		c.blendExitTargets()
	}
	if learned != nil {
		if learned.TakeProfitPct > 0 {
			c.params.TakeProfitPct = blendHalf(c.params.TakeProfitPct, learned.TakeProfitPct)
		}
		if learned.StopLossPct > 0 {
			c.params.StopLossPct = blendHalf(c.params.StopLossPct, learned.StopLossPct)
		}
	}

	if metrics.TotalTrades >= minSamplesForLimits {
		c.params.DailyTradeLimit = dailyLimitFor(metrics.WinRate)
		c.params.CircuitBreakerThreshold = circuitBreakerFor(metrics.AvgEdge / edgeConfidenceScale)
	}

	c.params.TakeProfitPct = clamp(c.params.TakeProfitPct, 0.01, 0.10)
	c.params.StopLossPct = clamp(c.params.StopLossPct, 0.01, 0.05)
}

// blendExitTargets folds the average realized win/loss magnitudes into the
// exit pair via exponential smoothing (new = α·candidate + (1−α)·old).
func (c *Controller) blendExitTargets() {
	var winSum, lossSum decimal.Decimal
	winCount, lossCount := 0, 0
	for _, t := range c.ledger.Outcomes() {
		if t.PositionSize <= 0 {
			continue
		}
		ratio := decimal.NewFromFloat(t.Profit).
			Div(decimal.NewFromFloat(t.PositionSize)).
			Abs()
		if t.Success {
			winSum = winSum.Add(ratio)
			winCount++
		} else {
			lossSum = lossSum.Add(ratio)
			lossCount++
		}
	}
	if winCount > 0 {
		avgWin := winSum.Div(decimal.NewFromInt(int64(winCount)))
		candidate := avgWin.Mul(decimal.NewFromFloat(takeProfitMultiplier))
		c.params.TakeProfitPct = ema(c.params.TakeProfitPct, candidate)
	}
	if lossCount > 0 {
		avgLoss := lossSum.Div(decimal.NewFromInt(int64(lossCount)))
		candidate := avgLoss.Mul(decimal.NewFromFloat(stopLossMultiplier))
		c.params.StopLossPct = ema(c.params.StopLossPct, candidate)
	}
}

func ema(old float64, candidate decimal.Decimal) float64 {
	alpha := decimal.NewFromFloat(emaAlpha)
	blended := alpha.Mul(candidate).
		Add(decimal.NewFromFloat(1 - emaAlpha).Mul(decimal.NewFromFloat(old)))
	f, _ := blended.Float64()
	return f
}

func blendHalf(current, learned float64) float64 {
	f, _ := decimal.NewFromFloat(current).
		Add(decimal.NewFromFloat(learned)).
		Div(decimal.NewFromInt(2)).
		Float64()
	return f
}

func dailyLimitFor(winRate float64) int {
	switch {
	case winRate >= 0.80:
		return 200
	case winRate >= 0.60:
		return 150
	case winRate >= 0.40:
		return 100
	default:
		return 50
	}
}

func circuitBreakerFor(confidence float64) int {
	switch {
	case confidence >= 0.80:
		return 7
	case confidence >= 0.60:
		return 5
	case confidence >= 0.40:
		return 4
	default:
		return 3
	}
}

// Parameters returns a snapshot for sizing; callers never mutate it.
func (c *Controller) Parameters() Parameters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// DynamicThresholds returns the exit/limit snapshot for trading strategies.
func (c *Controller) DynamicThresholds() DynamicThresholds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DynamicThresholds{
		TakeProfitPct:           c.params.TakeProfitPct,
		StopLossPct:             c.params.StopLossPct,
		DailyTradeLimit:         c.params.DailyTradeLimit,
		CircuitBreakerThreshold: c.params.CircuitBreakerThreshold,
	}
}

// Metrics exposes the ledger statistics.
func (c *Controller) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Metrics()
}

// Outcomes returns a copy of the ledger window, oldest first.
func (c *Controller) Outcomes() []TradeOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Outcomes()
}
