package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestController() *Controller {
	return NewController(balancedParams(), 20)
}

func recordN(c *Controller, n int, outcome TradeOutcome) {
	for i := 0; i < n; i++ {
		c.Record(outcome)
	}
}

func TestControllerFractionalKellySteps(t *testing.T) {
	t.Run("starts at the midpoint", func(t *testing.T) {
		c := newTestController()
		assert.InDelta(t, 0.375, c.Parameters().FractionalKelly, 1e-12)
	})

	t.Run("stays put below the sample threshold", func(t *testing.T) {
		c := newTestController()
		recordN(c, 9, TradeOutcome{PositionSize: 10, Profit: 0.5, Success: true, Edge: 0.03})
		assert.InDelta(t, 0.375, c.Parameters().FractionalKelly, 1e-12)
	})

	t.Run("a hot streak jumps to the maximum", func(t *testing.T) {
		c := newTestController()
		recordN(c, 20, TradeOutcome{PositionSize: 10, Profit: 0.5, Success: true, Edge: 0.03})
		assert.InDelta(t, 0.50, c.Parameters().FractionalKelly, 1e-12)
	})

	t.Run("a mediocre record drops to the minimum", func(t *testing.T) {
		c := newTestController()
		recordN(c, 6, TradeOutcome{PositionSize: 10, Profit: 0.5, Success: true, Edge: 0.03})
		recordN(c, 6, TradeOutcome{PositionSize: 10, Profit: -0.4, Success: false, Edge: 0.03})
		assert.InDelta(t, 0.25, c.Parameters().FractionalKelly, 1e-12)
	})

	t.Run("ninety percent lands on the midpoint", func(t *testing.T) {
		c := newTestController()
		recordN(c, 18, TradeOutcome{PositionSize: 10, Profit: 0.5, Success: true, Edge: 0.03})
		recordN(c, 2, TradeOutcome{PositionSize: 10, Profit: -0.4, Success: false, Edge: 0.03})
		assert.InDelta(t, 0.375, c.Parameters().FractionalKelly, 1e-12)
	})
}

func TestControllerDynamicLimits(t *testing.T) {
	t.Run("limit tables by win rate and edge", func(t *testing.T) {
		c := newTestController()
		recordN(c, 20, TradeOutcome{PositionSize: 10, Profit: 0.5, Success: true, Edge: 0.03})

		dt := c.DynamicThresholds()
		assert.Equal(t, 200, dt.DailyTradeLimit)
		// avg edge 0.03 scales to confidence 0.3
		assert.Equal(t, 3, dt.CircuitBreakerThreshold)
	})

	t.Run("strong edge raises the circuit breaker", func(t *testing.T) {
		c := newTestController()
		recordN(c, 20, TradeOutcome{PositionSize: 10, Profit: 0.5, Success: true, Edge: 0.09})
		assert.Equal(t, 7, c.DynamicThresholds().CircuitBreakerThreshold)
	})

	t.Run("defaults hold below the sample threshold", func(t *testing.T) {
		c := newTestController()
		recordN(c, 9, TradeOutcome{PositionSize: 10, Profit: 0.5, Success: true, Edge: 0.09})
		dt := c.DynamicThresholds()
		assert.Equal(t, baseDailyLimit, dt.DailyTradeLimit)
		assert.Equal(t, baseCircuitBreaker, dt.CircuitBreakerThreshold)
	})
}

func TestDailyLimitTable(t *testing.T) {
	assert.Equal(t, 200, dailyLimitFor(0.80))
	assert.Equal(t, 150, dailyLimitFor(0.60))
	assert.Equal(t, 100, dailyLimitFor(0.40))
	assert.Equal(t, 50, dailyLimitFor(0.39))
}

func TestCircuitBreakerTable(t *testing.T) {
	assert.Equal(t, 7, circuitBreakerFor(0.80))
	assert.Equal(t, 5, circuitBreakerFor(0.60))
	assert.Equal(t, 4, circuitBreakerFor(0.40))
	assert.Equal(t, 3, circuitBreakerFor(0.39))
}

func TestControllerExitBlending(t *testing.T) {
	t.Run("winning trades pull take profit toward realized gains", func(t *testing.T) {
		c := newTestController()
		// 5% realized gain per trade, candidate 6% after the multiplier.
		recordN(c, 20, TradeOutcome{PositionSize: 10, Profit: 0.5, Success: true, Edge: 0.03})
		params := c.Parameters()
		assert.Greater(t, params.TakeProfitPct, 0.05)
		assert.LessOrEqual(t, params.TakeProfitPct, 0.06+1e-9)
		// No losses recorded, the stop stays at the baseline.
		assert.InDelta(t, baseStopLossPct, params.StopLossPct, 1e-12)
	})

	t.Run("exits stay inside the hard clamps", func(t *testing.T) {
		c := newTestController()
		recordN(c, 20, TradeOutcome{PositionSize: 10, Profit: 5.0, Success: true, Edge: 0.03})
		params := c.Parameters()
		assert.LessOrEqual(t, params.TakeProfitPct, 0.10)
		assert.GreaterOrEqual(t, params.TakeProfitPct, 0.01)
		assert.LessOrEqual(t, params.StopLossPct, 0.05)
		assert.GreaterOrEqual(t, params.StopLossPct, 0.01)
	})
}

func TestControllerApplyLearned(t *testing.T) {
	t.Run("learned values blend fifty fifty", func(t *testing.T) {
		c := newTestController()
		c.ApplyLearned(LearnedParameters{TakeProfitPct: 0.04, StopLossPct: 0.03})
		dt := c.DynamicThresholds()
		assert.InDelta(t, 0.03, dt.TakeProfitPct, 1e-12)
		assert.InDelta(t, 0.025, dt.StopLossPct, 1e-12)
	})

	t.Run("absent fields leave the current value alone", func(t *testing.T) {
		c := newTestController()
		c.ApplyLearned(LearnedParameters{TakeProfitPct: 0.04})
		dt := c.DynamicThresholds()
		assert.InDelta(t, 0.03, dt.TakeProfitPct, 1e-12)
		assert.InDelta(t, baseStopLossPct, dt.StopLossPct, 1e-12)
	})

	t.Run("blended values are clamped", func(t *testing.T) {
		c := newTestController()
		c.ApplyLearned(LearnedParameters{TakeProfitPct: 0.90, StopLossPct: 0.90})
		dt := c.DynamicThresholds()
		assert.InDelta(t, 0.10, dt.TakeProfitPct, 1e-12)
		assert.InDelta(t, 0.05, dt.StopLossPct, 1e-12)
	})
}
