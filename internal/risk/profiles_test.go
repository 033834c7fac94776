package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupProfile(t *testing.T) {
	t.Run("known profiles resolve", func(t *testing.T) {
		p, err := LookupProfile("balanced")
		require.NoError(t, err)
		assert.InDelta(t, 0.25, p.MinFractionalKelly, 1e-12)
		assert.InDelta(t, 0.50, p.MaxFractionalKelly, 1e-12)
		assert.InDelta(t, 0.025, p.MinEdgeThreshold, 1e-12)
	})

	t.Run("lookup is case insensitive", func(t *testing.T) {
		_, err := LookupProfile("  Conservative ")
		assert.NoError(t, err)
	})

	t.Run("unknown profile names the alternatives", func(t *testing.T) {
		_, err := LookupProfile("yolo")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "balanced")
	})
}

func TestProfileNames(t *testing.T) {
	assert.Equal(t, []string{"aggressive", "balanced", "conservative"}, ProfileNames())
}

func TestProfileParameters(t *testing.T) {
	p, err := LookupProfile("conservative")
	require.NoError(t, err)
	params := p.Parameters()
	assert.InDelta(t, 0.10, params.MinFractionalKelly, 1e-12)
	assert.InDelta(t, 0.175, params.FractionalKelly, 1e-12)
	assert.Equal(t, baseDailyLimit, params.DailyTradeLimit)
	assert.Equal(t, baseCircuitBreaker, params.CircuitBreakerThreshold)
	assert.InDelta(t, baseTakeProfitPct, params.TakeProfitPct, 1e-12)
}
