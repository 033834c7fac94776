package learned

import (
	"os"
	"path/filepath"
	"testing"

	"polybot/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLearned(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		params, err := parseLearned([]byte(`{"take_profit_pct": 0.03, "stop_loss_pct": 0.015}`))
		require.NoError(t, err)
		assert.InDelta(t, 0.03, params.TakeProfitPct, 1e-12)
		assert.InDelta(t, 0.015, params.StopLossPct, 1e-12)
	})

	t.Run("partial payload keeps the other field absent", func(t *testing.T) {
		params, err := parseLearned([]byte(`{"take_profit_pct": 0.03}`))
		require.NoError(t, err)
		assert.InDelta(t, 0.03, params.TakeProfitPct, 1e-12)
		assert.Zero(t, params.StopLossPct)
	})

	t.Run("invalid json is rejected", func(t *testing.T) {
		_, err := parseLearned([]byte(`not json`))
		assert.Error(t, err)
	})

	t.Run("no usable fields is rejected", func(t *testing.T) {
		_, err := parseLearned([]byte(`{"something_else": 1}`))
		assert.Error(t, err)
	})

	t.Run("out of range values are rejected", func(t *testing.T) {
		_, err := parseLearned([]byte(`{"take_profit_pct": 1.5}`))
		assert.Error(t, err)
	})
}

func TestNewRegistry(t *testing.T) {
	t.Run("empty path fails", func(t *testing.T) {
		_, err := NewRegistry("")
		assert.Error(t, err)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		r, err := NewRegistry(filepath.Join(t.TempDir(), "learned.json"))
		require.NoError(t, err)
		_, loaded := r.Current()
		assert.False(t, loaded)
	})

	t.Run("existing file loads immediately", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "learned.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"take_profit_pct": 0.04, "stop_loss_pct": 0.02}`), 0o644))

		r, err := NewRegistry(path)
		require.NoError(t, err)
		current, loaded := r.Current()
		assert.True(t, loaded)
		assert.InDelta(t, 0.04, current.TakeProfitPct, 1e-12)
	})

	t.Run("corrupt file fails construction", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "learned.json")
		require.NoError(t, os.WriteFile(path, []byte(`garbage`), 0o644))
		_, err := NewRegistry(path)
		assert.Error(t, err)
	})
}

func TestRegistryListeners(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learned.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"take_profit_pct": 0.04}`), 0o644))

	r, err := NewRegistry(path)
	require.NoError(t, err)

	var got []risk.LearnedParameters
	r.OnChange(func(p risk.LearnedParameters) { got = append(got, p) })

	require.NoError(t, os.WriteFile(path, []byte(`{"take_profit_pct": 0.05}`), 0o644))
	require.NoError(t, r.reload())

	require.Len(t, got, 1)
	assert.InDelta(t, 0.05, got[0].TakeProfitPct, 1e-12)
	current, _ := r.Current()
	assert.InDelta(t, 0.05, current.TakeProfitPct, 1e-12)
}
