package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
consensus:
  weights:
    technical: 0.35
    policy: 0.25
    historical: 0.40
`

func TestLoad(t *testing.T) {
	t.Run("minimal config gets full defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, minimalConfig))
		require.NoError(t, err)

		assert.Equal(t, "dev", cfg.App.Env)
		assert.Equal(t, "info", cfg.App.LogLevel)
		assert.InDelta(t, 15.0, cfg.Consensus.MinConsensus, 1e-9)
		assert.InDelta(t, 1.0, cfg.Consensus.MinConfidence, 1e-9)
		assert.Equal(t, 30, cfg.Consensus.SourceTimeoutSeconds)
		assert.Equal(t, 60, cfg.Consensus.Cache.TTLSeconds)
		assert.Equal(t, "balanced", cfg.Risk.Profile)
		assert.InDelta(t, 0.25, cfg.Risk.MinFractionalKelly, 1e-9)
		assert.InDelta(t, 0.50, cfg.Risk.MaxFractionalKelly, 1e-9)
		assert.Equal(t, 20, cfg.Risk.PerformanceWindow)
		assert.InDelta(t, 0.025, cfg.Risk.MinEdgeThreshold, 1e-9)
		assert.Equal(t, "data/outcomes.db", cfg.Store.Path)
	})

	t.Run("profile supplies sizing defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, minimalConfig+`
risk:
  profile: conservative
`))
		require.NoError(t, err)
		assert.InDelta(t, 0.10, cfg.Risk.MinFractionalKelly, 1e-9)
		assert.InDelta(t, 0.04, cfg.Risk.MinEdgeThreshold, 1e-9)
		assert.InDelta(t, 0.10, cfg.Risk.MaxPositionPct, 1e-9)
	})

	t.Run("explicit fields override the profile", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, minimalConfig+`
risk:
  profile: conservative
  min_edge_threshold: 0.05
`))
		require.NoError(t, err)
		assert.InDelta(t, 0.05, cfg.Risk.MinEdgeThreshold, 1e-9)
		assert.InDelta(t, 0.10, cfg.Risk.MaxPositionPct, 1e-9)
	})

	t.Run("an explicit zero survives the defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, minimalConfig+`
  min_confidence: 0
`))
		require.NoError(t, err)
		assert.Zero(t, cfg.Consensus.MinConfidence)
	})

	t.Run("weights must sum to one", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
consensus:
  weights:
    technical: 0.5
    policy: 0.4
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum to 1.0")
	})

	t.Run("weights are required", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
app:
  env: dev
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weights")
	})

	t.Run("unknown profile is rejected", func(t *testing.T) {
		_, err := Load(writeConfig(t, minimalConfig+`
risk:
  profile: reckless
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "profile")
	})

	t.Run("learned requires a path when enabled", func(t *testing.T) {
		_, err := Load(writeConfig(t, minimalConfig+`
learned:
  enabled: true
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "learned.path")
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty path fails", func(t *testing.T) {
		_, err := Load("  ")
		assert.Error(t, err)
	})
}
