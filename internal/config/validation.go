package config

import (
	"fmt"
	"math"
	"strings"

	"polybot/internal/risk"
)

// weightSumTolerance allows for float error when checking the weight sum.
const weightSumTolerance = 0.001

func validate(c *Config) error {
	if err := c.Consensus.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Learned.validate(); err != nil {
		return err
	}
	return nil
}

func (c *ConsensusConfig) validate() error {
	if len(c.Weights) == 0 {
		return fmt.Errorf("consensus.weights requires at least one source")
	}
	total := 0.0
	for id, w := range c.Weights {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("consensus.weights contains an empty source id")
		}
		if w < 0 {
			return fmt.Errorf("consensus.weights.%s must be >= 0, got %v", id, w)
		}
		total += w
	}
	if math.Abs(total-1.0) > weightSumTolerance {
		return fmt.Errorf("consensus.weights must sum to 1.0, got %.4f", total)
	}
	if c.MinConsensus < 0 || c.MinConsensus > 100 {
		return fmt.Errorf("consensus.min_consensus must be within [0,100]")
	}
	if c.SourceTimeoutSeconds <= 0 {
		return fmt.Errorf("consensus.source_timeout_seconds must be > 0")
	}
	if c.Cache.Enabled {
		if c.Cache.TTLSeconds <= 0 {
			return fmt.Errorf("consensus.cache.ttl_seconds must be > 0")
		}
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("consensus.cache.max_entries must be > 0")
		}
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if _, err := risk.LookupProfile(r.Profile); err != nil {
		return fmt.Errorf("risk.profile: %w", err)
	}
	if r.MinFractionalKelly <= 0 || r.MaxFractionalKelly <= 0 {
		return fmt.Errorf("risk fractional kelly bounds must be > 0")
	}
	if r.MinFractionalKelly > r.MaxFractionalKelly {
		return fmt.Errorf("risk.min_fractional_kelly (%v) exceeds max (%v)",
			r.MinFractionalKelly, r.MaxFractionalKelly)
	}
	if r.PerformanceWindow <= 0 {
		return fmt.Errorf("risk.performance_window must be > 0")
	}
	if r.MaxPositionPct <= 0 || r.MaxPositionPct > 1 {
		return fmt.Errorf("risk.max_position_pct must be within (0,1]")
	}
	if r.MinPositionSize < 0 {
		return fmt.Errorf("risk.min_position_size must be >= 0")
	}
	if r.TransactionCostPct < 0 {
		return fmt.Errorf("risk.transaction_cost_pct must be >= 0")
	}
	return nil
}

func (l *LearnedConfig) validate() error {
	if l.Enabled && strings.TrimSpace(l.Path) == "" {
		return fmt.Errorf("learned.path cannot be empty when learned.enabled is true")
	}
	return nil
}
