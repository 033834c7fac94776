package config

import "polybot/internal/risk"

const (
	defaultAppEnv           = "dev"
	defaultAppLogLevel      = "info"
	defaultAppHTTPAddr      = ":9980"
	defaultMinConsensus     = 15.0
	defaultMinConfidence    = 1.0
	defaultSourceTimeout    = 30
	defaultCacheTTL         = 60
	defaultCacheMaxEntries  = 256
	defaultRiskProfile      = "balanced"
	defaultMinFractional    = 0.25
	defaultMaxFractional    = 0.50
	defaultPerfWindow       = 20
	defaultTransactionCost  = 0.02
	defaultMinEdgeThreshold = 0.025
	defaultMaxPositionPct   = 0.20
	defaultMinPositionSize  = 0.10
	defaultStorePath        = "data/outcomes.db"
	defaultReportDir        = "data/reports"
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Consensus.applyDefaults(keys)
	c.Risk.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Report.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (c *ConsensusConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		floatFieldDefault("consensus.min_consensus", &c.MinConsensus, defaultMinConsensus),
		floatFieldDefault("consensus.min_confidence", &c.MinConfidence, defaultMinConfidence),
		intFieldDefault("consensus.source_timeout_seconds", &c.SourceTimeoutSeconds, defaultSourceTimeout),
		intFieldDefault("consensus.cache.ttl_seconds", &c.Cache.TTLSeconds, defaultCacheTTL),
		intFieldDefault("consensus.cache.max_entries", &c.Cache.MaxEntries, defaultCacheMaxEntries),
	)
}

func (r *RiskConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("risk.profile", &r.Profile, defaultRiskProfile),
	)

	// The selected profile supplies the sizing defaults; explicit config
	// fields override it. Unknown profiles fall back to the package defaults
	// here and fail validation afterwards.
	minFractional := defaultMinFractional
	maxFractional := defaultMaxFractional
	transactionCost := defaultTransactionCost
	minEdge := defaultMinEdgeThreshold
	maxPosition := defaultMaxPositionPct
	minPosition := defaultMinPositionSize
	if preset, err := risk.LookupProfile(r.Profile); err == nil {
		minFractional = preset.MinFractionalKelly
		maxFractional = preset.MaxFractionalKelly
		transactionCost = preset.TransactionCostPct
		minEdge = preset.MinEdgeThreshold
		maxPosition = preset.MaxPositionPct
		minPosition = preset.MinPositionSize
	}

	applyFieldDefaults(keys,
		floatFieldDefault("risk.min_fractional_kelly", &r.MinFractionalKelly, minFractional),
		floatFieldDefault("risk.max_fractional_kelly", &r.MaxFractionalKelly, maxFractional),
		intFieldDefault("risk.performance_window", &r.PerformanceWindow, defaultPerfWindow),
		floatFieldDefault("risk.transaction_cost_pct", &r.TransactionCostPct, transactionCost),
		floatFieldDefault("risk.min_edge_threshold", &r.MinEdgeThreshold, minEdge),
		floatFieldDefault("risk.max_position_pct", &r.MaxPositionPct, maxPosition),
		floatFieldDefault("risk.min_position_size", &r.MinPositionSize, minPosition),
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("store.path", &s.Path, defaultStorePath),
	)
}

func (r *ReportConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("report.dir", &r.Dir, defaultReportDir),
	)
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil && *target == "" },
		apply: func() { *target = def },
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil && *target == 0 },
		apply: func() { *target = def },
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil && *target == 0 },
		apply: func() { *target = def },
	}
}
