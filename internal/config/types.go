package config

// Config is the top-level configuration for the decision core.
type Config struct {
	App       AppConfig       `toml:"app"`
	Consensus ConsensusConfig `toml:"consensus"`
	Risk      RiskConfig      `toml:"risk"`
	Learned   LearnedConfig   `toml:"learned"`
	Store     StoreConfig     `toml:"store"`
	Report    ReportConfig    `toml:"report"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// ConsensusConfig drives the voting engine and its decision cache.
// Weights maps source id -> static vote weight; the weights must sum to 1.0.
type ConsensusConfig struct {
	MinConsensus         float64            `toml:"min_consensus"`
	MinConfidence        float64            `toml:"min_confidence"`
	SourceTimeoutSeconds int                `toml:"source_timeout_seconds"`
	Weights              map[string]float64 `toml:"weights"`
	Cache                CacheConfig        `toml:"cache"`
}

type CacheConfig struct {
	Enabled    bool `toml:"enabled"`
	TTLSeconds int  `toml:"ttl_seconds"`
	MaxEntries int  `toml:"max_entries"`
}

// RiskConfig seeds the adaptive risk parameters. Profile selects one of the
// embedded presets; explicit fields override the preset values.
type RiskConfig struct {
	Profile            string  `toml:"profile"`
	MinFractionalKelly float64 `toml:"min_fractional_kelly"`
	MaxFractionalKelly float64 `toml:"max_fractional_kelly"`
	PerformanceWindow  int     `toml:"performance_window"`
	TransactionCostPct float64 `toml:"transaction_cost_pct"`
	MinEdgeThreshold   float64 `toml:"min_edge_threshold"`
	MaxPositionPct     float64 `toml:"max_position_pct"`
	MinPositionSize    float64 `toml:"min_position_size"`
}

// LearnedConfig points at an optional file of externally learned
// take-profit/stop-loss parameters, hot-reloaded when it changes.
type LearnedConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type ReportConfig struct {
	Dir string `toml:"dir"`
}
