package consensus

import (
	"strings"
	"time"
)

// Vote actions. Abstain means "do not trade", neutral means "no opinion".
const (
	ActionLong    = "long"
	ActionShort   = "short"
	ActionAbstain = "abstain"
	ActionNeutral = "neutral"
)

// scoreOrder fixes tie-breaking between equally scored actions.
var scoreOrder = []string{ActionLong, ActionShort, ActionNeutral, ActionAbstain}

func NormalizeAction(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "long", "buy", "buy_yes":
		return ActionLong
	case "short", "sell", "buy_no":
		return ActionShort
	case "neutral":
		return ActionNeutral
	case "abstain", "skip", "hold", "":
		return ActionAbstain
	default:
		return ActionAbstain
	}
}

// Vote is a single source's opinion for one evaluation cycle.
type Vote struct {
	SourceID   string  `json:"source_id"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"` // 0-100
	Rationale  string  `json:"rationale,omitempty"`
}

// Request carries the inputs every vote source receives.
type Request struct {
	Asset     string
	Kind      string // opportunity kind, e.g. "latency", "directional"
	Market    MarketContext
	Portfolio PortfolioState
}

// MarketContext is the slice of market state the sources may consult.
type MarketContext struct {
	Price            float64
	Volatility       float64
	Trend            string
	Liquidity        float64
	TimeToResolution time.Duration
	Closes           []float64 // recent close series, oldest first
}

type PortfolioState struct {
	Bankroll      float64
	OpenPositions int
}

// Decision is the immutable outcome of one consensus evaluation.
type Decision struct {
	ID             string          `json:"id"`
	Asset          string          `json:"asset"`
	Kind           string          `json:"kind"`
	Action         string          `json:"action"`
	Confidence     float64         `json:"confidence"`      // 0-100
	ConsensusScore float64         `json:"consensus_score"` // 0-100
	Votes          map[string]Vote `json:"votes"`
	Rationale      string          `json:"rationale"`
	DecidedAt      time.Time       `json:"decided_at"`
	FromCache      bool            `json:"from_cache,omitempty"`
}

// ApprovalStats tracks should-execute outcomes for diagnostics.
type ApprovalStats struct {
	TotalDecisions int `json:"total_decisions"`
	HighConsensus  int `json:"high_consensus"`
	Approved       int `json:"approved"`
	Blocked        int `json:"blocked"`
}

// ApprovalRate returns the percentage of threshold checks that passed.
func (s ApprovalStats) ApprovalRate() float64 {
	total := s.Approved + s.Blocked
	if total == 0 {
		return 0
	}
	return float64(s.Approved) / float64(total) * 100
}
