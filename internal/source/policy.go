package source

import (
	"context"
	"fmt"
	"strings"

	"polybot/internal/consensus"
)

// PolicySource maps the current market regime to a direction using the
// learned strategy table: trending markets take the trend side, flat or
// illiquid markets stand down.
type PolicySource struct {
	id string
}

func NewPolicySource(id string) *PolicySource {
	if id == "" {
		id = "policy"
	}
	return &PolicySource{id: id}
}

func (s *PolicySource) ID() string { return s.id }

func (s *PolicySource) Vote(ctx context.Context, req consensus.Request) (consensus.Vote, error) {
	trend := strings.ToLower(strings.TrimSpace(req.Market.Trend))

	action := consensus.ActionAbstain
	switch trend {
	case "bullish", "up":
		action = consensus.ActionLong
	case "bearish", "down":
		action = consensus.ActionShort
	}
	if action == consensus.ActionAbstain {
		return consensus.Vote{
			SourceID:  s.id,
			Action:    action,
			Rationale: fmt.Sprintf("no directional policy for trend %q", trend),
		}, nil
	}

	confidence := 60.0
	// Thin books make the learned edge unreliable.
	if req.Market.Liquidity > 0 && req.Market.Liquidity < 1000 {
		confidence = 35.0
	}
	if req.Market.Volatility > 0.05 {
		confidence -= 10
	}
	return consensus.Vote{
		SourceID:   s.id,
		Action:     action,
		Confidence: confidence,
		Rationale:  fmt.Sprintf("policy follows %s trend (liquidity=%.0f vol=%.2f%%)", trend, req.Market.Liquidity, req.Market.Volatility*100),
	}, nil
}
