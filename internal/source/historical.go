package source

import (
	"context"
	"fmt"

	"polybot/internal/consensus"
)

// HistoricalSource scores an opportunity from its realized track record. It
// has no directional opinion: a healthy record yields a neutral vote whose
// confidence is the win rate, a poor record yields abstain.
type HistoricalSource struct {
	id      string
	history consensus.PerformanceLookup
}

func NewHistoricalSource(id string, history consensus.PerformanceLookup) *HistoricalSource {
	if id == "" {
		id = "historical"
	}
	return &HistoricalSource{id: id, history: history}
}

func (s *HistoricalSource) ID() string { return s.id }

func (s *HistoricalSource) Vote(ctx context.Context, req consensus.Request) (consensus.Vote, error) {
	if s.history == nil {
		return consensus.Vote{}, fmt.Errorf("history lookup not configured")
	}
	rate, samples := s.history.WinRate(ctx, req.Kind, req.Asset)
	if samples < 5 {
		return consensus.Vote{
			SourceID:   s.id,
			Action:     consensus.ActionNeutral,
			Confidence: 50,
			Rationale:  fmt.Sprintf("only %d recorded trades for %s/%s", samples, req.Kind, req.Asset),
		}, nil
	}
	if rate < 0.40 {
		return consensus.Vote{
			SourceID:   s.id,
			Action:     consensus.ActionAbstain,
			Confidence: 0,
			Rationale:  fmt.Sprintf("win rate %.1f%% over %d trades", rate*100, samples),
		}, nil
	}
	return consensus.Vote{
		SourceID:   s.id,
		Action:     consensus.ActionNeutral,
		Confidence: rate * 100,
		Rationale:  fmt.Sprintf("win rate %.1f%% over %d trades", rate*100, samples),
	}, nil
}
