package consensus

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// VoteSource is the contract every vote provider implements. A source that
// cannot form an opinion should return an abstain vote rather than an error;
// errors and timeouts are degraded to abstain by the engine either way.
type VoteSource interface {
	ID() string
	Vote(ctx context.Context, req Request) (Vote, error)
}

// weightSumTolerance bounds float drift when validating the weight sum.
const weightSumTolerance = 0.001

// SourceWeights is the static source id -> weight table.
type SourceWeights map[string]float64

// NewSourceWeights validates that the weights are non-negative and sum to 1.0.
// A violation is a configuration error and fails construction.
func NewSourceWeights(raw map[string]float64) (SourceWeights, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("source weights cannot be empty")
	}
	out := make(SourceWeights, len(raw))
	total := 0.0
	for id, w := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("source weights contain an empty id")
		}
		if w < 0 {
			return nil, fmt.Errorf("weight for source %s must be >= 0, got %v", id, w)
		}
		out[id] = w
		total += w
	}
	if math.Abs(total-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("source weights must sum to 1.0, got %.4f", total)
	}
	return out, nil
}

// Weight returns the configured weight for a source, or a small fallback for
// sources that vote without a configured weight.
func (w SourceWeights) Weight(sourceID string) float64 {
	if v, ok := w[sourceID]; ok {
		return v
	}
	return 0.1
}
