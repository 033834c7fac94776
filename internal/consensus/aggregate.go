package consensus

import (
	"fmt"
	"sort"
	"strings"
)

// aggregate folds a vote set into (action, confidence, consensus score).
// Scores accumulate weight × (confidence/100) per action and are normalized by
// the weight of the sources that actually voted, not the global total.
func aggregate(votes map[string]Vote, weights SourceWeights) (string, float64, float64) {
	if len(votes) == 0 {
		return ActionAbstain, 0, 0
	}

	scores := make(map[string]float64, len(scoreOrder))
	totalWeight := 0.0
	for _, vote := range votes {
		w := weights.Weight(vote.SourceID)
		scores[NormalizeAction(vote.Action)] += w * (vote.Confidence / 100.0)
		totalWeight += w
	}
	if totalWeight > 0 {
		for action := range scores {
			scores[action] /= totalWeight
		}
	}

	action, score := topAction(scores, false)
	if action == ActionNeutral {
		// Neutral is "no opinion": the decision is always the best directional
		// vote, even when that scores zero and falls through to abstain below.
		action, score = topAction(scores, true)
	}
	if score <= 0 {
		return ActionAbstain, 0, 0
	}

	confidence := winnerConfidence(votes, weights, action)
	return action, confidence, score * 100
}

// topAction picks the highest-scoring action, breaking ties in scoreOrder.
func topAction(scores map[string]float64, excludeNeutral bool) (string, float64) {
	best := ActionAbstain
	bestScore := -1.0
	for _, action := range scoreOrder {
		if excludeNeutral && action == ActionNeutral {
			continue
		}
		s, ok := scores[action]
		if !ok {
			continue
		}
		if s > bestScore {
			best, bestScore = action, s
		}
	}
	if bestScore < 0 {
		return ActionAbstain, 0
	}
	return best, bestScore
}

// winnerConfidence is the weighted average raw confidence over the sources
// that voted for the winner or neutral, normalized over just those weights.
func winnerConfidence(votes map[string]Vote, weights SourceWeights, winner string) float64 {
	sum := 0.0
	weightSum := 0.0
	for _, vote := range votes {
		action := NormalizeAction(vote.Action)
		if action != winner && action != ActionNeutral {
			continue
		}
		w := weights.Weight(vote.SourceID)
		sum += vote.Confidence * w
		weightSum += w
	}
	if weightSum <= 0 {
		return 0
	}
	return sum / weightSum
}

func summarizeVotes(votes map[string]Vote) string {
	if len(votes) == 0 {
		return "no source votes available"
	}
	ids := make([]string, 0, len(votes))
	for id := range votes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		v := votes[id]
		parts = append(parts, fmt.Sprintf("%s: %s (%.0f%%)", id, NormalizeAction(v.Action), v.Confidence))
	}
	return "consensus vote: " + strings.Join(parts, ", ")
}
