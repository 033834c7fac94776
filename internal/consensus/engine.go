package consensus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"polybot/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const highConsensusScore = 70.0

// Options configures an Engine.
type Options struct {
	MinConsensus  float64 // minimum consensus score (0-100) to execute
	MinConfidence float64 // absolute confidence floor (0-100)
	SourceTimeout time.Duration
	CacheEnabled  bool
	CacheTTL      time.Duration
	CacheEntries  int
	History       PerformanceLookup // optional
	Now           func() time.Time  // optional, for tests
}

// Engine aggregates independent vote sources into a single decision.
type Engine struct {
	sources       []VoteSource
	weights       SourceWeights
	minConsensus  float64
	minConfidence float64
	sourceTimeout time.Duration
	cache         *decisionCache
	history       PerformanceLookup
	now           func() time.Time

	mu    sync.Mutex
	stats ApprovalStats
}

// NewEngine validates the weight table and wires the configured sources.
func NewEngine(sources []VoteSource, weights map[string]float64, opts Options) (*Engine, error) {
	w, err := NewSourceWeights(weights)
	if err != nil {
		return nil, err
	}
	if len(sources) > len(w) {
		return nil, fmt.Errorf("more sources (%d) than configured weights (%d)", len(sources), len(w))
	}
	e := &Engine{
		sources:       sources,
		weights:       w,
		minConsensus:  opts.MinConsensus,
		minConfidence: opts.MinConfidence,
		sourceTimeout: opts.SourceTimeout,
		history:       opts.History,
		now:           opts.Now,
	}
	if e.sourceTimeout <= 0 {
		e.sourceTimeout = 30 * time.Second
	}
	if e.minConfidence <= 0 {
		e.minConfidence = 1.0
	}
	if e.now == nil {
		e.now = time.Now
	}
	if opts.CacheEnabled {
		e.cache = newDecisionCache(opts.CacheTTL, opts.CacheEntries)
	}
	return e, nil
}

// Decide queries every source concurrently and folds the votes into one
// decision. It never returns an error: a failing source degrades to an
// abstain vote for that source only, and with zero responses the decision
// is abstain.
func (e *Engine) Decide(ctx context.Context, req Request) Decision {
	if ctx == nil {
		ctx = context.Background()
	}
	req.Asset = strings.ToUpper(strings.TrimSpace(req.Asset))
	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))

	key := newCacheKey(req)
	if e.cache != nil {
		if cached, ok := e.cache.get(key, e.now()); ok {
			cached.FromCache = true
			logger.Debugf("decision cache hit asset=%s kind=%s action=%s", req.Asset, req.Kind, cached.Action)
			return cached
		}
	}

	votes, responded := e.gatherVotes(ctx, req)
	e.applyHistoryDerate(ctx, req, votes)

	action, confidence, score := aggregate(votes, e.weights)
	decision := Decision{
		ID:             uuid.NewString(),
		Asset:          req.Asset,
		Kind:           req.Kind,
		Action:         action,
		Confidence:     confidence,
		ConsensusScore: score,
		Votes:          votes,
		Rationale:      summarizeVotes(votes),
		DecidedAt:      e.now(),
	}

	e.mu.Lock()
	e.stats.TotalDecisions++
	if score >= highConsensusScore {
		e.stats.HighConsensus++
	}
	e.mu.Unlock()

	// An all-sources-failed abstain is not worth replaying for a full TTL:
	// cache only decisions backed by at least one live response.
	if e.cache != nil && responded > 0 {
		e.cache.put(key, decision, e.now())
	}

	logger.Infof("consensus decision asset=%s kind=%s action=%s confidence=%.1f consensus=%.1f votes=%d",
		req.Asset, req.Kind, action, confidence, score, len(votes))
	return decision
}

// gatherVotes fans out to all sources with independent timeouts and joins
// before returning; no partial vote set ever reaches aggregation.
func (e *Engine) gatherVotes(ctx context.Context, req Request) (map[string]Vote, int) {
	results := make([]Vote, len(e.sources))
	live := make([]bool, len(e.sources))

	var eg errgroup.Group
	for i, src := range e.sources {
		i, src := i, src
		eg.Go(func() error {
			results[i], live[i] = e.querySource(ctx, src, req)
			return nil
		})
	}
	_ = eg.Wait()

	votes := make(map[string]Vote, len(results))
	responded := 0
	for i, vote := range results {
		if vote.SourceID == "" {
			continue
		}
		votes[vote.SourceID] = vote
		if live[i] {
			responded++
		}
	}
	return votes, responded
}

// querySource runs one source under its own deadline. A late result after the
// deadline fires is discarded; the source is recorded as abstain/0.
func (e *Engine) querySource(ctx context.Context, src VoteSource, req Request) (Vote, bool) {
	cctx, cancel := context.WithTimeout(ctx, e.sourceTimeout)
	defer cancel()

	type outcome struct {
		vote Vote
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		v, err := src.Vote(cctx, req)
		ch <- outcome{vote: v, err: err}
	}()

	select {
	case <-cctx.Done():
		reason := "timeout"
		if errors.Is(cctx.Err(), context.Canceled) {
			reason = "cancelled"
		}
		logger.Warnf("vote source aborted source=%s asset=%s reason=%s", src.ID(), req.Asset, reason)
		return abstainVote(src.ID(), reason), false
	case out := <-ch:
		if out.err != nil {
			logger.Warnf("vote source failed source=%s asset=%s: %v", src.ID(), req.Asset, out.err)
			return abstainVote(src.ID(), out.err.Error()), false
		}
		vote := out.vote
		vote.SourceID = src.ID()
		vote.Action = NormalizeAction(vote.Action)
		vote.Confidence = clampConfidence(vote.Confidence)
		return vote, true
	}
}

// applyHistoryDerate reduces every vote's confidence by a fixed factor when
// the (kind, asset) pair has a known poor track record.
func (e *Engine) applyHistoryDerate(ctx context.Context, req Request, votes map[string]Vote) {
	if e.history == nil || len(votes) == 0 {
		return
	}
	rate, samples := e.history.WinRate(ctx, req.Kind, req.Asset)
	if samples < derateMinSamples || rate >= derateWinRate {
		return
	}
	logger.Warnf("history filter: %s/%s win rate %.1f%% below %.0f%% over %d trades, derating confidences by %.0f%%",
		req.Kind, req.Asset, rate*100, derateWinRate*100, samples, (1-derateFactor)*100)
	for id, vote := range votes {
		vote.Confidence = clampConfidence(vote.Confidence * derateFactor)
		votes[id] = vote
	}
}

// ShouldExecute applies the execution gates to a decision: no abstain, the
// consensus threshold, and an absolute confidence floor.
func (e *Engine) ShouldExecute(d Decision) bool {
	if d.Action == ActionAbstain || d.Action == ActionNeutral {
		logger.Infof("trade blocked: decision %s is not directional asset=%s kind=%s", d.Action, d.Asset, d.Kind)
		return false
	}
	if d.ConsensusScore < e.minConsensus {
		e.mu.Lock()
		e.stats.Blocked++
		e.mu.Unlock()
		logger.Infof("trade blocked: consensus %.1f%% < %.1f%% asset=%s action=%s",
			d.ConsensusScore, e.minConsensus, d.Asset, d.Action)
		return false
	}
	if d.Confidence < e.minConfidence {
		logger.Infof("trade blocked: confidence %.1f%% < %.1f%% asset=%s action=%s",
			d.Confidence, e.minConfidence, d.Asset, d.Action)
		return false
	}
	e.mu.Lock()
	e.stats.Approved++
	e.mu.Unlock()
	return true
}

// Stats returns a snapshot of the approval counters.
func (e *Engine) Stats() ApprovalStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// CacheStats reports decision-cache hits and misses; zeros when disabled.
func (e *Engine) CacheStats() (hits, misses int) {
	if e.cache == nil {
		return 0, 0
	}
	return e.cache.statsSnapshot()
}

func abstainVote(sourceID, reason string) Vote {
	return Vote{
		SourceID:   sourceID,
		Action:     ActionAbstain,
		Confidence: 0,
		Rationale:  reason,
	}
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
