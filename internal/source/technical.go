package source

import (
	"context"
	"fmt"
	"math"

	"polybot/internal/consensus"

	talib "github.com/markcheno/go-talib"
)

const (
	emaFastPeriod = 9
	emaSlowPeriod = 21
	rsiPeriod     = 14
)

// TechnicalSource derives a directional vote from the recent close series
// using EMA crossover direction and RSI strength.
type TechnicalSource struct {
	id string
}

func NewTechnicalSource(id string) *TechnicalSource {
	if id == "" {
		id = "technical"
	}
	return &TechnicalSource{id: id}
}

func (s *TechnicalSource) ID() string { return s.id }

func (s *TechnicalSource) Vote(ctx context.Context, req consensus.Request) (consensus.Vote, error) {
	closes := req.Market.Closes
	if len(closes) < emaSlowPeriod+1 {
		return consensus.Vote{
			SourceID:  s.id,
			Action:    consensus.ActionAbstain,
			Rationale: fmt.Sprintf("need %d closes, have %d", emaSlowPeriod+1, len(closes)),
		}, nil
	}

	fast := talib.Ema(closes, emaFastPeriod)
	slow := talib.Ema(closes, emaSlowPeriod)
	rsi := talib.Rsi(closes, rsiPeriod)

	lastFast := fast[len(fast)-1]
	lastSlow := slow[len(slow)-1]
	lastRSI := rsi[len(rsi)-1]

	if lastSlow == 0 || math.IsNaN(lastFast) || math.IsNaN(lastSlow) || math.IsNaN(lastRSI) {
		return consensus.Vote{SourceID: s.id, Action: consensus.ActionAbstain, Rationale: "indicators unavailable"}, nil
	}

	// Spread between the EMAs measures trend strength; RSI distance from 50
	// measures momentum agreement.
	spread := (lastFast - lastSlow) / lastSlow
	action := consensus.ActionAbstain
	switch {
	case spread > 0 && lastRSI > 50:
		action = consensus.ActionLong
	case spread < 0 && lastRSI < 50:
		action = consensus.ActionShort
	}
	if action == consensus.ActionAbstain {
		return consensus.Vote{
			SourceID:  s.id,
			Action:    action,
			Rationale: fmt.Sprintf("mixed signal: spread=%.4f rsi=%.1f", spread, lastRSI),
		}, nil
	}

	confidence := math.Min(math.Abs(spread)*2000, 60) + math.Min(math.Abs(lastRSI-50), 40)
	return consensus.Vote{
		SourceID:   s.id,
		Action:     action,
		Confidence: confidence,
		Rationale:  fmt.Sprintf("ema%d/%d spread=%.4f rsi=%.1f", emaFastPeriod, emaSlowPeriod, spread, lastRSI),
	}, nil
}
