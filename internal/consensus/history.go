package consensus

import "context"

// Historical-performance derating: when a (kind, asset) pair has enough
// recorded trades and a poor win rate, every source's confidence is reduced
// before aggregation. A penalty, not a veto.
const (
	derateMinSamples = 5
	derateWinRate    = 0.40
	derateFactor     = 0.80
)

// PerformanceLookup exposes the realized win rate for an opportunity kind and
// asset. samples reports how many trades back the rate.
type PerformanceLookup interface {
	WinRate(ctx context.Context, kind, asset string) (rate float64, samples int)
}
