package risk

import "time"

// TradeOutcome is one concluded trade. Append-only, never mutated.
type TradeOutcome struct {
	Timestamp    time.Time `json:"timestamp"`
	PositionSize float64   `json:"position_size"`
	Profit       float64   `json:"profit"`
	Success      bool      `json:"success"`
	Edge         float64   `json:"edge"`
	Odds         float64   `json:"odds"`
}

// Metrics are derived statistics over the ledger window.
type Metrics struct {
	WinRate          float64 `json:"win_rate"`
	AvgProfit        float64 `json:"avg_profit"`
	AvgEdge          float64 `json:"avg_edge"`
	TotalTrades      int     `json:"total_trades"`
	ProfitableTrades int     `json:"profitable_trades"`
}

// Ledger is a bounded FIFO of recent trade outcomes. Oldest entries are
// evicted past capacity. Not safe for concurrent use; the controller
// serializes access.
type Ledger struct {
	capacity int
	outcomes []TradeOutcome
}

func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = 20
	}
	return &Ledger{capacity: capacity}
}

func (l *Ledger) Add(outcome TradeOutcome) {
	l.outcomes = append(l.outcomes, outcome)
	if len(l.outcomes) > l.capacity {
		l.outcomes = l.outcomes[len(l.outcomes)-l.capacity:]
	}
}

func (l *Ledger) Len() int {
	return len(l.outcomes)
}

// Outcomes returns a copy of the window, oldest first.
func (l *Ledger) Outcomes() []TradeOutcome {
	return append([]TradeOutcome(nil), l.outcomes...)
}

// Metrics recomputes the derived stats on every read.
func (l *Ledger) Metrics() Metrics {
	total := len(l.outcomes)
	if total == 0 {
		return Metrics{}
	}
	wins := 0
	profitSum := 0.0
	edgeSum := 0.0
	for _, t := range l.outcomes {
		if t.Success {
			wins++
		}
		profitSum += t.Profit
		edgeSum += t.Edge
	}
	return Metrics{
		WinRate:          float64(wins) / float64(total),
		AvgProfit:        profitSum / float64(total),
		AvgEdge:          edgeSum / float64(total),
		TotalTrades:      total,
		ProfitableTrades: wins,
	}
}
