package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLedgerWindow(t *testing.T) {
	l := NewLedger(3)
	for i := 0; i < 5; i++ {
		l.Add(TradeOutcome{Timestamp: time.Unix(int64(i), 0), Profit: float64(i)})
	}
	assert.Equal(t, 3, l.Len())

	out := l.Outcomes()
	assert.Equal(t, 2.0, out[0].Profit)
	assert.Equal(t, 4.0, out[2].Profit)
}

func TestLedgerMetrics(t *testing.T) {
	l := NewLedger(10)
	assert.Equal(t, Metrics{}, l.Metrics())

	l.Add(TradeOutcome{Profit: 1.0, Success: true, Edge: 0.04})
	l.Add(TradeOutcome{Profit: -0.5, Success: false, Edge: 0.02})
	l.Add(TradeOutcome{Profit: 2.0, Success: true, Edge: 0.06})

	m := l.Metrics()
	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 2, m.ProfitableTrades)
	assert.InDelta(t, 2.0/3.0, m.WinRate, 1e-12)
	assert.InDelta(t, 2.5/3.0, m.AvgProfit, 1e-12)
	assert.InDelta(t, 0.04, m.AvgEdge, 1e-12)
}

func TestLedgerOutcomesIsACopy(t *testing.T) {
	l := NewLedger(5)
	l.Add(TradeOutcome{Profit: 1.0})
	out := l.Outcomes()
	out[0].Profit = 99
	assert.Equal(t, 1.0, l.Outcomes()[0].Profit)
}
