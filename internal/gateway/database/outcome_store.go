package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"polybot/internal/risk"

	_ "modernc.org/sqlite"
)

// OutcomeStore persists concluded trades so win-rate history survives
// restarts. It backs the consensus history filter and the historical
// vote source.
type OutcomeStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// StoredOutcome is one persisted trade row.
type StoredOutcome struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Kind         string    `json:"kind"`
	Asset        string    `json:"asset"`
	PositionSize float64   `json:"position_size"`
	Profit       float64   `json:"profit"`
	Success      bool      `json:"success"`
	Edge         float64   `json:"edge"`
	Odds         float64   `json:"odds"`
}

// Open opens or creates the sqlite database.
func Open(path string) (*OutcomeStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("outcome store path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &OutcomeStore{db: db, path: path}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS trade_outcomes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts INTEGER NOT NULL,
    kind TEXT NOT NULL,
    asset TEXT NOT NULL,
    position_size REAL NOT NULL,
    profit REAL NOT NULL,
    success INTEGER NOT NULL,
    edge REAL NOT NULL,
    odds REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_kind ON trade_outcomes(kind);
CREATE INDEX IF NOT EXISTS idx_outcomes_asset ON trade_outcomes(asset);
`)
	return err
}

// Close closes the underlying db.
func (s *OutcomeStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// RecordOutcome appends one trade row.
func (s *OutcomeStore) RecordOutcome(ctx context.Context, kind, asset string, o risk.TradeOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("outcome store is closed")
	}
	ts := o.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO trade_outcomes (ts, kind, asset, position_size, profit, success, edge, odds)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.UnixMilli(),
		strings.ToLower(strings.TrimSpace(kind)),
		strings.ToUpper(strings.TrimSpace(asset)),
		o.PositionSize, o.Profit, boolToInt(o.Success), o.Edge, o.Odds)
	return err
}

// WinRate reports the combined win rate for an opportunity kind and asset:
// 60% weight on the kind's record, 40% on the asset's. A leg with fewer
// than five trades falls back to 0.5. samples is the kind's trade count,
// which gates whether callers act on the rate at all.
func (s *OutcomeStore) WinRate(ctx context.Context, kind, asset string) (float64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0.5, 0
	}
	kindRate, kindTotal := s.rateLocked(ctx, "kind", strings.ToLower(strings.TrimSpace(kind)))
	assetRate, assetTotal := s.rateLocked(ctx, "asset", strings.ToUpper(strings.TrimSpace(asset)))
	if kindTotal < 5 {
		kindRate = 0.5
	}
	if assetTotal < 5 {
		assetRate = 0.5
	}
	return kindRate*0.6 + assetRate*0.4, kindTotal
}

// rateLocked must be called with the lock held. column is a trusted literal.
func (s *OutcomeStore) rateLocked(ctx context.Context, column, value string) (float64, int) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(success), 0) FROM trade_outcomes WHERE %s = ?`, column),
		value)
	var total, wins int
	if err := row.Scan(&total, &wins); err != nil || total == 0 {
		return 0.5, 0
	}
	return float64(wins) / float64(total), total
}

// RecentOutcomes returns up to limit rows, newest first.
func (s *OutcomeStore) RecentOutcomes(ctx context.Context, limit int) ([]StoredOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("outcome store is closed")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, ts, kind, asset, position_size, profit, success, edge, odds
FROM trade_outcomes ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredOutcome
	for rows.Next() {
		var rec StoredOutcome
		var ts int64
		var success int
		if err := rows.Scan(&rec.ID, &ts, &rec.Kind, &rec.Asset,
			&rec.PositionSize, &rec.Profit, &success, &rec.Edge, &rec.Odds); err != nil {
			return nil, err
		}
		rec.Timestamp = time.UnixMilli(ts)
		rec.Success = success != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
