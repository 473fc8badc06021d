package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryMarket EntryType = "market"
	EntryLimit  EntryType = "limit"
)

// StrategyParameters is one fully validated rollover strategy request.
// The wizard enforces the ranges (leverage 1-100, rollover count 1-10,
// monetary values > 0) before constructing it; the engine does not
// re-validate them.
type StrategyParameters struct {
	Symbol          string          // uppercase, underscore-separated, e.g. BTC_USDT
	Leverage        int
	MarginUSDT      decimal.Decimal // capital allocated to the initial entry
	EntryType       EntryType
	EntryPrice      decimal.Decimal // set iff EntryType == EntryLimit
	RolloverCount   int
	IntervalPercent decimal.Decimal // price increase between consecutive rungs
}

type LevelStatus string

const (
	StatusPending LevelStatus = "pending"
	StatusPlaced  LevelStatus = "placed"
	StatusFailed  LevelStatus = "failed"
)

// RolloverLevel is one rung of the ladder. The calculator creates it
// with StatusPending; the executor sets OrderID/Status as the
// corresponding exchange call resolves. Rungs are never reordered or
// removed once built.
type RolloverLevel struct {
	Index          int             `json:"index"` // 1-based
	TriggerPrice   decimal.Decimal `json:"trigger_price"`
	ContractSize   int64           `json:"contract_size"`
	MarginRequired decimal.Decimal `json:"margin_required"` // informational only
	OrderID        int64           `json:"order_id,omitempty"`
	Status         LevelStatus     `json:"status"`
	Err            error           `json:"-"`
}

// StrategyResult summarizes one executed run: the entry order plus the
// final state of every rung.
type StrategyResult struct {
	Symbol       string           `json:"symbol"`
	EntryType    EntryType        `json:"entry_type"`
	EntryOrderID int64            `json:"entry_order_id"`
	EntryPrice   decimal.Decimal  `json:"entry_price"`
	ContractSize int64            `json:"contract_size"`
	Levels       []*RolloverLevel `json:"levels"`
	ExecutedAt   time.Time        `json:"executed_at"`
}

// PlacedLevels counts the rungs that made it onto the book.
func (r *StrategyResult) PlacedLevels() int {
	n := 0
	for _, l := range r.Levels {
		if l.Status == StatusPlaced {
			n++
		}
	}
	return n
}

// RunRecord is a journal entry for a completed run.
type RunRecord struct {
	ID        int64
	Params    StrategyParameters
	Result    StrategyResult
	CreatedAt time.Time
}
