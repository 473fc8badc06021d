package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/dkozlov/gate_rollover_bot/internal/domain"
)

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// ComputeContractSize converts margin and leverage into an integer
// contract count at the given price: floor(margin * leverage / price),
// never below one contract. The 1-contract floor on degenerate input
// (price above the whole notional) is deliberate, not an error.
func ComputeContractSize(price, margin decimal.Decimal, leverage int) int64 {
	if !price.IsPositive() {
		return 1
	}
	notional := margin.Mul(decimal.NewFromInt(int64(leverage)))
	size := notional.Div(price).Floor()
	if size.LessThan(one) {
		return 1
	}
	return size.IntPart()
}

// BuildLadder derives the rollover rungs from the entry price. Every
// rung carries the same contract size, computed once from the entry
// notional: position sizing per rung is fixed even though the margin a
// rung would consume grows with its trigger price. MarginRequired is
// reported for display only and never feeds back into sizing.
//
// Trigger prices chain: each rung is the previous rung's price times
// (1 + intervalPct/100), truncated toward zero to 2 decimals, and the
// truncated value seeds the next rung.
func BuildLadder(entryPrice, margin decimal.Decimal, leverage, rolloverCount int, intervalPct decimal.Decimal) []*domain.RolloverLevel {
	size := ComputeContractSize(entryPrice, margin, leverage)
	sizeDec := decimal.NewFromInt(size)
	leverageDec := decimal.NewFromInt(int64(leverage))
	factor := one.Add(intervalPct.Div(hundred))

	levels := make([]*domain.RolloverLevel, 0, rolloverCount)
	price := entryPrice
	for i := 1; i <= rolloverCount; i++ {
		price = price.Mul(factor).Truncate(2)
		levels = append(levels, &domain.RolloverLevel{
			Index:          i,
			TriggerPrice:   price,
			ContractSize:   size,
			MarginRequired: sizeDec.Mul(price).Div(leverageDec),
			Status:         domain.StatusPending,
		})
	}
	return levels
}
