package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkozlov/gate_rollover_bot/internal/usecase"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeContractSize(t *testing.T) {
	// 1000 USDT at 10x is 10000 notional; 10000 / 50000 = 0.2 -> floor 0 -> min 1.
	assert.Equal(t, int64(1), usecase.ComputeContractSize(dec("50000"), dec("1000"), 10))

	// 100 USDT at 10x on a 50000 price: floor(1000/50000) = 0 -> 1.
	assert.Equal(t, int64(1), usecase.ComputeContractSize(dec("50000.00"), dec("100"), 10))

	// 500 USDT at 20x on a 2.5 price: 10000 / 2.5 = 4000 contracts exactly.
	assert.Equal(t, int64(4000), usecase.ComputeContractSize(dec("2.5"), dec("500"), 20))

	// Fractional result floors: 10000 / 3 = 3333.33.. -> 3333.
	assert.Equal(t, int64(3333), usecase.ComputeContractSize(dec("3"), dec("1000"), 10))

	// Degenerate price still yields the 1-contract floor, never zero.
	assert.Equal(t, int64(1), usecase.ComputeContractSize(dec("1000000"), dec("10"), 1))
	assert.Equal(t, int64(1), usecase.ComputeContractSize(decimal.Zero, dec("10"), 1))
}

func TestBuildLadder_TruncationChains(t *testing.T) {
	// 100.00 at +2%: 102.00, then 104.04 (102.00 * 1.02, truncated to
	// 2 decimals) -- not 104.00 and no binary float drift.
	levels := usecase.BuildLadder(dec("100.00"), dec("1000"), 10, 3, dec("2.0"))
	require.Len(t, levels, 3)

	assert.Equal(t, "102", levels[0].TriggerPrice.String())
	assert.Equal(t, "104.04", levels[1].TriggerPrice.String())
	assert.Equal(t, "106.12", levels[2].TriggerPrice.String()) // 104.04 * 1.02 = 106.1208 -> 106.12
}

func TestBuildLadder_TruncationUsesTruncatedPredecessor(t *testing.T) {
	// 99.99 * 1.025 = 102.48975 -> 102.48 (truncated, not 102.49).
	// Next rung chains from 102.48: 102.48 * 1.025 = 105.042 -> 105.04.
	levels := usecase.BuildLadder(dec("99.99"), dec("100"), 10, 2, dec("2.5"))
	require.Len(t, levels, 2)
	assert.Equal(t, "102.48", levels[0].TriggerPrice.String())
	assert.Equal(t, "105.04", levels[1].TriggerPrice.String())
}

func TestBuildLadder_PricesStrictlyAscending(t *testing.T) {
	levels := usecase.BuildLadder(dec("31250.55"), dec("750"), 25, 10, dec("1.5"))
	require.Len(t, levels, 10)

	prev := dec("31250.55")
	for _, l := range levels {
		assert.True(t, l.TriggerPrice.GreaterThan(prev),
			"level %d price %s must exceed %s", l.Index, l.TriggerPrice, prev)
		prev = l.TriggerPrice
	}
}

func TestBuildLadder_ConstantContractSize(t *testing.T) {
	levels := usecase.BuildLadder(dec("100"), dec("1000"), 10, 5, dec("2"))

	size := levels[0].ContractSize
	assert.Equal(t, int64(100), size) // 10000 notional / 100
	for _, l := range levels {
		assert.Equal(t, size, l.ContractSize, "size must not grow across rungs")
	}
}

func TestBuildLadder_MarginRequiredIsInformational(t *testing.T) {
	levels := usecase.BuildLadder(dec("100"), dec("1000"), 10, 2, dec("2"))

	// 100 contracts * 102 / 10 = 1020.
	assert.Equal(t, "1020", levels[0].MarginRequired.String())
	// Margin grows with price while size stays fixed.
	assert.True(t, levels[1].MarginRequired.GreaterThan(levels[0].MarginRequired))
	assert.Equal(t, levels[0].ContractSize, levels[1].ContractSize)
}

func TestBuildLadder_IndexesAndStatus(t *testing.T) {
	levels := usecase.BuildLadder(dec("100"), dec("10"), 10, 4, dec("2"))
	for i, l := range levels {
		assert.Equal(t, i+1, l.Index)
		assert.Equal(t, "pending", string(l.Status))
		assert.Zero(t, l.OrderID)
	}
}
