package lever

import (
	"testing"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompoundDebtZeroElapsed(t *testing.T) {
	principal := number.Decimal("100")
	debt, err := CompoundDebt(principal, number.Decimal("0.00000001"), 0)
	require.Nil(t, err)
	assert.True(t, debt.Equal(principal))
}

func TestCompoundDebtMonotone(t *testing.T) {
	principal := number.Decimal("1000")
	rate := number.Decimal("0.0000001")

	prev := principal
	for _, blocks := range []int64{1, 10, 100, 10000, 1000000} {
		debt, err := CompoundDebt(principal, rate, blocks)
		require.Nil(t, err)
		assert.True(t, debt.GreaterThanOrEqual(prev), "debt must not decrease with elapsed time")
		prev = debt
	}
}

func TestCompoundDebtSingleBlock(t *testing.T) {
	// 100 * (1 + 0.000001) = 100.0001
	debt, err := CompoundDebt(number.Decimal("100"), number.Decimal("0.000001"), 1)
	require.Nil(t, err)
	assert.True(t, debt.Equal(number.Decimal("100.0001")), debt.String())
}

func TestCompoundDebtOverflowRejected(t *testing.T) {
	_, err := CompoundDebt(number.Decimal("100"), number.Decimal("0.00000001"), MaxAccrualBlocks+1)
	assert.Equal(t, core.ErrAccrualOverflow, err)

	_, err = CompoundDebt(number.Decimal("100"), number.Decimal("0.00000001"), -1)
	assert.Equal(t, core.ErrAccrualOverflow, err)

	_, err = CompoundDebt(number.Decimal("100"), MaxRatePerBlock.Add(number.Decimal("0.1")), 10)
	assert.Equal(t, core.ErrAccrualOverflow, err)
}

func TestPowTruncated(t *testing.T) {
	// (1.01)^2 = 1.0201
	got := powTruncated(number.Decimal("1.01"), 2)
	assert.True(t, got.Equal(number.Decimal("1.0201")), got.String())

	// x^0 = 1
	assert.True(t, powTruncated(number.Decimal("1.5"), 0).Equal(decimal.New(1, 0)))
}
