package lever

import (
	"testing"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckSlippage(t *testing.T) {
	// inside the band: 100 +/- 1%
	assert.Nil(t, CheckSlippage(number.Decimal("100"), number.Decimal("100.5"), 100))
	assert.Nil(t, CheckSlippage(number.Decimal("100"), number.Decimal("99.5"), 100))
	assert.Nil(t, CheckSlippage(number.Decimal("100"), number.Decimal("101"), 100))

	// outside the band
	assert.Equal(t, core.ErrMEVSlippageExceeded, CheckSlippage(number.Decimal("100"), number.Decimal("101.01"), 100))
	assert.Equal(t, core.ErrMEVSlippageExceeded, CheckSlippage(number.Decimal("100"), number.Decimal("98.99"), 100))

	// zero tolerance means exact execution only
	assert.Nil(t, CheckSlippage(number.Decimal("100"), number.Decimal("100"), 0))
	assert.Equal(t, core.ErrMEVSlippageExceeded, CheckSlippage(number.Decimal("100"), number.Decimal("100.0001"), 0))

	// zero expected skips the check
	assert.Nil(t, CheckSlippage(decimal.Zero, number.Decimal("42"), 0))
}

func TestCurrentBlock(t *testing.T) {
	block, err := CurrentBlock(timeAt(1603366002+150), 15, 1603366002)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), block)

	_, err = CurrentBlock(timeAt(1603366002), 0, 1603366002)
	assert.NotNil(t, err)
}
