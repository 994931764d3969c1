package lever

import (
	"testing"

	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHealthFactorNoDebt(t *testing.T) {
	hf := HealthFactor(number.Decimal("1000"), decimal.Zero)
	assert.True(t, hf.Equal(MaxHealthFactor))
	assert.False(t, IsLiquidatable(number.Decimal("1000"), decimal.Zero))
}

func TestHealthFactor(t *testing.T) {
	// level 3075, debt 3000 => 1.025, healthy
	hf := HealthFactor(number.Decimal("3075"), number.Decimal("3000"))
	assert.True(t, hf.Equal(number.Decimal("1.025")), hf.String())
	assert.False(t, IsLiquidatable(number.Decimal("3075"), number.Decimal("3000")))

	// level below debt => liquidatable
	assert.True(t, IsLiquidatable(number.Decimal("2999"), number.Decimal("3000")))

	// exactly at the level is still healthy
	assert.False(t, IsLiquidatable(number.Decimal("3000"), number.Decimal("3000")))
}
