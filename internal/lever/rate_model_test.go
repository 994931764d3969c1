package lever

import (
	"testing"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testProtocolConfig() *core.ProtocolConfig {
	return &core.ProtocolConfig{
		ProfitTargetRate:    number.Decimal("0.1"),
		BorrowRate:          number.Decimal("0.025"),
		Multiplier:          number.Decimal("0.2"),
		JumpMultiplier:      number.Decimal("1"),
		Kink:                number.Decimal("0.8"),
		LiquidatorThreshold: number.Decimal("100"),
		FlashLoanFee:        30,
	}
}

func TestUtilizationRateClamped(t *testing.T) {
	assert.True(t, UtilizationRate(number.Decimal("50"), number.Decimal("100")).Equal(number.Decimal("0.5")))
	assert.True(t, UtilizationRate(number.Decimal("200"), number.Decimal("100")).Equal(decimal.New(1, 0)))
	assert.True(t, UtilizationRate(number.Decimal("10"), decimal.Zero).IsZero())
	assert.True(t, UtilizationRate(decimal.Zero, number.Decimal("100")).IsZero())
}

func TestGetBorrowRateMonotone(t *testing.T) {
	cfg := testProtocolConfig()

	for _, tier := range []core.AssetTier{core.AssetTierStable, core.AssetTierCrossA, core.AssetTierCrossB, core.AssetTierIsolated} {
		prev := decimal.Zero
		for _, u := range []string{"0", "0.2", "0.5", "0.8", "0.9", "1"} {
			rate := GetBorrowRate(number.Decimal(u), cfg, tier)
			assert.True(t, rate.GreaterThanOrEqual(prev), "rate must not decrease with utilization")
			prev = rate
		}
	}
}

func TestGetBorrowRateBelowKink(t *testing.T) {
	cfg := testProtocolConfig()

	// base + u*multiplier = 0.025 + 0.5*0.2 = 0.125 for the stable tier
	rate := GetBorrowRate(number.Decimal("0.5"), cfg, core.AssetTierStable)
	assert.True(t, rate.Equal(number.Decimal("0.125")), rate.String())
}

func TestGetBorrowRateBeyondKink(t *testing.T) {
	cfg := testProtocolConfig()

	// normal = 0.025 + 0.8*0.2 = 0.185; excess = 0.1 * 1 => 0.285
	rate := GetBorrowRate(number.Decimal("0.9"), cfg, core.AssetTierStable)
	assert.True(t, rate.Equal(number.Decimal("0.285")), rate.String())
}

func TestTierPremiumOrdering(t *testing.T) {
	cfg := testProtocolConfig()
	u := number.Decimal("0.5")

	stable := GetBorrowRate(u, cfg, core.AssetTierStable)
	crossA := GetBorrowRate(u, cfg, core.AssetTierCrossA)
	crossB := GetBorrowRate(u, cfg, core.AssetTierCrossB)
	isolated := GetBorrowRate(u, cfg, core.AssetTierIsolated)

	assert.True(t, stable.LessThan(crossA))
	assert.True(t, crossA.LessThan(crossB))
	assert.True(t, crossB.LessThan(isolated))
}

func TestGetSupplyRate(t *testing.T) {
	assert.True(t, GetSupplyRate(decimal.New(1, 0), 100).IsZero())
	assert.True(t, GetSupplyRate(number.Decimal("1.1"), 0).IsZero())

	// 10% growth over one year of blocks annualizes back to 10%
	rate := GetSupplyRate(number.Decimal("1.1"), 2102400)
	assert.True(t, rate.Equal(number.Decimal("0.1")), rate.String())
}
