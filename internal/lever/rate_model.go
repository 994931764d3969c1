package lever

import (
	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

var (
	// SecondsPerBlock default seconds per block
	SecondsPerBlock int64 = 15
	// BlocksPerYear blocks per year at the default block length
	BlocksPerYear = decimal.NewFromInt(2102400)
	// MaxHealthFactor sentinel health factor of a debt-free position
	MaxHealthFactor = decimal.New(1, 16)

	one = decimal.New(1, 0)
)

// TierPremium rate premium of an asset tier; riskier tiers borrow dearer
func TierPremium(tier core.AssetTier) decimal.Decimal {
	switch tier {
	case core.AssetTierStable:
		return number.Decimal("1")
	case core.AssetTierCrossA:
		return number.Decimal("1.1")
	case core.AssetTierCrossB:
		return number.Decimal("1.25")
	case core.AssetTierIsolated:
		return number.Decimal("1.5")
	}
	return one
}

// TierLiquidationFeeBps liquidation fee of an asset tier in basis points
func TierLiquidationFeeBps(tier core.AssetTier) int64 {
	switch tier {
	case core.AssetTierStable:
		return 300
	case core.AssetTierCrossA:
		return 500
	case core.AssetTierCrossB:
		return 750
	case core.AssetTierIsolated:
		return 1000
	}
	return 500
}

// UtilizationRate totalBorrow / totalSuppliedLiquidity, clamped to [0, 1]
func UtilizationRate(totalBorrow, totalSuppliedLiquidity decimal.Decimal) decimal.Decimal {
	if !totalSuppliedLiquidity.IsPositive() {
		return decimal.Zero
	}

	u := totalBorrow.Div(totalSuppliedLiquidity).Truncate(number.MaxPrecision)
	if u.GreaterThan(one) {
		return one
	}
	if u.IsNegative() {
		return decimal.Zero
	}
	return u
}

// GetBorrowRate annualized borrow rate of a tier at a utilization.
// Jump-rate model: base + u*multiplier below the kink, then the jump
// slope beyond it; the whole curve is scaled by the tier premium, so it
// stays monotone non-decreasing in utilization.
func GetBorrowRate(utilization decimal.Decimal, config *core.ProtocolConfig, tier core.AssetTier) decimal.Decimal {
	var rate decimal.Decimal
	if config.Kink.IsZero() || utilization.LessThanOrEqual(config.Kink) {
		rate = config.BorrowRate.Add(utilization.Mul(config.Multiplier))
	} else {
		normal := config.BorrowRate.Add(config.Kink.Mul(config.Multiplier))
		excess := utilization.Sub(config.Kink)
		rate = normal.Add(excess.Mul(config.JumpMultiplier))
	}

	return rate.Mul(TierPremium(tier)).Truncate(number.MaxPrecision)
}

// GetBorrowRatePerBlock borrow rate per block of a tier at a utilization
func GetBorrowRatePerBlock(utilization decimal.Decimal, config *core.ProtocolConfig, tier core.AssetTier) decimal.Decimal {
	return GetBorrowRate(utilization, config, tier).Div(BlocksPerYear).Truncate(number.MaxPrecision)
}

// GetSupplyRate annualized yield implied by realized share-price growth
// over elapsed blocks. Growth is measured on the price itself, so the
// commission already collected is implicitly reflected.
func GetSupplyRate(sharePrice decimal.Decimal, elapsedBlocks int64) decimal.Decimal {
	if elapsedBlocks <= 0 || !sharePrice.IsPositive() {
		return decimal.Zero
	}

	growth := sharePrice.Sub(one)
	if !growth.IsPositive() {
		return decimal.Zero
	}

	// multiply before divide to keep precision
	return growth.Mul(BlocksPerYear).Div(decimal.NewFromInt(elapsedBlocks)).Truncate(number.MaxPrecision)
}
