package lever

import (
	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

var (
	// MaxAccrualBlocks hard bound on elapsed blocks per accrual (~10 years);
	// beyond it the accrual product is treated as an overflow
	MaxAccrualBlocks int64 = 21024000
	// MaxRatePerBlock hard bound on the per-block rate fed into the accrual
	MaxRatePerBlock = number.Decimal("0.0001")

	// powPrecision working precision for the compounding product
	powPrecision int32 = 32
)

// CompoundDebt principal * (1 + ratePerBlock)^elapsedBlocks, rounded up.
// Inputs outside the hard bounds abort with ErrAccrualOverflow instead of
// truncating or wrapping.
func CompoundDebt(principal, ratePerBlock decimal.Decimal, elapsedBlocks int64) (decimal.Decimal, error) {
	if elapsedBlocks < 0 || elapsedBlocks > MaxAccrualBlocks {
		return decimal.Zero, core.ErrAccrualOverflow
	}

	if ratePerBlock.IsNegative() || ratePerBlock.GreaterThan(MaxRatePerBlock) {
		return decimal.Zero, core.ErrAccrualOverflow
	}

	if elapsedBlocks == 0 || principal.IsZero() || ratePerBlock.IsZero() {
		return principal, nil
	}

	growth := powTruncated(decimal.New(1, 0).Add(ratePerBlock), elapsedBlocks)
	return number.RoundUp(principal.Mul(growth)), nil
}

// powTruncated binary exponentiation with the working precision bounded at
// every step, so the digit count cannot explode for large exponents
func powTruncated(base decimal.Decimal, exp int64) decimal.Decimal {
	result := decimal.New(1, 0)
	b := base.Truncate(powPrecision)

	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(b).Truncate(powPrecision)
		}
		b = b.Mul(b).Truncate(powPrecision)
		exp >>= 1
	}

	return result
}
