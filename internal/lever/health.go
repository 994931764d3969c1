package lever

import (
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

// HealthFactor liquidationLevel / debt; MaxHealthFactor when there is no debt
func HealthFactor(liquidationLevel, debt decimal.Decimal) decimal.Decimal {
	if !debt.IsPositive() {
		return MaxHealthFactor
	}

	return liquidationLevel.Div(debt).Truncate(number.MaxPrecision)
}

// IsLiquidatable health factor below one, i.e. liquidationLevel < debt
func IsLiquidatable(liquidationLevel, debt decimal.Decimal) bool {
	return HealthFactor(liquidationLevel, debt).LessThan(decimal.New(1, 0))
}
