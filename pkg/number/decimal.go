package number

import (
	"github.com/shopspring/decimal"
)

// MaxPrecision max precision kept by money math
const MaxPrecision int32 = 16

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// FromBps basis points to fraction
func FromBps(bps int64) decimal.Decimal {
	return decimal.New(bps, -4)
}

// Ceil round up at precision
func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Floor round down at precision
func Floor(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Truncate(precision)
}

// RoundDown value-extraction rounding
func RoundDown(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(MaxPrecision)
}

// RoundUp debt-owed rounding
func RoundUp(d decimal.Decimal) decimal.Decimal {
	return Ceil(d, MaxPrecision)
}
