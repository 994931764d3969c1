package lever

import (
	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

// CheckSlippage compares the quoted value against the executed one. The
// executed value must stay within expected +/- expected*maxSlippageBps.
// A zero expected value means the caller declined to quote and the check
// is skipped.
func CheckSlippage(expected, actual decimal.Decimal, maxSlippageBps int64) error {
	if expected.IsZero() {
		return nil
	}

	if maxSlippageBps < 0 {
		return core.ErrMEVSlippageExceeded
	}

	band := expected.Mul(number.FromBps(maxSlippageBps)).Abs()
	if actual.Sub(expected).Abs().GreaterThan(band) {
		return core.ErrMEVSlippageExceeded
	}

	return nil
}
