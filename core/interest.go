package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// IInterestService interest accrual engine interface
type IInterestService interface {
	// CalculateDebtWithInterest principal + accrued interest, pure view
	CalculateDebtWithInterest(ctx context.Context, userID string, idx uint64) (decimal.Decimal, error)
	// Accrue commits pending interest on the position: bumps the debt, moves
	// lastAccrualBlock to now, mirrors the delta into the vault totals and
	// journals an interest event. Returns the interest delta. Must run inside
	// the caller's transaction before any debt-changing operation.
	Accrue(ctx context.Context, position *Position) (decimal.Decimal, error)
}
