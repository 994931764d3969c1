package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Limits blended borrowing limits of a position
type Limits struct {
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	LiquidationLevel decimal.Decimal `json:"liquidation_level"`
	TotalValue       decimal.Decimal `json:"total_value"`
}

// ICreditService credit engine interface
type ICreditService interface {
	// CalculateLimits values every held asset at the registry price and
	// weights it by the asset's thresholds; an empty position is all zeros
	CalculateLimits(ctx context.Context, userID string, idx uint64) (*Limits, error)
	CalculateCreditLimit(ctx context.Context, userID string, idx uint64) (decimal.Decimal, error)
	// PositionTier the highest-risk tier among held assets
	PositionTier(ctx context.Context, position *Position) (AssetTier, error)
	// IsCollateralized protocol-wide solvency: aggregate collateral value >= total borrow
	IsCollateralized(ctx context.Context) (bool, error)
}
