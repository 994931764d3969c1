package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PositionStatus position lifecycle status
type PositionStatus int

const (
	// PositionStatusActive active
	PositionStatusActive PositionStatus = iota
	// PositionStatusClosed closed by exit
	PositionStatusClosed
	// PositionStatusLiquidated closed by liquidation
	PositionStatusLiquidated
)

func (s PositionStatus) String() string {
	switch s {
	case PositionStatusActive:
		return "ACTIVE"
	case PositionStatusClosed:
		return "CLOSED"
	case PositionStatusLiquidated:
		return "LIQUIDATED"
	}
	return "UNKNOWN"
}

// MaxAmount sentinel for "repay the full debt"
var MaxAmount = decimal.New(1, 30)

// Position a borrower's accounting unit holding collateral and debt.
// Transitions are one-way ACTIVE->CLOSED or ACTIVE->LIQUIDATED; a
// closed or liquidated position has zero debt and zero collateral.
type Position struct {
	ID       uint64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID   string         `sql:"size:36;unique_index:user_position_idx" json:"user_id"`
	Idx      uint64         `sql:"unique_index:user_position_idx" json:"idx"`
	Isolated bool           `json:"isolated"`
	Status   PositionStatus `sql:"default:0" json:"status"`
	// Debt principal plus committed interest, in base currency
	Debt decimal.Decimal `sql:"type:decimal(32,16)" json:"debt"`
	// LastAccrualBlock block of the last committed interest accrual
	LastAccrualBlock int64     `sql:"default:0" json:"last_accrual_block"`
	Version          int64     `sql:"default:0" json:"version"`
	CreatedAt        time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// CollateralHolding collateral custody record of one asset inside one position
type CollateralHolding struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	PositionID uint64          `sql:"unique_index:position_asset_idx" json:"position_id"`
	AssetID    string          `sql:"size:36;unique_index:position_asset_idx" json:"asset_id"`
	Amount     decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Version    int64           `sql:"default:0" json:"version"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IPositionStore position store interface
type IPositionStore interface {
	Create(ctx context.Context, position *Position) error
	Find(ctx context.Context, userID string, idx uint64) (*Position, error)
	FindByUser(ctx context.Context, userID string) ([]*Position, error)
	All(ctx context.Context) ([]*Position, error)
	CountByUser(ctx context.Context, userID string) (uint64, error)
	Update(ctx context.Context, position *Position) error
	Collaterals(ctx context.Context, positionID uint64) ([]*CollateralHolding, error)
	FindCollateral(ctx context.Context, positionID uint64, assetID string) (*CollateralHolding, error)
	SaveCollateral(ctx context.Context, holding *CollateralHolding) error
	DeleteCollaterals(ctx context.Context, positionID uint64) error
	// TotalSuppliedByAsset aggregate supplied amount per asset across all positions
	TotalSuppliedByAsset(ctx context.Context) (map[string]decimal.Decimal, error)
}

// IPositionService position ledger interface
type IPositionService interface {
	Open(ctx context.Context, userID, assetID string, isolated bool) (*Position, error)
	SupplyCollateral(ctx context.Context, userID, assetID string, amount decimal.Decimal, idx uint64) error
	WithdrawCollateral(ctx context.Context, userID, assetID string, amount decimal.Decimal, idx uint64, expectedCreditLimit decimal.Decimal, maxSlippageBps int64) error
	Borrow(ctx context.Context, userID string, idx uint64, amount, expectedCreditLimit decimal.Decimal, maxSlippageBps int64) error
	Repay(ctx context.Context, userID string, idx uint64, amount, expectedDebt decimal.Decimal, maxSlippageBps int64) error
	Exit(ctx context.Context, userID string, idx uint64, amount decimal.Decimal, maxSlippageBps int64) error
	GetUserPosition(ctx context.Context, userID string, idx uint64) (*Position, error)
	GetUserPositions(ctx context.Context, userID string) ([]*Position, error)
	GetPositionCollateralAssets(ctx context.Context, userID string, idx uint64) ([]string, error)
	GetCollateralAmount(ctx context.Context, userID string, idx uint64, assetID string) (decimal.Decimal, error)
}
