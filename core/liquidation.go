package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SeizedCollateral one asset transferred to the liquidator
type SeizedCollateral struct {
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// LiquidationResult settled outcome of one liquidation
type LiquidationResult struct {
	DebtRepaid decimal.Decimal     `json:"debt_repaid"`
	Fee        decimal.Decimal     `json:"fee"`
	Seized     []*SeizedCollateral `json:"seized"`
}

// GovernanceStake liquidator eligibility stake
type GovernanceStake struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string          `sql:"size:36;unique_index:stake_user_idx" json:"user_id"`
	Amount    decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IStakeStore governance stake store interface
type IStakeStore interface {
	Find(ctx context.Context, userID string) (*GovernanceStake, error)
	Save(ctx context.Context, stake *GovernanceStake) error
}

// ILiquidationService liquidation engine interface
type ILiquidationService interface {
	// HealthFactor liquidationLevel / debt; MaxHealthFactor when debt is zero
	HealthFactor(ctx context.Context, userID string, idx uint64) (decimal.Decimal, error)
	IsLiquidatable(ctx context.Context, userID string, idx uint64) (bool, error)
	// Liquidate clears the whole debt in one atomic step: the liquidator pays
	// debt + fee into the vault and receives 100% of the collateral
	Liquidate(ctx context.Context, liquidator, userID string, idx uint64, maxRepayAmount decimal.Decimal, maxSlippageBps int64) (*LiquidationResult, error)
}
