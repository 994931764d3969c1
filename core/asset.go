package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AssetTier risk tier of a collateral asset
type AssetTier int

const (
	// AssetTierStable stable coins
	AssetTierStable AssetTier = iota
	// AssetTierCrossA blue-chip cross collateral
	AssetTierCrossA
	// AssetTierCrossB long-tail cross collateral
	AssetTierCrossB
	// AssetTierIsolated isolation-mode only collateral
	AssetTierIsolated
)

func (t AssetTier) String() string {
	switch t {
	case AssetTierStable:
		return "STABLE"
	case AssetTierCrossA:
		return "CROSS_A"
	case AssetTierCrossB:
		return "CROSS_B"
	case AssetTierIsolated:
		return "ISOLATED"
	}
	return "UNKNOWN"
}

// AssetConfig per-asset risk configuration, read-only to the core.
// Thresholds are basis-point fractions of collateral value and
// borrow_threshold <= liquidation_threshold always holds.
type AssetConfig struct {
	ID                   uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID              string          `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	Symbol               string          `sql:"size:20" json:"symbol"`
	Decimals             int32           `sql:"default:8" json:"decimals"`
	Tier                 AssetTier       `json:"tier"`
	BorrowThreshold      int64           `json:"borrow_threshold"`
	LiquidationThreshold int64           `json:"liquidation_threshold"`
	MaxSupplyThreshold   decimal.Decimal `sql:"type:decimal(32,16)" json:"max_supply_threshold"`
	// IsolationDebtCap nonzero only for ISOLATED tier assets
	IsolationDebtCap decimal.Decimal `sql:"type:decimal(32,16)" json:"isolation_debt_cap"`
	Version          int64           `sql:"default:0" json:"version"`
	CreatedAt        time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Price price of an asset in base currency
type Price struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:36;unique_index:price_asset_idx" json:"asset_id"`
	Price     decimal.Decimal `sql:"type:decimal(32,16)" json:"price"`
	Version   int64           `sql:"default:0" json:"version"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AssetRegistry external collaborator: asset configuration and pricing.
// A stale or missing price is a hard failure, never a default value.
type AssetRegistry interface {
	GetAssetConfig(ctx context.Context, assetID string) (*AssetConfig, error)
	GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
}

// IRegistryService registry interface with the privileged write side
type IRegistryService interface {
	AssetRegistry

	RegisterAsset(ctx context.Context, caller string, asset *AssetConfig) error
	SetPrice(ctx context.Context, assetID string, price decimal.Decimal) error
}

// IRegistryStore registry store interface
type IRegistryStore interface {
	SaveAsset(ctx context.Context, asset *AssetConfig) error
	FindAsset(ctx context.Context, assetID string) (*AssetConfig, error)
	AllAssets(ctx context.Context) ([]*AssetConfig, error)
	SavePrice(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error
	FindPrice(ctx context.Context, assetID string) (*Price, error)
}
