package credit

import (
	"context"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

type creditService struct {
	positionStore core.IPositionStore
	vaultStore    core.IVaultStore
	registry      core.AssetRegistry
}

// New new credit service
func New(
	positionStore core.IPositionStore,
	vaultStore core.IVaultStore,
	registry core.AssetRegistry,
) core.ICreditService {
	return &creditService{
		positionStore: positionStore,
		vaultStore:    vaultStore,
		registry:      registry,
	}
}

func (s *creditService) CalculateLimits(ctx context.Context, userID string, idx uint64) (*core.Limits, error) {
	position, err := s.positionStore.Find(ctx, userID, idx)
	if err != nil {
		return nil, err
	}

	return s.limits(ctx, position)
}

func (s *creditService) CalculateCreditLimit(ctx context.Context, userID string, idx uint64) (decimal.Decimal, error) {
	limits, err := s.CalculateLimits(ctx, userID, idx)
	if err != nil {
		return decimal.Zero, err
	}

	return limits.CreditLimit, nil
}

// limits is additive across assets: value, credit limit and liquidation
// level each sum the per-asset contributions
func (s *creditService) limits(ctx context.Context, position *core.Position) (*core.Limits, error) {
	holdings, err := s.positionStore.Collaterals(ctx, position.ID)
	if err != nil {
		return nil, err
	}

	limits := &core.Limits{
		CreditLimit:      decimal.Zero,
		LiquidationLevel: decimal.Zero,
		TotalValue:       decimal.Zero,
	}

	for _, holding := range holdings {
		if !holding.Amount.IsPositive() {
			continue
		}

		asset, err := s.registry.GetAssetConfig(ctx, holding.AssetID)
		if err != nil {
			return nil, err
		}

		price, err := s.registry.GetPrice(ctx, holding.AssetID)
		if err != nil {
			return nil, err
		}

		value := number.RoundDown(holding.Amount.Mul(price))
		limits.TotalValue = limits.TotalValue.Add(value)
		limits.CreditLimit = limits.CreditLimit.Add(number.RoundDown(value.Mul(number.FromBps(asset.BorrowThreshold))))
		limits.LiquidationLevel = limits.LiquidationLevel.Add(number.RoundDown(value.Mul(number.FromBps(asset.LiquidationThreshold))))
	}

	return limits, nil
}

func (s *creditService) PositionTier(ctx context.Context, position *core.Position) (core.AssetTier, error) {
	holdings, err := s.positionStore.Collaterals(ctx, position.ID)
	if err != nil {
		return core.AssetTierStable, err
	}

	tier := core.AssetTierStable
	for _, holding := range holdings {
		if !holding.Amount.IsPositive() {
			continue
		}

		asset, err := s.registry.GetAssetConfig(ctx, holding.AssetID)
		if err != nil {
			return core.AssetTierStable, err
		}

		if asset.Tier > tier {
			tier = asset.Tier
		}
	}

	return tier, nil
}

func (s *creditService) IsCollateralized(ctx context.Context) (bool, error) {
	vault, err := s.vaultStore.Find(ctx)
	if err != nil {
		return false, err
	}

	if vault == nil || !vault.TotalBorrow.IsPositive() {
		return true, nil
	}

	totals, err := s.positionStore.TotalSuppliedByAsset(ctx)
	if err != nil {
		return false, err
	}

	totalValue := decimal.Zero
	for assetID, amount := range totals {
		if !amount.IsPositive() {
			continue
		}

		price, err := s.registry.GetPrice(ctx, assetID)
		if err != nil {
			return false, err
		}

		totalValue = totalValue.Add(number.RoundDown(amount.Mul(price)))
	}

	return totalValue.GreaterThanOrEqual(vault.TotalBorrow), nil
}
