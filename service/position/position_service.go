package position

import (
	"context"

	"lever/core"
	"lever/internal/lever"
	"lever/pkg/id"
	"lever/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type positionService struct {
	runner        core.TxRunner
	config        *core.Config
	positionStore core.IPositionStore
	protocolStore core.IProtocolStore
	guardStore    core.IGuardStore
	eventStore    core.IEventStore
	registry      core.AssetRegistry
	creditSrv     core.ICreditService
	interestSrv   core.IInterestService
	vaultSrv      core.IVaultService
	blockSrv      core.IBlockService
}

// New new position service
func New(
	runner core.TxRunner,
	config *core.Config,
	positionStore core.IPositionStore,
	protocolStore core.IProtocolStore,
	guardStore core.IGuardStore,
	eventStore core.IEventStore,
	registry core.AssetRegistry,
	creditSrv core.ICreditService,
	interestSrv core.IInterestService,
	vaultSrv core.IVaultService,
	blockSrv core.IBlockService,
) core.IPositionService {
	return &positionService{
		runner:        runner,
		config:        config,
		positionStore: positionStore,
		protocolStore: protocolStore,
		guardStore:    guardStore,
		eventStore:    eventStore,
		registry:      registry,
		creditSrv:     creditSrv,
		interestSrv:   interestSrv,
		vaultSrv:      vaultSrv,
		blockSrv:      blockSrv,
	}
}

func (s *positionService) Open(ctx context.Context, userID, assetID string, isolated bool) (*core.Position, error) {
	if userID == "" {
		return nil, core.ErrZeroAddress
	}

	asset, err := s.registry.GetAssetConfig(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if asset.Tier == core.AssetTierIsolated && !isolated {
		return nil, core.ErrIsolatedAssetViolation
	}

	var position *core.Position
	err = s.runner.Tx(ctx, func(ctx context.Context) error {
		block, err := s.acquireGuard(ctx, userID)
		if err != nil {
			return err
		}

		idx, err := s.positionStore.CountByUser(ctx, userID)
		if err != nil {
			return err
		}

		position = &core.Position{
			UserID:           userID,
			Idx:              idx,
			Isolated:         isolated,
			Status:           core.PositionStatusActive,
			Debt:             decimal.Zero,
			LastAccrualBlock: block,
		}

		if err := s.positionStore.Create(ctx, position); err != nil {
			return err
		}

		return s.eventStore.Create(ctx, &core.Event{
			TraceID:    id.GenTraceID(),
			Type:       core.EventTypePositionOpened,
			UserID:     userID,
			PositionID: position.ID,
			AssetID:    assetID,
			Block:      block,
		})
	})
	if err != nil {
		return nil, err
	}

	return position, nil
}

func (s *positionService) SupplyCollateral(ctx context.Context, userID, assetID string, amount decimal.Decimal, idx uint64) error {
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		block, err := s.acquireGuard(ctx, userID)
		if err != nil {
			return err
		}

		position, err := s.activePosition(ctx, userID, idx)
		if err != nil {
			return err
		}

		asset, err := s.registry.GetAssetConfig(ctx, assetID)
		if err != nil {
			return err
		}

		if asset.Tier == core.AssetTierIsolated && !position.Isolated {
			return core.ErrIsolatedAssetViolation
		}

		if position.Isolated {
			holdings, err := s.positionStore.Collaterals(ctx, position.ID)
			if err != nil {
				return err
			}
			for _, h := range holdings {
				if h.AssetID != assetID && h.Amount.IsPositive() {
					return core.ErrInvalidAssetForIsolation
				}
			}
		}

		if err := s.checkSupplyCaps(ctx, asset, amount); err != nil {
			return err
		}

		holding, err := s.positionStore.FindCollateral(ctx, position.ID, assetID)
		if err != nil {
			return err
		}
		if holding == nil {
			holding = &core.CollateralHolding{
				PositionID: position.ID,
				AssetID:    assetID,
				Amount:     decimal.Zero,
			}
		}

		holding.Amount = holding.Amount.Add(amount)
		if err := s.positionStore.SaveCollateral(ctx, holding); err != nil {
			return err
		}

		return s.eventStore.Create(ctx, &core.Event{
			TraceID:    id.GenTraceID(),
			Type:       core.EventTypeCollateralSupplied,
			UserID:     userID,
			PositionID: position.ID,
			AssetID:    assetID,
			Amount:     amount,
			Block:      block,
		})
	})
}

func (s *positionService) WithdrawCollateral(ctx context.Context, userID, assetID string, amount decimal.Decimal, idx uint64, expectedCreditLimit decimal.Decimal, maxSlippageBps int64) error {
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		block, err := s.acquireGuard(ctx, userID)
		if err != nil {
			return err
		}

		position, err := s.activePosition(ctx, userID, idx)
		if err != nil {
			return err
		}

		if _, err := s.interestSrv.Accrue(ctx, position); err != nil {
			return err
		}

		holding, err := s.positionStore.FindCollateral(ctx, position.ID, assetID)
		if err != nil {
			return err
		}
		if holding == nil || holding.Amount.LessThan(amount) {
			return core.ErrInvalidAmount
		}

		holding.Amount = holding.Amount.Sub(amount)
		if err := s.positionStore.SaveCollateral(ctx, holding); err != nil {
			return err
		}

		// the remaining basket must still cover the debt at the borrow
		// threshold; the store read below sees the reduced holding
		limits, err := s.creditSrv.CalculateLimits(ctx, userID, idx)
		if err != nil {
			return err
		}

		if position.Debt.GreaterThan(limits.CreditLimit) {
			return core.ErrCreditLimitExceeded
		}

		if err := lever.CheckSlippage(expectedCreditLimit, limits.CreditLimit, maxSlippageBps); err != nil {
			return err
		}

		if err := s.positionStore.Update(ctx, position); err != nil {
			return err
		}

		return s.eventStore.Create(ctx, &core.Event{
			TraceID:    id.GenTraceID(),
			Type:       core.EventTypeCollateralWithdrawn,
			UserID:     userID,
			PositionID: position.ID,
			AssetID:    assetID,
			Amount:     amount,
			Block:      block,
		})
	})
}

func (s *positionService) Borrow(ctx context.Context, userID string, idx uint64, amount, expectedCreditLimit decimal.Decimal, maxSlippageBps int64) error {
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		block, err := s.acquireGuard(ctx, userID)
		if err != nil {
			return err
		}

		position, err := s.activePosition(ctx, userID, idx)
		if err != nil {
			return err
		}

		// pending interest joins the debt before the new principal
		if _, err := s.interestSrv.Accrue(ctx, position); err != nil {
			return err
		}

		limits, err := s.creditSrv.CalculateLimits(ctx, userID, idx)
		if err != nil {
			return err
		}

		if err := lever.CheckSlippage(expectedCreditLimit, limits.CreditLimit, maxSlippageBps); err != nil {
			return err
		}

		newDebt := position.Debt.Add(amount)
		if newDebt.GreaterThan(limits.CreditLimit) {
			return core.ErrCreditLimitExceeded
		}

		if position.Isolated {
			if err := s.checkIsolationDebtCap(ctx, position, newDebt); err != nil {
				return err
			}
		}

		if err := s.vaultSrv.Borrow(ctx, amount, userID); err != nil {
			return err
		}

		position.Debt = newDebt
		if err := s.positionStore.Update(ctx, position); err != nil {
			return err
		}

		return s.eventStore.Create(ctx, &core.Event{
			TraceID:    id.GenTraceID(),
			Type:       core.EventTypeBorrowed,
			UserID:     userID,
			PositionID: position.ID,
			Amount:     amount,
			Block:      block,
		})
	})
}

func (s *positionService) Repay(ctx context.Context, userID string, idx uint64, amount, expectedDebt decimal.Decimal, maxSlippageBps int64) error {
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		block, err := s.acquireGuard(ctx, userID)
		if err != nil {
			return err
		}

		position, err := s.activePosition(ctx, userID, idx)
		if err != nil {
			return err
		}

		if _, err := s.interestSrv.Accrue(ctx, position); err != nil {
			return err
		}

		if err := lever.CheckSlippage(expectedDebt, position.Debt, maxSlippageBps); err != nil {
			return err
		}

		// the sentinel means the full debt; anything above it is rejected
		// rather than silently refunded
		if amount.GreaterThanOrEqual(core.MaxAmount) {
			amount = position.Debt
		} else if amount.GreaterThan(position.Debt) {
			return core.ErrInvalidAmount
		}

		if !amount.IsPositive() {
			return core.ErrZeroAmount
		}

		if err := s.vaultSrv.Repay(ctx, amount, userID); err != nil {
			return err
		}

		position.Debt = position.Debt.Sub(amount)
		if err := s.positionStore.Update(ctx, position); err != nil {
			return err
		}

		return s.eventStore.Create(ctx, &core.Event{
			TraceID:    id.GenTraceID(),
			Type:       core.EventTypeRepaid,
			UserID:     userID,
			PositionID: position.ID,
			Amount:     amount,
			Block:      block,
		})
	})
}

func (s *positionService) Exit(ctx context.Context, userID string, idx uint64, amount decimal.Decimal, maxSlippageBps int64) error {
	log := logger.FromContext(ctx).WithField("service", "position")

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		block, err := s.acquireGuard(ctx, userID)
		if err != nil {
			return err
		}

		position, err := s.activePosition(ctx, userID, idx)
		if err != nil {
			return err
		}

		if _, err := s.interestSrv.Accrue(ctx, position); err != nil {
			return err
		}

		if position.Debt.IsPositive() {
			// amount is the caller's debt quote; the exit always settles
			// the whole accrued debt
			if amount.LessThan(core.MaxAmount) {
				if err := lever.CheckSlippage(amount, position.Debt, maxSlippageBps); err != nil {
					return err
				}
			}

			if err := s.vaultSrv.Repay(ctx, position.Debt, userID); err != nil {
				return err
			}
			position.Debt = decimal.Zero
		}

		holdings, err := s.positionStore.Collaterals(ctx, position.ID)
		if err != nil {
			return err
		}

		for _, holding := range holdings {
			if !holding.Amount.IsPositive() {
				continue
			}

			if err := s.eventStore.Create(ctx, &core.Event{
				TraceID:    id.GenTraceID(),
				Type:       core.EventTypeCollateralWithdrawn,
				UserID:     userID,
				PositionID: position.ID,
				AssetID:    holding.AssetID,
				Amount:     holding.Amount,
				Block:      block,
			}); err != nil {
				return err
			}
		}

		if err := s.positionStore.DeleteCollaterals(ctx, position.ID); err != nil {
			return err
		}

		position.Status = core.PositionStatusClosed
		if err := s.positionStore.Update(ctx, position); err != nil {
			return err
		}

		log.WithField("position", position.ID).Infoln("position closed")

		return s.eventStore.Create(ctx, &core.Event{
			TraceID:    id.GenTraceID(),
			Type:       core.EventTypePositionClosed,
			UserID:     userID,
			PositionID: position.ID,
			Block:      block,
		})
	})
}

func (s *positionService) GetUserPosition(ctx context.Context, userID string, idx uint64) (*core.Position, error) {
	return s.positionStore.Find(ctx, userID, idx)
}

func (s *positionService) GetUserPositions(ctx context.Context, userID string) ([]*core.Position, error) {
	return s.positionStore.FindByUser(ctx, userID)
}

func (s *positionService) GetPositionCollateralAssets(ctx context.Context, userID string, idx uint64) ([]string, error) {
	position, err := s.positionStore.Find(ctx, userID, idx)
	if err != nil {
		return nil, err
	}

	holdings, err := s.positionStore.Collaterals(ctx, position.ID)
	if err != nil {
		return nil, err
	}

	assets := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		if holding.Amount.IsPositive() {
			assets = append(assets, holding.AssetID)
		}
	}

	return assets, nil
}

func (s *positionService) GetCollateralAmount(ctx context.Context, userID string, idx uint64, assetID string) (decimal.Decimal, error) {
	position, err := s.positionStore.Find(ctx, userID, idx)
	if err != nil {
		return decimal.Zero, err
	}

	holding, err := s.positionStore.FindCollateral(ctx, position.ID, assetID)
	if err != nil {
		return decimal.Zero, err
	}
	if holding == nil {
		return decimal.Zero, nil
	}

	return holding.Amount, nil
}

func (s *positionService) acquireGuard(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, core.ErrZeroAddress
	}

	block, err := s.blockSrv.CurrentBlock(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.guardStore.Acquire(ctx, userID, block); err != nil {
		return 0, err
	}

	return block, nil
}

func (s *positionService) activePosition(ctx context.Context, userID string, idx uint64) (*core.Position, error) {
	position, err := s.positionStore.Find(ctx, userID, idx)
	if err != nil {
		return nil, err
	}

	if position.Status != core.PositionStatusActive {
		return nil, core.ErrInvalidPosition
	}

	return position, nil
}

func (s *positionService) checkSupplyCaps(ctx context.Context, asset *core.AssetConfig, amount decimal.Decimal) error {
	totals, err := s.positionStore.TotalSuppliedByAsset(ctx)
	if err != nil {
		return err
	}

	if asset.MaxSupplyThreshold.IsPositive() {
		if totals[asset.AssetID].Add(amount).GreaterThan(asset.MaxSupplyThreshold) {
			return core.ErrAssetCapacityReached
		}
	}

	config, err := s.protocolStore.Find(ctx)
	if err != nil {
		return err
	}

	if config == nil || !config.PoolSupplyCap.IsPositive() {
		return nil
	}

	price, err := s.registry.GetPrice(ctx, asset.AssetID)
	if err != nil {
		return err
	}

	poolValue := number.RoundDown(amount.Mul(price))
	for assetID, total := range totals {
		if !total.IsPositive() {
			continue
		}

		p, err := s.registry.GetPrice(ctx, assetID)
		if err != nil {
			return err
		}
		poolValue = poolValue.Add(number.RoundDown(total.Mul(p)))
	}

	if poolValue.GreaterThan(config.PoolSupplyCap) {
		return core.ErrPoolLiquidityLimitReached
	}

	return nil
}

func (s *positionService) checkIsolationDebtCap(ctx context.Context, position *core.Position, newDebt decimal.Decimal) error {
	holdings, err := s.positionStore.Collaterals(ctx, position.ID)
	if err != nil {
		return err
	}

	for _, holding := range holdings {
		if !holding.Amount.IsPositive() {
			continue
		}

		asset, err := s.registry.GetAssetConfig(ctx, holding.AssetID)
		if err != nil {
			return err
		}

		if asset.IsolationDebtCap.IsPositive() && newDebt.GreaterThan(asset.IsolationDebtCap) {
			return core.ErrIsolationDebtCapExceeded
		}
	}

	return nil
}
