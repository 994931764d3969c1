package liquidation

import (
	"context"

	"lever/core"
	"lever/internal/lever"
	"lever/pkg/id"
	"lever/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

type liquidationService struct {
	runner        core.TxRunner
	positionStore core.IPositionStore
	protocolStore core.IProtocolStore
	stakeStore    core.IStakeStore
	guardStore    core.IGuardStore
	eventStore    core.IEventStore
	creditSrv     core.ICreditService
	interestSrv   core.IInterestService
	vaultSrv      core.IVaultService
	blockSrv      core.IBlockService
}

// New new liquidation service
func New(
	runner core.TxRunner,
	positionStore core.IPositionStore,
	protocolStore core.IProtocolStore,
	stakeStore core.IStakeStore,
	guardStore core.IGuardStore,
	eventStore core.IEventStore,
	creditSrv core.ICreditService,
	interestSrv core.IInterestService,
	vaultSrv core.IVaultService,
	blockSrv core.IBlockService,
) core.ILiquidationService {
	return &liquidationService{
		runner:        runner,
		positionStore: positionStore,
		protocolStore: protocolStore,
		stakeStore:    stakeStore,
		guardStore:    guardStore,
		eventStore:    eventStore,
		creditSrv:     creditSrv,
		interestSrv:   interestSrv,
		vaultSrv:      vaultSrv,
		blockSrv:      blockSrv,
	}
}

func (s *liquidationService) HealthFactor(ctx context.Context, userID string, idx uint64) (decimal.Decimal, error) {
	debt, err := s.interestSrv.CalculateDebtWithInterest(ctx, userID, idx)
	if err != nil {
		return decimal.Zero, err
	}

	limits, err := s.creditSrv.CalculateLimits(ctx, userID, idx)
	if err != nil {
		return decimal.Zero, err
	}

	return lever.HealthFactor(limits.LiquidationLevel, debt), nil
}

func (s *liquidationService) IsLiquidatable(ctx context.Context, userID string, idx uint64) (bool, error) {
	hf, err := s.HealthFactor(ctx, userID, idx)
	if err != nil {
		return false, err
	}

	return hf.LessThan(decimal.New(1, 0)), nil
}

func (s *liquidationService) Liquidate(ctx context.Context, liquidator, userID string, idx uint64, maxRepayAmount decimal.Decimal, maxSlippageBps int64) (*core.LiquidationResult, error) {
	log := logger.FromContext(ctx).WithField("service", "liquidation")

	if liquidator == "" {
		return nil, core.ErrZeroAddress
	}

	config, err := s.protocolStore.Find(ctx)
	if err != nil {
		return nil, err
	}

	stake, err := s.stakeStore.Find(ctx, liquidator)
	if err != nil {
		return nil, err
	}

	if config != nil && stake.Amount.LessThan(config.LiquidatorThreshold) {
		return nil, core.ErrNotEnoughGovernanceTokens
	}

	var result *core.LiquidationResult
	err = s.runner.Tx(ctx, func(ctx context.Context) error {
		block, err := s.blockSrv.CurrentBlock(ctx)
		if err != nil {
			return err
		}

		if err := s.guardStore.Acquire(ctx, liquidator, block); err != nil {
			return err
		}

		position, err := s.positionStore.Find(ctx, userID, idx)
		if err != nil {
			return err
		}

		if position.Status != core.PositionStatusActive {
			return core.ErrNotLiquidatable
		}

		if _, err := s.interestSrv.Accrue(ctx, position); err != nil {
			return err
		}

		limits, err := s.creditSrv.CalculateLimits(ctx, userID, idx)
		if err != nil {
			return err
		}

		if !lever.IsLiquidatable(limits.LiquidationLevel, position.Debt) {
			return core.ErrNotLiquidatable
		}

		tier, err := s.creditSrv.PositionTier(ctx, position)
		if err != nil {
			return err
		}

		fee := number.RoundUp(position.Debt.Mul(number.FromBps(lever.TierLiquidationFeeBps(tier))))
		total := position.Debt.Add(fee)

		if maxRepayAmount.IsPositive() && maxRepayAmount.LessThan(core.MaxAmount) {
			if total.GreaterThan(maxRepayAmount) {
				return core.ErrMEVSlippageExceeded
			}
			if err := lever.CheckSlippage(maxRepayAmount, total, maxSlippageBps); err != nil {
				return err
			}
		}

		// the liquidator settles debt + fee into the vault and takes the
		// whole collateral basket
		if err := s.vaultSrv.Repay(ctx, position.Debt, liquidator); err != nil {
			return err
		}

		if fee.IsPositive() {
			if err := s.vaultSrv.BoostYield(ctx, liquidator, fee); err != nil {
				return err
			}
		}

		holdings, err := s.positionStore.Collaterals(ctx, position.ID)
		if err != nil {
			return err
		}

		seized := make([]*core.SeizedCollateral, 0, len(holdings))
		for _, holding := range holdings {
			if !holding.Amount.IsPositive() {
				continue
			}
			seized = append(seized, &core.SeizedCollateral{
				AssetID: holding.AssetID,
				Amount:  holding.Amount,
			})
		}

		if err := s.positionStore.DeleteCollaterals(ctx, position.ID); err != nil {
			return err
		}

		result = &core.LiquidationResult{
			DebtRepaid: position.Debt,
			Fee:        fee,
			Seized:     seized,
		}

		position.Debt = decimal.Zero
		position.Status = core.PositionStatusLiquidated
		if err := s.positionStore.Update(ctx, position); err != nil {
			return err
		}

		extra := core.EventExtraData{}
		extra.Put("liquidator", liquidator)
		extra.Put("fee", fee)
		extra.Put("seized", seized)

		log.WithField("position", position.ID).Infoln("position liquidated")

		return s.eventStore.Create(ctx, &core.Event{
			TraceID:    id.GenTraceID(),
			Type:       core.EventTypeLiquidated,
			UserID:     userID,
			PositionID: position.ID,
			Amount:     result.DebtRepaid,
			Block:      block,
			Extra:      types.JSONText(extra.Format()),
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
