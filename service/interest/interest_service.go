package interest

import (
	"context"

	"lever/core"
	"lever/internal/lever"
	"lever/pkg/id"

	"github.com/shopspring/decimal"
)

type interestService struct {
	positionStore core.IPositionStore
	vaultStore    core.IVaultStore
	protocolStore core.IProtocolStore
	creditSrv     core.ICreditService
	blockSrv      core.IBlockService
	eventStore    core.IEventStore
}

// New new interest service
func New(
	positionStore core.IPositionStore,
	vaultStore core.IVaultStore,
	protocolStore core.IProtocolStore,
	creditSrv core.ICreditService,
	blockSrv core.IBlockService,
	eventStore core.IEventStore,
) core.IInterestService {
	return &interestService{
		positionStore: positionStore,
		vaultStore:    vaultStore,
		protocolStore: protocolStore,
		creditSrv:     creditSrv,
		blockSrv:      blockSrv,
		eventStore:    eventStore,
	}
}

func (s *interestService) CalculateDebtWithInterest(ctx context.Context, userID string, idx uint64) (decimal.Decimal, error) {
	position, err := s.positionStore.Find(ctx, userID, idx)
	if err != nil {
		return decimal.Zero, err
	}

	debt, _, err := s.debtWithInterest(ctx, position)
	return debt, err
}

func (s *interestService) Accrue(ctx context.Context, position *core.Position) (decimal.Decimal, error) {
	debt, block, err := s.debtWithInterest(ctx, position)
	if err != nil {
		return decimal.Zero, err
	}

	delta := debt.Sub(position.Debt)
	position.Debt = debt
	position.LastAccrualBlock = block

	if !delta.IsPositive() {
		return decimal.Zero, nil
	}

	vault, err := s.vaultStore.Find(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if vault != nil {
		// accrued interest is a receivable: it grows both the loan book
		// and the vault's accounted assets
		vault.TotalBorrow = vault.TotalBorrow.Add(delta)
		vault.TotalBase = vault.TotalBase.Add(delta)
		vault.TotalAccruedInterest = vault.TotalAccruedInterest.Add(delta)
		if err := s.vaultStore.Update(ctx, vault); err != nil {
			return decimal.Zero, err
		}
	}

	if err := s.eventStore.Create(ctx, &core.Event{
		TraceID:    id.GenTraceID(),
		Type:       core.EventTypeInterestAccrued,
		UserID:     position.UserID,
		PositionID: position.ID,
		Amount:     delta,
		Block:      block,
	}); err != nil {
		return decimal.Zero, err
	}

	return delta, nil
}

// debtWithInterest principal compounded per elapsed block at the position
// tier's utilization-sensitive rate; pure, the caller decides whether the
// result is committed
func (s *interestService) debtWithInterest(ctx context.Context, position *core.Position) (decimal.Decimal, int64, error) {
	block, err := s.blockSrv.CurrentBlock(ctx)
	if err != nil {
		return decimal.Zero, 0, err
	}

	if !position.Debt.IsPositive() {
		return position.Debt, block, nil
	}

	config, err := s.protocolStore.Find(ctx)
	if err != nil {
		return decimal.Zero, 0, err
	}

	if config == nil {
		return position.Debt, block, nil
	}

	vault, err := s.vaultStore.Find(ctx)
	if err != nil {
		return decimal.Zero, 0, err
	}

	utilization := decimal.Zero
	if vault != nil {
		utilization = lever.UtilizationRate(vault.TotalBorrow, vault.TotalSuppliedLiquidity)
	}

	tier, err := s.creditSrv.PositionTier(ctx, position)
	if err != nil {
		return decimal.Zero, 0, err
	}

	rate := lever.GetBorrowRatePerBlock(utilization, config, tier)
	debt, err := lever.CompoundDebt(position.Debt, rate, block-position.LastAccrualBlock)
	if err != nil {
		return decimal.Zero, 0, err
	}

	return debt, block, nil
}
