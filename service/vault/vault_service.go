package vault

import (
	"context"
	"sync/atomic"

	"lever/core"
	"lever/internal/lever"
	"lever/pkg/id"
	"lever/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

const genesisBlockKey = "vault_genesis_block"

type vaultService struct {
	runner        core.TxRunner
	config        *core.Config
	vaultStore    core.IVaultStore
	lenderStore   core.ILenderStore
	protocolStore core.IProtocolStore
	guardStore    core.IGuardStore
	eventStore    core.IEventStore
	blockSrv      core.IBlockService
	properties    property.Store

	// loaning is the flash-loan busy flag: no vault mutation is accepted
	// while funds are out with a receiver callback
	loaning int32
}

// New new vault service
func New(
	runner core.TxRunner,
	config *core.Config,
	vaultStore core.IVaultStore,
	lenderStore core.ILenderStore,
	protocolStore core.IProtocolStore,
	guardStore core.IGuardStore,
	eventStore core.IEventStore,
	blockSrv core.IBlockService,
	properties property.Store,
) core.IVaultService {
	return &vaultService{
		runner:        runner,
		config:        config,
		vaultStore:    vaultStore,
		lenderStore:   lenderStore,
		protocolStore: protocolStore,
		guardStore:    guardStore,
		eventStore:    eventStore,
		blockSrv:      blockSrv,
		properties:    properties,
	}
}

func (s *vaultService) Bootstrap(ctx context.Context, caller string) error {
	if !s.config.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		vault, err := s.vaultStore.Find(ctx)
		if err != nil {
			return err
		}
		if vault != nil {
			return core.ErrAlreadyInitialized
		}

		block, err := s.blockSrv.CurrentBlock(ctx)
		if err != nil {
			return err
		}

		vault = &core.VaultState{
			ID:                     1,
			TotalBase:              decimal.Zero,
			TotalBorrow:            decimal.Zero,
			TotalSuppliedLiquidity: decimal.Zero,
			TotalAccruedInterest:   decimal.Zero,
			TotalShares:            decimal.Zero,
			GenesisBlock:           block,
		}

		if err := s.vaultStore.Create(ctx, vault); err != nil {
			return err
		}

		return s.properties.Save(ctx, genesisBlockKey, block)
	})
}

func (s *vaultService) Deposit(ctx context.Context, userID string, amount, expectedShares decimal.Decimal, maxSlippageBps int64) (decimal.Decimal, error) {
	if err := s.checkEntry(userID, amount); err != nil {
		return decimal.Zero, err
	}

	var shares decimal.Decimal
	err := s.runner.Tx(ctx, func(ctx context.Context) error {
		block, vault, err := s.guardedVault(ctx, userID)
		if err != nil {
			return err
		}

		shares = s.sharesForDeposit(vault, amount)
		if !shares.IsPositive() {
			return core.ErrInvalidAmount
		}

		if err := lever.CheckSlippage(expectedShares, shares, maxSlippageBps); err != nil {
			return err
		}

		vault.TotalBase = vault.TotalBase.Add(amount)
		vault.TotalSuppliedLiquidity = vault.TotalSuppliedLiquidity.Add(amount)
		vault.TotalShares = vault.TotalShares.Add(shares)
		if err := s.vaultStore.Update(ctx, vault); err != nil {
			return err
		}

		lenderAcc, err := s.lenderStore.Find(ctx, userID)
		if err != nil {
			return err
		}
		lenderAcc.Shares = lenderAcc.Shares.Add(shares)
		lenderAcc.Principal = lenderAcc.Principal.Add(amount)
		if err := s.lenderStore.Save(ctx, lenderAcc); err != nil {
			return err
		}

		return s.eventStore.Create(ctx, &core.Event{
			TraceID: id.GenTraceID(),
			Type:    core.EventTypeLiquidityDeposited,
			UserID:  userID,
			Amount:  amount,
			Block:   block,
		})
	})
	if err != nil {
		return decimal.Zero, err
	}

	return shares, nil
}

func (s *vaultService) Mint(ctx context.Context, userID string, shares, expectedAmount decimal.Decimal, maxSlippageBps int64) (decimal.Decimal, error) {
	if err := s.checkEntry(userID, shares); err != nil {
		return decimal.Zero, err
	}

	var amount decimal.Decimal
	err := s.runner.Tx(ctx, func(ctx context.Context) error {
		block, vault, err := s.guardedVault(ctx, userID)
		if err != nil {
			return err
		}

		// assets owed for the requested shares round up
		if vault.TotalShares.IsPositive() {
			amount = number.RoundUp(shares.Mul(vault.TotalBase).Div(vault.TotalShares))
		} else {
			amount = shares
		}

		if !amount.IsPositive() {
			return core.ErrInvalidAmount
		}

		if err := lever.CheckSlippage(expectedAmount, amount, maxSlippageBps); err != nil {
			return err
		}

		vault.TotalBase = vault.TotalBase.Add(amount)
		vault.TotalSuppliedLiquidity = vault.TotalSuppliedLiquidity.Add(amount)
		vault.TotalShares = vault.TotalShares.Add(shares)
		if err := s.vaultStore.Update(ctx, vault); err != nil {
			return err
		}

		lenderAcc, err := s.lenderStore.Find(ctx, userID)
		if err != nil {
			return err
		}
		lenderAcc.Shares = lenderAcc.Shares.Add(shares)
		lenderAcc.Principal = lenderAcc.Principal.Add(amount)
		if err := s.lenderStore.Save(ctx, lenderAcc); err != nil {
			return err
		}

		return s.eventStore.Create(ctx, &core.Event{
			TraceID: id.GenTraceID(),
			Type:    core.EventTypeSharesMinted,
			UserID:  userID,
			Amount:  shares,
			Block:   block,
		})
	})
	if err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

func (s *vaultService) Withdraw(ctx context.Context, userID string, amount, expectedShares decimal.Decimal, maxSlippageBps int64) (decimal.Decimal, error) {
	if err := s.checkEntry(userID, amount); err != nil {
		return decimal.Zero, err
	}

	var burned decimal.Decimal
	err := s.runner.Tx(ctx, func(ctx context.Context) error {
		block, vault, err := s.guardedVault(ctx, userID)
		if err != nil {
			return err
		}

		if !vault.TotalShares.IsPositive() || !vault.TotalBase.IsPositive() {
			return core.ErrInvalidAmount
		}

		// shares burned for the requested assets round up
		burned = number.RoundUp(amount.Mul(vault.TotalShares).Div(vault.TotalBase))

		if err := lever.CheckSlippage(expectedShares, burned, maxSlippageBps); err != nil {
			return err
		}

		return s.settleRedemption(ctx, vault, userID, burned, amount, core.EventTypeLiquidityWithdrawn, block)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return burned, nil
}

func (s *vaultService) Redeem(ctx context.Context, userID string, shares, expectedAmount decimal.Decimal, maxSlippageBps int64) (decimal.Decimal, error) {
	if err := s.checkEntry(userID, shares); err != nil {
		return decimal.Zero, err
	}

	var amount decimal.Decimal
	err := s.runner.Tx(ctx, func(ctx context.Context) error {
		block, vault, err := s.guardedVault(ctx, userID)
		if err != nil {
			return err
		}

		if !vault.TotalShares.IsPositive() {
			return core.ErrInvalidAmount
		}

		// assets paid for the surrendered shares round down
		amount = number.RoundDown(shares.Mul(vault.TotalBase).Div(vault.TotalShares))
		if !amount.IsPositive() {
			return core.ErrInvalidAmount
		}

		if err := lever.CheckSlippage(expectedAmount, amount, maxSlippageBps); err != nil {
			return err
		}

		return s.settleRedemption(ctx, vault, userID, shares, amount, core.EventTypeSharesRedeemed, block)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// settleRedemption burns shares, pays out assets and collects commission on
// the realized yield component. The commission is withheld from the payout
// and re-minted as operator shares of equal value at the post-burn share
// price, so the remaining holders' share price does not move.
func (s *vaultService) settleRedemption(ctx context.Context, vault *core.VaultState, userID string, shares, amount decimal.Decimal, eventType core.EventType, block int64) error {
	if amount.GreaterThan(vault.Cash()) {
		return core.ErrLowLiquidity
	}

	lenderAcc, err := s.lenderStore.Find(ctx, userID)
	if err != nil {
		return err
	}

	if lenderAcc.Shares.LessThan(shares) {
		return core.ErrInvalidAmount
	}

	// the cost-basis slice of the payout; everything above it is yield
	principal := number.RoundDown(lenderAcc.Principal.Mul(shares).Div(lenderAcc.Shares))
	yield := amount.Sub(principal)

	commission := decimal.Zero
	if yield.IsPositive() {
		config, err := s.protocolStore.Find(ctx)
		if err != nil {
			return err
		}
		if config != nil {
			commission = number.RoundDown(yield.Mul(config.ProfitTargetRate))
		}
	}

	vault.TotalBase = vault.TotalBase.Sub(amount)
	vault.TotalShares = vault.TotalShares.Sub(shares)
	vault.TotalSuppliedLiquidity = vault.TotalSuppliedLiquidity.Sub(principal)

	lenderAcc.Shares = lenderAcc.Shares.Sub(shares)
	lenderAcc.Principal = lenderAcc.Principal.Sub(principal)
	if err := s.lenderStore.Save(ctx, lenderAcc); err != nil {
		return err
	}

	if commission.IsPositive() && s.config.App.Operator != "" {
		var operatorShares decimal.Decimal
		if vault.TotalShares.IsPositive() {
			operatorShares = number.RoundDown(commission.Mul(vault.TotalShares).Div(vault.TotalBase))
		} else {
			operatorShares = commission
		}

		vault.TotalBase = vault.TotalBase.Add(commission)
		vault.TotalShares = vault.TotalShares.Add(operatorShares)

		operator, err := s.lenderStore.Find(ctx, s.config.App.Operator)
		if err != nil {
			return err
		}
		operator.Shares = operator.Shares.Add(operatorShares)
		operator.Principal = operator.Principal.Add(commission)
		if err := s.lenderStore.Save(ctx, operator); err != nil {
			return err
		}
	}

	if err := s.vaultStore.Update(ctx, vault); err != nil {
		return err
	}

	extra := core.EventExtraData{}
	extra.Put("shares", shares)
	extra.Put("commission", commission)
	extra.Put("payout", amount.Sub(commission))

	return s.eventStore.Create(ctx, &core.Event{
		TraceID: id.GenTraceID(),
		Type:    eventType,
		UserID:  userID,
		Amount:  amount,
		Block:   block,
		Extra:   types.JSONText(extra.Format()),
	})
}

func (s *vaultService) Borrow(ctx context.Context, amount decimal.Decimal, recipient string) error {
	if recipient == "" {
		return core.ErrZeroAddress
	}
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}
	if atomic.LoadInt32(&s.loaning) == 1 {
		return core.ErrOperationForbidden
	}

	vault, err := s.mustVault(ctx)
	if err != nil {
		return err
	}

	if amount.GreaterThan(vault.Cash()) {
		return core.ErrLowLiquidity
	}

	vault.TotalBorrow = vault.TotalBorrow.Add(amount)
	return s.vaultStore.Update(ctx, vault)
}

func (s *vaultService) Repay(ctx context.Context, amount decimal.Decimal, payer string) error {
	if payer == "" {
		return core.ErrZeroAddress
	}
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}
	if atomic.LoadInt32(&s.loaning) == 1 {
		return core.ErrOperationForbidden
	}

	vault, err := s.mustVault(ctx)
	if err != nil {
		return err
	}

	if amount.GreaterThan(vault.TotalBorrow) {
		return core.ErrInvalidAmount
	}

	vault.TotalBorrow = vault.TotalBorrow.Sub(amount)
	return s.vaultStore.Update(ctx, vault)
}

func (s *vaultService) BoostYield(ctx context.Context, attributedTo string, amount decimal.Decimal) error {
	if attributedTo == "" {
		return core.ErrZeroAddress
	}
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}
	if atomic.LoadInt32(&s.loaning) == 1 {
		return core.ErrOperationForbidden
	}

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		vault, err := s.mustVault(ctx)
		if err != nil {
			return err
		}

		// profit raises the share price for every holder; no shares minted
		vault.TotalBase = vault.TotalBase.Add(amount)
		vault.TotalAccruedInterest = vault.TotalAccruedInterest.Add(amount)
		if err := s.vaultStore.Update(ctx, vault); err != nil {
			return err
		}

		block, _ := s.blockSrv.CurrentBlock(ctx)
		return s.eventStore.Create(ctx, &core.Event{
			TraceID: id.GenTraceID(),
			Type:    core.EventTypeYieldBoosted,
			UserID:  attributedTo,
			Amount:  amount,
			Block:   block,
		})
	})
}

func (s *vaultService) FlashLoan(ctx context.Context, userID string, receiver core.FlashLoanReceiver, amount decimal.Decimal, data []byte) error {
	log := logger.FromContext(ctx).WithField("service", "vault")

	if userID == "" || receiver == nil {
		return core.ErrZeroAddress
	}
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}

	if !atomic.CompareAndSwapInt32(&s.loaning, 0, 1) {
		return core.ErrOperationForbidden
	}
	defer atomic.StoreInt32(&s.loaning, 0)

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		block, err := s.blockSrv.CurrentBlock(ctx)
		if err != nil {
			return err
		}

		if err := s.guardStore.Acquire(ctx, userID, block); err != nil {
			return err
		}

		vault, err := s.mustVault(ctx)
		if err != nil {
			return err
		}

		if amount.GreaterThan(vault.Cash()) {
			return core.ErrLowLiquidity
		}

		fee := decimal.Zero
		if config, err := s.protocolStore.Find(ctx); err != nil {
			return err
		} else if config != nil {
			fee = number.RoundUp(amount.Mul(number.FromBps(config.FlashLoanFee)))
		}

		repayment, ok, err := receiver.OnFlashLoan(ctx, amount, fee, data)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrFlashLoanFailed
		}
		if repayment.LessThan(amount.Add(fee)) {
			log.WithField("repayment", repayment).Infoln("flash loan under-repaid")
			return core.ErrRepaymentFailed
		}

		// exactly the fee sticks; over-repayment is an unaccounted donation
		// and deliberately does not move the totals
		vault.TotalBase = vault.TotalBase.Add(fee)
		vault.TotalAccruedInterest = vault.TotalAccruedInterest.Add(fee)
		if err := s.vaultStore.Update(ctx, vault); err != nil {
			return err
		}

		extra := core.EventExtraData{}
		extra.Put("fee", fee)

		return s.eventStore.Create(ctx, &core.Event{
			TraceID: id.GenTraceID(),
			Type:    core.EventTypeFlashLoan,
			UserID:  userID,
			Amount:  amount,
			Block:   block,
			Extra:   types.JSONText(extra.Format()),
		})
	})
}

func (s *vaultService) TotalAssets(ctx context.Context) (decimal.Decimal, error) {
	vault, err := s.mustVault(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return vault.TotalBase, nil
}

func (s *vaultService) TotalBorrow(ctx context.Context) (decimal.Decimal, error) {
	vault, err := s.mustVault(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return vault.TotalBorrow, nil
}

func (s *vaultService) Utilization(ctx context.Context) (decimal.Decimal, error) {
	vault, err := s.mustVault(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return lever.UtilizationRate(vault.TotalBorrow, vault.TotalSuppliedLiquidity), nil
}

func (s *vaultService) GetSupplyRate(ctx context.Context) (decimal.Decimal, error) {
	vault, err := s.mustVault(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	block, err := s.blockSrv.CurrentBlock(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return lever.GetSupplyRate(vault.SharePrice(), block-vault.GenesisBlock), nil
}

func (s *vaultService) GetBorrowRate(ctx context.Context, tier core.AssetTier) (decimal.Decimal, error) {
	config, err := s.protocolStore.Find(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if config == nil {
		return decimal.Zero, nil
	}

	utilization, err := s.Utilization(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return lever.GetBorrowRate(utilization, config, tier), nil
}

func (s *vaultService) checkEntry(userID string, amount decimal.Decimal) error {
	if userID == "" {
		return core.ErrZeroAddress
	}
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}
	if atomic.LoadInt32(&s.loaning) == 1 {
		return core.ErrOperationForbidden
	}
	return nil
}

func (s *vaultService) sharesForDeposit(vault *core.VaultState, amount decimal.Decimal) decimal.Decimal {
	if !vault.TotalShares.IsPositive() || !vault.TotalBase.IsPositive() {
		return amount
	}
	// shares granted for deposited assets round down
	return number.RoundDown(amount.Mul(vault.TotalShares).Div(vault.TotalBase))
}

func (s *vaultService) guardedVault(ctx context.Context, userID string) (int64, *core.VaultState, error) {
	block, err := s.blockSrv.CurrentBlock(ctx)
	if err != nil {
		return 0, nil, err
	}

	if err := s.guardStore.Acquire(ctx, userID, block); err != nil {
		return 0, nil, err
	}

	vault, err := s.mustVault(ctx)
	if err != nil {
		return 0, nil, err
	}

	return block, vault, nil
}

func (s *vaultService) mustVault(ctx context.Context) (*core.VaultState, error) {
	vault, err := s.vaultStore.Find(ctx)
	if err != nil {
		return nil, err
	}
	if vault == nil {
		return nil, core.ErrUnknown
	}
	return vault, nil
}
