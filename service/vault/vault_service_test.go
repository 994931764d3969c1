package vault

import (
	"context"
	"testing"

	"lever/core"
	"lever/core/coretest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db      *coretest.DB
	blocks  *coretest.Blocks
	lenders core.ILenderStore
	events  *coretest.EventStore
	srv     core.IVaultService
}

func newTestEnv() *testEnv {
	db := coretest.NewDB()
	blocks := &coretest.Blocks{Current: 1}
	runner := &coretest.Runner{DB: db}
	vaults := &coretest.VaultStore{DB: db}
	lenders := &coretest.LenderStore{DB: db}
	protocols := &coretest.ProtocolStore{DB: db}
	guards := &coretest.GuardStore{DB: db}
	events := &coretest.EventStore{DB: db}
	properties := &coretest.Properties{DB: db}

	cfg := &core.Config{Admins: []string{"admin"}}
	cfg.App.Operator = "operator"

	return &testEnv{
		db:      db,
		blocks:  blocks,
		lenders: lenders,
		events:  events,
		srv:     New(runner, cfg, vaults, lenders, protocols, guards, events, blocks, properties),
	}
}

func (env *testEnv) next() {
	env.blocks.Next()
}

func (env *testEnv) bootstrap(t *testing.T) {
	require.Nil(t, env.srv.Bootstrap(context.Background(), "admin"))
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	err := env.srv.Bootstrap(ctx, "mallory")
	require.Equal(t, core.ErrOperationForbidden, err)

	require.Nil(t, env.srv.Bootstrap(ctx, "admin"))
	require.NotNil(t, env.db.Vault)
	require.Equal(t, int64(1), env.db.Vault.GenesisBlock)

	err = env.srv.Bootstrap(ctx, "admin")
	require.Equal(t, core.ErrAlreadyInitialized, err)
}

func TestDepositSharePrice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	// the first deposit mints one for one
	shares, err := env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)
	require.Equal(t, "1000", shares.String())
	require.Equal(t, "1", env.db.Vault.SharePrice().String())

	lender, err := env.lenders.Find(ctx, "alice")
	require.Nil(t, err)
	require.Equal(t, "1000", lender.Shares.String())
	require.Equal(t, "1000", lender.Principal.String())

	// accrued yield raises the price, so the next depositor gets fewer shares
	require.Nil(t, env.srv.BoostYield(ctx, "booster", decimal.NewFromInt(100)))
	require.Equal(t, "1.1", env.db.Vault.SharePrice().String())

	env.next()
	shares, err = env.srv.Deposit(ctx, "bob", decimal.NewFromInt(1100), decimal.Zero, 0)
	require.Nil(t, err)
	require.Equal(t, "1000", shares.String())

	total, err := env.srv.TotalAssets(ctx)
	require.Nil(t, err)
	require.Equal(t, "2200", total.String())
}

func TestDepositSlippage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	_, err := env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)
	require.Nil(t, env.srv.BoostYield(ctx, "booster", decimal.NewFromInt(100)))

	// alice quoted 1:1 but the price moved to 1.1
	env.next()
	_, err = env.srv.Deposit(ctx, "bob", decimal.NewFromInt(1000), decimal.NewFromInt(1000), 100)
	require.Equal(t, core.ErrMEVSlippageExceeded, err)
}

func TestMintAndRedeem(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	amount, err := env.srv.Mint(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)
	require.Equal(t, "1000", amount.String())

	require.Nil(t, env.srv.BoostYield(ctx, "booster", decimal.NewFromInt(100)))

	// 500 shares at price 1.1 pay out 550, rounded down
	env.next()
	amount, err = env.srv.Redeem(ctx, "alice", decimal.NewFromInt(500), decimal.Zero, 0)
	require.Nil(t, err)
	require.Equal(t, "550", amount.String())

	lender, err := env.lenders.Find(ctx, "alice")
	require.Nil(t, err)
	require.Equal(t, "500", lender.Shares.String())

	// more shares than held
	env.next()
	_, err = env.srv.Deposit(ctx, "bob", decimal.NewFromInt(1100), decimal.Zero, 0)
	require.Nil(t, err)
	env.next()
	_, err = env.srv.Redeem(ctx, "alice", decimal.NewFromInt(600), decimal.Zero, 0)
	require.Equal(t, core.ErrInvalidAmount, err)
}

func TestWithdrawCommission(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	_, err := env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)
	require.Nil(t, env.srv.BoostYield(ctx, "booster", decimal.NewFromInt(100)))

	env.db.Protocol = &core.ProtocolConfig{
		ID:               1,
		ProfitTargetRate: decimal.RequireFromString("0.1"),
	}

	// 550 out burns 500 shares; 500 is cost basis, 50 is yield, 5 commission
	env.next()
	burned, err := env.srv.Withdraw(ctx, "alice", decimal.NewFromInt(550), decimal.Zero, 0)
	require.Nil(t, err)
	require.Equal(t, "500", burned.String())

	lender, err := env.lenders.Find(ctx, "alice")
	require.Nil(t, err)
	require.Equal(t, "500", lender.Shares.String())
	require.Equal(t, "500", lender.Principal.String())

	// the commission is re-minted as operator shares of equal value
	operator, err := env.lenders.Find(ctx, "operator")
	require.Nil(t, err)
	require.Equal(t, "5", operator.Principal.String())
	require.True(t, operator.Shares.IsPositive())

	require.Equal(t, "555", env.db.Vault.TotalBase.String())
	require.Equal(t, "500", env.db.Vault.TotalSuppliedLiquidity.String())

	// the remaining holders' share price does not move
	diff := env.db.Vault.SharePrice().Sub(decimal.RequireFromString("1.1"))
	require.True(t, diff.Abs().LessThan(decimal.New(1, -12)), diff.String())
}

func TestWithdrawLowLiquidity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	_, err := env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)

	require.Nil(t, env.srv.Borrow(ctx, decimal.NewFromInt(900), "borrower"))

	env.next()
	_, err = env.srv.Withdraw(ctx, "alice", decimal.NewFromInt(200), decimal.Zero, 0)
	require.Equal(t, core.ErrLowLiquidity, err)
}

func TestBorrowRepayBook(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	_, err := env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)

	require.Nil(t, env.srv.Borrow(ctx, decimal.NewFromInt(400), "borrower"))
	require.Equal(t, "400", env.db.Vault.TotalBorrow.String())
	require.Equal(t, "600", env.db.Vault.Cash().String())

	err = env.srv.Borrow(ctx, decimal.NewFromInt(700), "borrower")
	require.Equal(t, core.ErrLowLiquidity, err)

	err = env.srv.Repay(ctx, decimal.NewFromInt(500), "borrower")
	require.Equal(t, core.ErrInvalidAmount, err)

	require.Nil(t, env.srv.Repay(ctx, decimal.NewFromInt(400), "borrower"))
	require.True(t, env.db.Vault.TotalBorrow.IsZero())
}

type flashFunc func(ctx context.Context, amount, fee decimal.Decimal, data []byte) (decimal.Decimal, bool, error)

func (f flashFunc) OnFlashLoan(ctx context.Context, amount, fee decimal.Decimal, data []byte) (decimal.Decimal, bool, error) {
	return f(ctx, amount, fee, data)
}

func TestFlashLoan(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	_, err := env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)

	// 100 bps fee
	env.db.Protocol = &core.ProtocolConfig{ID: 1, FlashLoanFee: 100}

	env.next()
	err = env.srv.FlashLoan(ctx, "taker", flashFunc(func(ctx context.Context, amount, fee decimal.Decimal, data []byte) (decimal.Decimal, bool, error) {
		require.Equal(t, "500", amount.String())
		require.Equal(t, "5", fee.String())
		return amount.Add(fee), true, nil
	}), decimal.NewFromInt(500), nil)
	require.Nil(t, err)

	require.Equal(t, "1005", env.db.Vault.TotalBase.String())
	require.Equal(t, "5", env.db.Vault.TotalAccruedInterest.String())
	require.Len(t, env.events.ByType(core.EventTypeFlashLoan), 1)

	// over-repayment is a donation: exactly the fee is accounted
	env.next()
	err = env.srv.FlashLoan(ctx, "taker", flashFunc(func(ctx context.Context, amount, fee decimal.Decimal, data []byte) (decimal.Decimal, bool, error) {
		return decimal.NewFromInt(600), true, nil
	}), decimal.NewFromInt(500), nil)
	require.Nil(t, err)
	require.Equal(t, "1010", env.db.Vault.TotalBase.String())
}

func TestFlashLoanFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	_, err := env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)
	env.db.Protocol = &core.ProtocolConfig{ID: 1, FlashLoanFee: 100}
	env.next()

	err = env.srv.FlashLoan(ctx, "taker", flashFunc(func(ctx context.Context, amount, fee decimal.Decimal, data []byte) (decimal.Decimal, bool, error) {
		return decimal.Zero, false, nil
	}), decimal.NewFromInt(500), nil)
	require.Equal(t, core.ErrFlashLoanFailed, err)
	require.Equal(t, "1000", env.db.Vault.TotalBase.String(), "failed loan must leave no trace")
	require.Len(t, env.events.ByType(core.EventTypeFlashLoan), 0)

	// one unit short of amount + fee
	err = env.srv.FlashLoan(ctx, "taker", flashFunc(func(ctx context.Context, amount, fee decimal.Decimal, data []byte) (decimal.Decimal, bool, error) {
		return decimal.NewFromInt(504), true, nil
	}), decimal.NewFromInt(500), nil)
	require.Equal(t, core.ErrRepaymentFailed, err)

	err = env.srv.FlashLoan(ctx, "taker", flashFunc(func(ctx context.Context, amount, fee decimal.Decimal, data []byte) (decimal.Decimal, bool, error) {
		return amount.Add(fee), true, nil
	}), decimal.NewFromInt(2000), nil)
	require.Equal(t, core.ErrLowLiquidity, err)
}

func TestFlashLoanReentrancy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	_, err := env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)
	env.next()

	// vault mutations are rejected while the funds are out
	err = env.srv.FlashLoan(ctx, "taker", flashFunc(func(ctx context.Context, amount, fee decimal.Decimal, data []byte) (decimal.Decimal, bool, error) {
		_, err := env.srv.Deposit(ctx, "taker", decimal.NewFromInt(100), decimal.Zero, 0)
		require.Equal(t, core.ErrOperationForbidden, err)

		err = env.srv.Borrow(ctx, decimal.NewFromInt(100), "taker")
		require.Equal(t, core.ErrOperationForbidden, err)

		return amount.Add(fee), true, nil
	}), decimal.NewFromInt(500), nil)
	require.Nil(t, err)
}

func TestSameBlockDeposit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	_, err := env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Nil(t, err)

	// a second operation by the same account in the same time-step is refused
	_, err = env.srv.Deposit(ctx, "alice", decimal.NewFromInt(1000), decimal.Zero, 0)
	require.Equal(t, core.ErrMEVSameBlockOperation, err)

	_, err = env.srv.Withdraw(ctx, "alice", decimal.NewFromInt(100), decimal.Zero, 0)
	require.Equal(t, core.ErrMEVSameBlockOperation, err)

	// another account is not throttled by alice's lock
	_, err = env.srv.Deposit(ctx, "bob", decimal.NewFromInt(500), decimal.Zero, 0)
	require.Nil(t, err)

	// the next block opens the window again
	env.next()
	_, err = env.srv.Withdraw(ctx, "alice", decimal.NewFromInt(100), decimal.Zero, 0)
	require.Nil(t, err)
}

func TestWithdrawZeroBase(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.bootstrap(t)
	env.next()

	// pathological book: shares outstanding against an empty base
	env.db.Vault.TotalShares = decimal.NewFromInt(1000)
	env.db.Vault.TotalBase = decimal.Zero

	_, err := env.srv.Withdraw(ctx, "alice", decimal.NewFromInt(10), decimal.Zero, 0)
	require.Equal(t, core.ErrInvalidAmount, err)
}
