package liquidation

import (
	"context"
	"testing"

	"lever/core"
	"lever/core/coretest"
	"lever/internal/lever"
	"lever/service/credit"
	"lever/service/interest"
	"lever/service/position"
	"lever/service/vault"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db     *coretest.DB
	blocks *coretest.Blocks
	stakes core.IStakeStore
	events *coretest.EventStore
	posSrv core.IPositionService
	srv    core.ILiquidationService
}

func newTestEnv() *testEnv {
	db := coretest.NewDB()
	blocks := &coretest.Blocks{Current: 1}
	runner := &coretest.Runner{DB: db}
	positions := &coretest.PositionStore{DB: db}
	vaults := &coretest.VaultStore{DB: db}
	lenders := &coretest.LenderStore{DB: db}
	protocols := &coretest.ProtocolStore{DB: db}
	stakes := &coretest.StakeStore{DB: db}
	guards := &coretest.GuardStore{DB: db}
	events := &coretest.EventStore{DB: db}
	registry := &coretest.Registry{DB: db}
	properties := &coretest.Properties{DB: db}

	cfg := &core.Config{Admins: []string{"admin"}}
	cfg.App.Operator = "operator"

	creditSrv := credit.New(positions, vaults, registry)
	interestSrv := interest.New(positions, vaults, protocols, creditSrv, blocks, events)
	vaultSrv := vault.New(runner, cfg, vaults, lenders, protocols, guards, events, blocks, properties)
	posSrv := position.New(
		runner, cfg,
		positions, protocols, guards, events,
		registry, creditSrv, interestSrv, vaultSrv, blocks,
	)

	db.Assets["btc"] = &core.AssetConfig{
		AssetID:              "btc",
		Tier:                 core.AssetTierCrossA,
		BorrowThreshold:      8000,
		LiquidationThreshold: 8500,
	}
	db.SetPrice("btc", decimal.NewFromInt(100))

	// zero-rate config keeps the debt arithmetic exact in the assertions
	db.Protocol = &core.ProtocolConfig{
		ID:                  1,
		LiquidatorThreshold: decimal.NewFromInt(100),
	}
	db.Vault = &core.VaultState{
		ID:                     1,
		TotalBase:              decimal.NewFromInt(10000),
		TotalSuppliedLiquidity: decimal.NewFromInt(10000),
		TotalShares:            decimal.NewFromInt(10000),
	}

	return &testEnv{
		db:     db,
		blocks: blocks,
		stakes: stakes,
		events: events,
		posSrv: posSrv,
		srv: New(
			runner,
			positions, protocols, stakes, guards, events,
			creditSrv, interestSrv, vaultSrv, blocks,
		),
	}
}

func (env *testEnv) next() {
	env.blocks.Next()
}

// underwater opens a borrowed-up position and then drops the price below
// the liquidation level
func (env *testEnv) underwater(t *testing.T) *core.Position {
	ctx := context.Background()

	position, err := env.posSrv.Open(ctx, "bob", "btc", false)
	require.Nil(t, err)
	env.next()

	require.Nil(t, env.posSrv.SupplyCollateral(ctx, "bob", "btc", decimal.NewFromInt(25), position.Idx))
	env.next()

	require.Nil(t, env.posSrv.Borrow(ctx, "bob", position.Idx, decimal.NewFromInt(2000), decimal.Zero, 0))
	env.next()

	env.db.SetPrice("btc", decimal.NewFromInt(90))
	return position
}

func (env *testEnv) stake(t *testing.T, userID string, amount int64) {
	require.Nil(t, env.stakes.Save(context.Background(), &core.GovernanceStake{
		UserID: userID,
		Amount: decimal.NewFromInt(amount),
	}))
}

func TestHealthFactor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	position, err := env.posSrv.Open(ctx, "bob", "btc", false)
	require.Nil(t, err)
	env.next()

	hf, err := env.srv.HealthFactor(ctx, "bob", position.Idx)
	require.Nil(t, err)
	require.True(t, hf.Equal(lever.MaxHealthFactor), "debt-free position pins the sentinel")

	require.Nil(t, env.posSrv.SupplyCollateral(ctx, "bob", "btc", decimal.NewFromInt(25), position.Idx))
	env.next()
	require.Nil(t, env.posSrv.Borrow(ctx, "bob", position.Idx, decimal.NewFromInt(2000), decimal.Zero, 0))

	// level 2125 over debt 2000
	hf, err = env.srv.HealthFactor(ctx, "bob", position.Idx)
	require.Nil(t, err)
	require.Equal(t, "1.0625", hf.String())

	ok, err := env.srv.IsLiquidatable(ctx, "bob", position.Idx)
	require.Nil(t, err)
	require.False(t, ok)
}

func TestLiquidateHealthyPosition(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.stake(t, "liq", 100)

	position, err := env.posSrv.Open(ctx, "bob", "btc", false)
	require.Nil(t, err)
	env.next()
	require.Nil(t, env.posSrv.SupplyCollateral(ctx, "bob", "btc", decimal.NewFromInt(25), position.Idx))
	env.next()
	require.Nil(t, env.posSrv.Borrow(ctx, "bob", position.Idx, decimal.NewFromInt(2000), decimal.Zero, 0))
	env.next()

	_, err = env.srv.Liquidate(ctx, "liq", "bob", position.Idx, decimal.Zero, 0)
	require.Equal(t, core.ErrNotLiquidatable, err)
}

func TestLiquidateRequiresStake(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.stake(t, "liq", 50)

	position := env.underwater(t)

	_, err := env.srv.Liquidate(ctx, "liq", "bob", position.Idx, decimal.Zero, 0)
	require.Equal(t, core.ErrNotEnoughGovernanceTokens, err)
}

func TestLiquidate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.stake(t, "liq", 100)

	position := env.underwater(t)

	ok, err := env.srv.IsLiquidatable(ctx, "bob", position.Idx)
	require.Nil(t, err)
	require.True(t, ok)

	// debt 2000 plus the 5% tier fee exceeds a 2050 budget
	_, err = env.srv.Liquidate(ctx, "liq", "bob", position.Idx, decimal.NewFromInt(2050), 0)
	require.Equal(t, core.ErrMEVSlippageExceeded, err)

	env.next()
	result, err := env.srv.Liquidate(ctx, "liq", "bob", position.Idx, decimal.Zero, 0)
	require.Nil(t, err)
	require.Equal(t, "2000", result.DebtRepaid.String())
	require.Equal(t, "100", result.Fee.String())
	require.Len(t, result.Seized, 1)
	require.Equal(t, "btc", result.Seized[0].AssetID)
	require.Equal(t, "25", result.Seized[0].Amount.String())

	// liquidation is total: no debt, no collateral, closed for good
	stored, err := env.posSrv.GetUserPosition(ctx, "bob", position.Idx)
	require.Nil(t, err)
	require.Equal(t, core.PositionStatusLiquidated, stored.Status)
	require.True(t, stored.Debt.IsZero())

	assets, err := env.posSrv.GetPositionCollateralAssets(ctx, "bob", position.Idx)
	require.Nil(t, err)
	require.Len(t, assets, 0)

	// the vault is made whole and pockets the fee as yield
	require.True(t, env.db.Vault.TotalBorrow.IsZero())
	require.Equal(t, "10100", env.db.Vault.TotalBase.String())
	require.Equal(t, "100", env.db.Vault.TotalAccruedInterest.String())
	require.Len(t, env.events.ByType(core.EventTypeLiquidated), 1)

	env.next()
	_, err = env.srv.Liquidate(ctx, "liq", "bob", position.Idx, decimal.Zero, 0)
	require.Equal(t, core.ErrNotLiquidatable, err, "a liquidated position cannot be liquidated again")
}
