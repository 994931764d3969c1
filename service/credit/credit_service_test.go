package credit

import (
	"context"
	"testing"

	"lever/core"
	"lever/core/coretest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestEnv() (*coretest.DB, core.ICreditService, core.IPositionStore) {
	db := coretest.NewDB()
	positions := &coretest.PositionStore{DB: db}
	vaults := &coretest.VaultStore{DB: db}
	registry := &coretest.Registry{DB: db}
	return db, New(positions, vaults, registry), positions
}

func TestCalculateLimitsAdditive(t *testing.T) {
	ctx := context.Background()
	db, srv, positions := newTestEnv()

	db.Assets["btc"] = &core.AssetConfig{
		AssetID:              "btc",
		Tier:                 core.AssetTierCrossA,
		BorrowThreshold:      8000,
		LiquidationThreshold: 8500,
	}
	db.Assets["eth"] = &core.AssetConfig{
		AssetID:              "eth",
		Tier:                 core.AssetTierCrossB,
		BorrowThreshold:      9000,
		LiquidationThreshold: 9500,
	}
	db.SetPrice("btc", decimal.NewFromInt(100))
	db.SetPrice("eth", decimal.NewFromInt(50))

	position := &core.Position{UserID: "alice", Status: core.PositionStatusActive}
	require.Nil(t, positions.Create(ctx, position))
	require.Nil(t, positions.SaveCollateral(ctx, &core.CollateralHolding{
		PositionID: position.ID,
		AssetID:    "btc",
		Amount:     decimal.NewFromInt(25),
	}))
	require.Nil(t, positions.SaveCollateral(ctx, &core.CollateralHolding{
		PositionID: position.ID,
		AssetID:    "eth",
		Amount:     decimal.NewFromInt(20),
	}))

	// 2500 at 80/85 plus 1000 at 90/95
	limits, err := srv.CalculateLimits(ctx, "alice", 0)
	require.Nil(t, err)
	require.Equal(t, "3500", limits.TotalValue.String())
	require.Equal(t, "2900", limits.CreditLimit.String())
	require.Equal(t, "3075", limits.LiquidationLevel.String())

	credit, err := srv.CalculateCreditLimit(ctx, "alice", 0)
	require.Nil(t, err)
	require.Equal(t, "2900", credit.String())
}

func TestCalculateLimitsEmptyPosition(t *testing.T) {
	ctx := context.Background()
	_, srv, positions := newTestEnv()

	position := &core.Position{UserID: "alice", Status: core.PositionStatusActive}
	require.Nil(t, positions.Create(ctx, position))

	limits, err := srv.CalculateLimits(ctx, "alice", 0)
	require.Nil(t, err)
	require.True(t, limits.TotalValue.IsZero())
	require.True(t, limits.CreditLimit.IsZero())
	require.True(t, limits.LiquidationLevel.IsZero())
}

func TestCalculateLimitsMissingPrice(t *testing.T) {
	ctx := context.Background()
	db, srv, positions := newTestEnv()

	db.Assets["btc"] = &core.AssetConfig{
		AssetID:              "btc",
		Tier:                 core.AssetTierCrossA,
		BorrowThreshold:      8000,
		LiquidationThreshold: 8500,
	}

	position := &core.Position{UserID: "alice", Status: core.PositionStatusActive}
	require.Nil(t, positions.Create(ctx, position))
	require.Nil(t, positions.SaveCollateral(ctx, &core.CollateralHolding{
		PositionID: position.ID,
		AssetID:    "btc",
		Amount:     decimal.NewFromInt(1),
	}))

	_, err := srv.CalculateLimits(ctx, "alice", 0)
	require.Equal(t, core.ErrPriceNotFound, err)
}

func TestPositionTier(t *testing.T) {
	ctx := context.Background()
	db, srv, positions := newTestEnv()

	db.Assets["usdt"] = &core.AssetConfig{AssetID: "usdt", Tier: core.AssetTierStable}
	db.Assets["doge"] = &core.AssetConfig{AssetID: "doge", Tier: core.AssetTierCrossB}

	position := &core.Position{UserID: "alice", Status: core.PositionStatusActive}
	require.Nil(t, positions.Create(ctx, position))

	tier, err := srv.PositionTier(ctx, position)
	require.Nil(t, err)
	require.Equal(t, core.AssetTierStable, tier)

	require.Nil(t, positions.SaveCollateral(ctx, &core.CollateralHolding{
		PositionID: position.ID,
		AssetID:    "usdt",
		Amount:     decimal.NewFromInt(100),
	}))
	require.Nil(t, positions.SaveCollateral(ctx, &core.CollateralHolding{
		PositionID: position.ID,
		AssetID:    "doge",
		Amount:     decimal.NewFromInt(100),
	}))

	tier, err = srv.PositionTier(ctx, position)
	require.Nil(t, err)
	require.Equal(t, core.AssetTierCrossB, tier)
}

func TestIsCollateralized(t *testing.T) {
	ctx := context.Background()
	db, srv, positions := newTestEnv()

	ok, err := srv.IsCollateralized(ctx)
	require.Nil(t, err)
	require.True(t, ok, "no vault means nothing is owed")

	db.Assets["btc"] = &core.AssetConfig{
		AssetID:              "btc",
		Tier:                 core.AssetTierCrossA,
		BorrowThreshold:      8000,
		LiquidationThreshold: 8500,
	}
	db.SetPrice("btc", decimal.NewFromInt(100))

	position := &core.Position{UserID: "alice", Status: core.PositionStatusActive}
	require.Nil(t, positions.Create(ctx, position))
	require.Nil(t, positions.SaveCollateral(ctx, &core.CollateralHolding{
		PositionID: position.ID,
		AssetID:    "btc",
		Amount:     decimal.NewFromInt(35),
	}))

	db.Vault = &core.VaultState{ID: 1, TotalBorrow: decimal.NewFromInt(3000)}
	ok, err = srv.IsCollateralized(ctx)
	require.Nil(t, err)
	require.True(t, ok)

	db.Vault.TotalBorrow = decimal.NewFromInt(4000)
	ok, err = srv.IsCollateralized(ctx)
	require.Nil(t, err)
	require.False(t, ok)
}
