package protocol

import (
	"context"
	"testing"

	"lever/core"
	"lever/core/coretest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestEnv() (*coretest.DB, core.IProtocolService, core.IStakeStore) {
	db := coretest.NewDB()
	runner := &coretest.Runner{DB: db}
	protocols := &coretest.ProtocolStore{DB: db}
	stakes := &coretest.StakeStore{DB: db}
	events := &coretest.EventStore{DB: db}
	blocks := &coretest.Blocks{Current: 1}
	properties := &coretest.Properties{DB: db}

	cfg := &core.Config{Admins: []string{"admin"}}

	return db, New(runner, cfg, protocols, stakes, events, blocks, properties), stakes
}

func validConfig() *core.ProtocolConfig {
	return &core.ProtocolConfig{
		ProfitTargetRate:    decimal.RequireFromString("0.1"),
		BorrowRate:          decimal.RequireFromString("0.025"),
		Multiplier:          decimal.RequireFromString("0.2"),
		JumpMultiplier:      decimal.RequireFromString("1"),
		Kink:                decimal.RequireFromString("0.8"),
		LiquidatorThreshold: decimal.NewFromInt(100),
		FlashLoanFee:        9,
	}
}

func TestLoadProtocolConfig(t *testing.T) {
	ctx := context.Background()
	_, srv, _ := newTestEnv()

	err := srv.LoadProtocolConfig(ctx, "mallory", validConfig())
	require.Equal(t, core.ErrOperationForbidden, err)

	require.Nil(t, srv.LoadProtocolConfig(ctx, "admin", validConfig()))

	current, err := srv.Current(ctx)
	require.Nil(t, err)
	require.NotNil(t, current)
	require.Equal(t, "0.025", current.BorrowRate.String())
	require.Equal(t, int64(9), current.FlashLoanFee)
}

func TestLoadProtocolConfigRejectsOutOfBounds(t *testing.T) {
	ctx := context.Background()
	_, srv, _ := newTestEnv()

	for _, tweak := range []func(c *core.ProtocolConfig){
		func(c *core.ProtocolConfig) { c.ProfitTargetRate = decimal.RequireFromString("0.6") },
		func(c *core.ProtocolConfig) { c.BorrowRate = decimal.Zero },
		func(c *core.ProtocolConfig) { c.BorrowRate = decimal.RequireFromString("1.5") },
		func(c *core.ProtocolConfig) { c.Multiplier = decimal.RequireFromString("-0.1") },
		func(c *core.ProtocolConfig) { c.Kink = decimal.RequireFromString("1.2") },
		func(c *core.ProtocolConfig) { c.FlashLoanFee = 501 },
		func(c *core.ProtocolConfig) { c.LiquidatorThreshold = decimal.NewFromInt(-1) },
		func(c *core.ProtocolConfig) { c.PoolSupplyCap = decimal.NewFromInt(-1) },
	} {
		config := validConfig()
		tweak(config)
		err := srv.LoadProtocolConfig(ctx, "admin", config)
		require.Equal(t, core.ErrInvalidConfig, err)
	}

	// rejected, never clamped
	current, err := srv.Current(ctx)
	require.Nil(t, err)
	require.Nil(t, current)
}

func TestSetStake(t *testing.T) {
	ctx := context.Background()
	_, srv, stakes := newTestEnv()

	err := srv.SetStake(ctx, "mallory", "liq", decimal.NewFromInt(500))
	require.Equal(t, core.ErrOperationForbidden, err)

	require.Nil(t, srv.SetStake(ctx, "admin", "liq", decimal.NewFromInt(500)))

	stake, err := stakes.Find(ctx, "liq")
	require.Nil(t, err)
	require.Equal(t, "500", stake.Amount.String())
}
