package vault

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"lever/core"
	"lever/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *db.DB {
	conn, err := db.Connect("sqlite3", filepath.Join(t.TempDir(), "lever.db"))
	require.Nil(t, err)
	require.Nil(t, db.Migrate(conn))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestReadInsideTxSeesOwnWrites(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()

	vaultStore := New(conn)
	require.Nil(t, vaultStore.Create(ctx, &core.VaultState{
		TotalBase: decimal.NewFromInt(100),
	}))

	runner := store.NewRunner(conn)
	err := runner.Tx(ctx, func(ctx context.Context) error {
		vault, err := vaultStore.Find(ctx)
		require.Nil(t, err)
		require.NotNil(t, vault)

		vault.TotalBase = vault.TotalBase.Add(decimal.NewFromInt(5))
		if err := vaultStore.Update(ctx, vault); err != nil {
			return err
		}

		// a re-read on the same ctx must observe the uncommitted write
		again, err := vaultStore.Find(ctx)
		require.Nil(t, err)
		require.True(t, again.TotalBase.Equal(decimal.NewFromInt(105)))
		require.Equal(t, int64(1), again.Version)

		// and a second version-guarded update must go through
		again.TotalBase = again.TotalBase.Add(decimal.NewFromInt(5))
		return vaultStore.Update(ctx, again)
	})
	require.Nil(t, err)

	vault, err := vaultStore.Find(ctx)
	require.Nil(t, err)
	require.True(t, vault.TotalBase.Equal(decimal.NewFromInt(110)))
	require.Equal(t, int64(2), vault.Version)
}

func TestNestedTxJoins(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()

	vaultStore := New(conn)
	require.Nil(t, vaultStore.Create(ctx, &core.VaultState{
		TotalBase: decimal.NewFromInt(100),
	}))

	runner := store.NewRunner(conn)
	err := runner.Tx(ctx, func(ctx context.Context) error {
		vault, err := vaultStore.Find(ctx)
		require.Nil(t, err)

		vault.TotalBase = vault.TotalBase.Add(decimal.NewFromInt(5))
		if err := vaultStore.Update(ctx, vault); err != nil {
			return err
		}

		// a nested call joins the open transaction instead of
		// beginning a competing one
		return runner.Tx(ctx, func(ctx context.Context) error {
			vault, err := vaultStore.Find(ctx)
			require.Nil(t, err)

			vault.TotalBase = vault.TotalBase.Add(decimal.NewFromInt(7))
			return vaultStore.Update(ctx, vault)
		})
	})
	require.Nil(t, err)

	vault, err := vaultStore.Find(ctx)
	require.Nil(t, err)
	require.True(t, vault.TotalBase.Equal(decimal.NewFromInt(112)))
}

func TestNestedTxRollsBackTogether(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()

	vaultStore := New(conn)
	require.Nil(t, vaultStore.Create(ctx, &core.VaultState{
		TotalBase: decimal.NewFromInt(100),
	}))

	boom := errors.New("boom")

	runner := store.NewRunner(conn)
	err := runner.Tx(ctx, func(ctx context.Context) error {
		vault, err := vaultStore.Find(ctx)
		require.Nil(t, err)

		vault.TotalBase = vault.TotalBase.Add(decimal.NewFromInt(5))
		if err := vaultStore.Update(ctx, vault); err != nil {
			return err
		}

		return runner.Tx(ctx, func(ctx context.Context) error {
			return boom
		})
	})
	require.Equal(t, boom, err)

	// the inner failure aborts everything, including the outer write
	vault, err := vaultStore.Find(ctx)
	require.Nil(t, err)
	require.True(t, vault.TotalBase.Equal(decimal.NewFromInt(100)))
	require.Equal(t, int64(0), vault.Version)
}
