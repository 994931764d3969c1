package rest

import (
	"errors"
	"net/http"

	"lever/core"
	"lever/handler/render"
	"lever/handler/views"

	"github.com/shopspring/decimal"
)

func vaultHandler(vaultSrv core.IVaultService, vaultStore core.IVaultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		vault, err := vaultStore.Find(ctx)
		if err != nil {
			render.OperationError(w, err)
			return
		}
		if vault == nil {
			render.NotFoundRequest(w, errors.New("vault not initialized"))
			return
		}

		view := &views.Vault{
			VaultState:  *vault,
			SharePrice:  vault.SharePrice(),
			Cash:        vault.Cash(),
			BorrowRates: make(map[string]decimal.Decimal, 4),
		}

		if view.Utilization, err = vaultSrv.Utilization(ctx); err != nil {
			render.OperationError(w, err)
			return
		}

		if view.SupplyRate, err = vaultSrv.GetSupplyRate(ctx); err != nil {
			render.OperationError(w, err)
			return
		}

		for _, tier := range []core.AssetTier{
			core.AssetTierStable,
			core.AssetTierCrossA,
			core.AssetTierCrossB,
			core.AssetTierIsolated,
		} {
			rate, err := vaultSrv.GetBorrowRate(ctx, tier)
			if err != nil {
				render.OperationError(w, err)
				return
			}
			view.BorrowRates[tier.String()] = rate
		}

		render.JSON(w, view)
	}
}
