package rest

import (
	"net/http"

	"lever/core"
	"lever/handler/render"
	"lever/handler/views"
)

func allAssetsHandler(registryStore core.IRegistryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		assets, err := registryStore.AllAssets(ctx)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		assetViews := make([]*views.Asset, 0, len(assets))
		for _, asset := range assets {
			view := &views.Asset{
				AssetConfig: *asset,
				Tier:        asset.Tier.String(),
			}

			// a missing price is not an error here, the asset view just
			// carries no quote
			if price, err := registryStore.FindPrice(ctx, asset.AssetID); err == nil {
				view.Price = price.Price
				view.PriceUpdatedAt = price.UpdatedAt
			}

			assetViews = append(assetViews, view)
		}

		render.JSON(w, assetViews)
	}
}
