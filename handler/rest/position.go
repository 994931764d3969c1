package rest

import (
	"errors"
	"net/http"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"
	"lever/handler/views"

	"github.com/go-chi/chi"
	"github.com/spf13/cast"
)

func userPositionsHandler(positionSrv core.IPositionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			User string `json:"user"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}
		if params.User == "" {
			render.BadRequest(w, errors.New("user required"))
			return
		}

		positions, err := positionSrv.GetUserPositions(ctx, params.User)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, positions)
	}
}

func positionHandler(
	positionSrv core.IPositionService,
	creditSrv core.ICreditService,
	interestSrv core.IInterestService,
	liquidationSrv core.ILiquidationService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user := chi.URLParam(r, "user")
		idx := cast.ToUint64(chi.URLParam(r, "idx"))

		position, err := positionSrv.GetUserPosition(ctx, user, idx)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		view := &views.Position{
			Position: *position,
			Status:   position.Status.String(),
		}

		assets, err := positionSrv.GetPositionCollateralAssets(ctx, user, idx)
		if err != nil {
			render.OperationError(w, err)
			return
		}
		for _, assetID := range assets {
			amount, err := positionSrv.GetCollateralAmount(ctx, user, idx, assetID)
			if err != nil {
				render.OperationError(w, err)
				return
			}
			view.Collaterals = append(view.Collaterals, &core.CollateralHolding{
				PositionID: position.ID,
				AssetID:    assetID,
				Amount:     amount,
			})
		}

		limits, err := creditSrv.CalculateLimits(ctx, user, idx)
		if err != nil {
			render.OperationError(w, err)
			return
		}
		view.TotalValue = limits.TotalValue
		view.CreditLimit = limits.CreditLimit
		view.LiquidationLevel = limits.LiquidationLevel

		if view.CurrentDebt, err = interestSrv.CalculateDebtWithInterest(ctx, user, idx); err != nil {
			render.OperationError(w, err)
			return
		}

		if view.HealthFactor, err = liquidationSrv.HealthFactor(ctx, user, idx); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, view)
	}
}
