package rest

import (
	"errors"
	"net/http"

	"lever/core"
	"lever/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	registryStore core.IRegistryStore,
	eventStore core.IEventStore,
	positionSrv core.IPositionService,
	creditSrv core.ICreditService,
	interestSrv core.IInterestService,
	liquidationSrv core.ILiquidationService,
	vaultSrv core.IVaultService,
	vaultStore core.IVaultStore,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/assets", allAssetsHandler(registryStore))
	router.Get("/positions", userPositionsHandler(positionSrv))
	router.Get("/positions/{user}/{idx}", positionHandler(positionSrv, creditSrv, interestSrv, liquidationSrv))
	router.Get("/vault", vaultHandler(vaultSrv, vaultStore))
	router.Get("/events", eventsHandler(eventStore))

	return router
}
