package internal

import (
	"net/http"

	"tripsync/internal/controllers"
	"tripsync/internal/providers"
	"tripsync/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/flight/finalize", http.HandlerFunc(apiController.FinalizeFlight))
	routers.Post("/chat/instruction", http.HandlerFunc(apiController.ApplyInstruction))
	routers.Post("/widget/edit", http.HandlerFunc(apiController.WidgetEdit))
	routers.Post("/widget/interaction", http.HandlerFunc(apiController.LogInteraction))
	routers.Post("/widget/unprotect", http.HandlerFunc(apiController.ClearProtection))
	routers.Post("/sync/block", http.HandlerFunc(apiController.BlockSync))
	routers.Post("/sync/unblock", http.HandlerFunc(apiController.UnblockSync))
	routers.Get("/sync/status", http.HandlerFunc(apiController.GetSyncStatus))
	routers.Post("/trip/type", http.HandlerFunc(apiController.SetTripType))
	routers.Post("/travelers", http.HandlerFunc(apiController.UpdateTravelers))
	routers.Get("/state", http.HandlerFunc(apiController.GetState))
	routers.Get("/interactions", http.HandlerFunc(apiController.GetInteractions))
	return routers
}
