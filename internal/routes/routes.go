package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pcforge/storefront-client/internal/handlers"
)

func SetupRoutes(r *chi.Mux, api *handlers.API) {
	// Session
	r.Post("/api/auth/login", api.Login)
	r.Post("/api/auth/register", api.Register)
	r.Post("/api/auth/logout", api.Logout)
	r.Get("/api/auth/session", api.GetSession)
	r.Post("/api/auth/change-password", api.ChangePassword)

	// Catalog and configurator
	r.Get("/api/components", api.GetCatalog)
	r.Get("/api/components/{category}", api.GetCategoryComponents)
	r.Get("/api/selection", api.GetSelection)
	r.Put("/api/selection", api.SetSelection)
	r.Delete("/api/selection", api.ClearSelection)

	// Builds
	r.Get("/api/builds", api.GetPredefinedBuilds)
	r.Post("/api/builds", api.CreateBuild)
	r.Get("/api/builds/{buildID}/components", api.GetBuildComponents)

	// Basket
	r.Get("/api/basket", api.GetBasket)
	r.Delete("/api/basket", api.ClearBasket)
	r.Post("/api/basket/items", api.AddBasketItem)
	r.Put("/api/basket/items/{buildID}", api.UpdateBasketQuantity)
	r.Delete("/api/basket/items/{buildID}", api.RemoveBasketItem)
	r.Post("/api/basket/sync", api.SyncBasket)
	r.Post("/api/basket/checkout", api.Checkout)

	// Favorites
	r.Get("/api/favorites", api.GetFavorites)
	r.Post("/api/favorites", api.AddFavorite)
	r.Delete("/api/favorites/{favoriteID}", api.RemoveFavorite)
	r.Put("/api/favorites/{buildID}", api.UpdateFavorite)
	r.Get("/api/favorites/match", api.MatchFavorite)

	// Orders
	r.Get("/api/orders", api.GetOrders)
	r.Put("/api/orders/{orderID}/collect", api.CollectOrder)

	// WebSocket store-change feed for the view layer
	r.Get("/ws/events", api.EventsWebSocket)
}
