package handler

import "github.com/gofiber/fiber/v2"

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Health     *HealthHandler
	Promotions *PromotionHandler
	Checkout   *CheckoutHandler
	Stock      *StockHandler
	Settings   *SettingsHandler
	Packs      *PackHandler
}

// RegisterRoutes mounts the public and admin API on app.
func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", h.Health.Check)

	api := app.Group("/api")

	admin := api.Group("/admin")
	admin.Post("/promo-codes", h.Promotions.Create)
	admin.Get("/promo-codes", h.Promotions.List)
	admin.Get("/promo-codes/:id", h.Promotions.Get)
	admin.Put("/promo-codes/:id", h.Promotions.Update)
	admin.Delete("/promo-codes/:id", h.Promotions.Delete)
	admin.Get("/promo-codes/:id/usage", h.Promotions.Usage)

	admin.Get("/settings/order-mode", h.Settings.GetOrderMode)
	admin.Put("/settings/order-mode", h.Settings.SetOrderMode)

	admin.Post("/stock/adjust", h.Stock.Adjust)
	admin.Get("/stock/history", h.Stock.History)

	api.Get("/flavors/:id/stock", h.Stock.Availability)

	api.Post("/packs/:id/selection/validate", h.Packs.Validate)
	api.Post("/packs/:id/selection/add", h.Packs.Add)
	api.Post("/packs/:id/selection/remove", h.Packs.Remove)

	api.Post("/checkout/preview", h.Checkout.Preview)
	api.Post("/checkout/confirm", h.Checkout.Confirm)
}
