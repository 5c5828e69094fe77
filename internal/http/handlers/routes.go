package handlers

import "github.com/gofiber/fiber/v2"

// Register mounts the JSON API under /api/v1 and the printable pages.
func (d *Deps) Register(app fiber.Router) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api/v1")
	api.Get("/components", d.CatalogHandler.List)
	api.Get("/components/:id", d.CatalogHandler.Detail)

	api.Get("/suppliers", d.InventoryHandler.Suppliers)
	api.Get("/suppliers/:key/availability", d.InventoryHandler.Check)
	api.Put("/suppliers/:key/stock/:component", d.InventoryHandler.SetStock)

	api.Post("/promotions", d.PromotionHandler.Create)
	api.Get("/promotions/:id", d.PromotionHandler.Get)

	api.Post("/quotations", d.QuotationHandler.Create)
	api.Get("/quotations", d.QuotationHandler.List)
	api.Get("/quotations/:id", d.QuotationHandler.Get)
	api.Post("/quotations/:id/orders", d.OrderHandler.Generate)
	api.Get("/quotations/:id/orders", d.OrderHandler.ListByQuotation)

	api.Get("/orders/:id", d.OrderHandler.Get)
	api.Post("/orders/:id/cancel", d.OrderHandler.Cancel)

	// Printable documents
	app.Get("/quotations/:id", d.QuotationHandler.Print)
	app.Get("/orders/:id", d.OrderHandler.Print)
}
