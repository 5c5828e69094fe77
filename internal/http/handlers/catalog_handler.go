package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"cotizador/internal/log"
	"cotizador/internal/services"
	"cotizador/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) List(c *fiber.Ctx) error {
	category, ok := validate.Category(c.Query("category"))
	if !ok {
		return badRequest(c, "category", "invalid category")
	}
	comps, err := h.Catalog.List(category, c.QueryInt("page", 1), c.QueryInt("page_size", 50))
	if err != nil {
		return err
	}
	cats, err := h.Catalog.Categories()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"components": comps, "categories": cats})
}

// Detail returns the component and its price at ?qty (default 1) on ?date
// (default today).
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "component"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "component not found"})
	}
	qty := 1
	if raw := c.Query("qty"); raw != "" {
		if qty, ok = validate.Qty(raw); !ok {
			return badRequest(c, "qty", "qty must be a positive integer")
		}
	}
	on, ok := validate.Date(c.Query("date"))
	if !ok {
		return badRequest(c, "date", "date must be YYYY-MM-DD")
	}
	if on.IsZero() {
		on = time.Now()
	}

	comp, err := h.Catalog.Component(c.UserContext(), id)
	if err != nil {
		return apiError(c, "component.detail", err)
	}
	price, err := h.Catalog.Preview(c.UserContext(), id, qty, on)
	if err != nil {
		return apiError(c, "component.preview", err)
	}
	return c.JSON(fiber.Map{"component": comp, "price": price})
}
