package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "cotizador/internal/log"
	"cotizador/internal/services"
	"cotizador/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Suppliers(c *fiber.Ctx) error {
	list, err := h.Inv.ListSuppliers()
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Check reports supplier stock for ?component, or for everything the
// supplier carries when it is omitted.
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	key, ok := validate.ID(c.Params("key"))
	if !ok {
		return badRequest(c, "supplier", "invalid supplier key")
	}

	componentID := strings.TrimSpace(c.Query("component"))
	if componentID == "" {
		stock, err := h.Inv.Stock(key)
		if err != nil {
			return apiError(c, "availability.check", err)
		}
		return c.JSON(stock)
	}
	if componentID, ok = validate.ID(componentID); !ok {
		return badRequest(c, "component", "invalid component id")
	}

	avail, err := h.Inv.CheckAvailability(key, componentID)
	if err != nil {
		return apiError(c, "availability.check", err)
	}
	return c.JSON(avail)
}

type stockRequest struct {
	Qty *int `json:"qty"`
}

// SetStock records the supplier's on-hand quantity for one component.
func (h *InventoryHandler) SetStock(c *fiber.Ctx) error {
	key, ok := validate.ID(c.Params("key"))
	if !ok {
		return badRequest(c, "supplier", "invalid supplier key")
	}
	componentID, ok := validate.ID(c.Params("component"))
	if !ok {
		return badRequest(c, "component", "invalid component id")
	}
	var req stockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "malformed stock update")
	}
	if req.Qty == nil || *req.Qty < 0 {
		return badRequest(c, "qty", "qty must be a non-negative integer")
	}

	avail, err := h.Inv.SetStock(key, componentID, *req.Qty)
	if err != nil {
		return apiError(c, "stock.save", err)
	}
	applog.Audit(c, "stock.save", map[string]any{"supplier": key, "component": componentID, "qty": *req.Qty})
	return c.JSON(avail)
}
