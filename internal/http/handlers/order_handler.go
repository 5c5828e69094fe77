package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cotizador/internal/log"
	"cotizador/internal/services"
	"cotizador/internal/validate"
)

type OrderHandler struct {
	Orders     *services.OrderService
	Quotations *services.QuotationService
}

type orderRequest struct {
	SupplierKey        string `json:"supplier_key"`
	FulfillmentPercent *int   `json:"fulfillment_percent"`
	EmissionDate       string `json:"emission_date"`
	DeliveryDate       string `json:"delivery_date"`
}

// Generate creates the purchase order for a quotation. The fulfillment
// level defaults to 100.
func (h *OrderHandler) Generate(c *fiber.Ctx) error {
	qid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "quotation not found"})
	}
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "malformed order")
	}
	supplier, ok := validate.ID(req.SupplierKey)
	if !ok {
		return badRequest(c, "supplier_key", "invalid supplier key")
	}
	pct := 100
	if req.FulfillmentPercent != nil {
		pct = *req.FulfillmentPercent
	}
	if !validate.Percent(pct) {
		return badRequest(c, "fulfillment_percent", "fulfillment_percent must be 0-100")
	}
	emission, ok := validate.Date(req.EmissionDate)
	if !ok {
		return badRequest(c, "emission_date", "emission_date must be YYYY-MM-DD")
	}
	delivery, ok := validate.Date(req.DeliveryDate)
	if !ok {
		return badRequest(c, "delivery_date", "delivery_date must be YYYY-MM-DD")
	}

	o, err := h.Orders.Generate(qid, supplier, pct, emission, delivery)
	if err != nil {
		return apiError(c, "order.generate", err)
	}
	applog.Audit(c, "order.generate", map[string]any{
		"order_id":  o.ID,
		"quotation": qid,
		"supplier":  supplier,
		"pct":       pct,
		"total":     o.Total.StringFixed(2),
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) ListByQuotation(c *fiber.Ctx) error {
	qid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "quotation not found"})
	}
	list, err := h.Orders.ListByQuotation(qid)
	if err != nil {
		return apiError(c, "order.list", err)
	}
	return c.JSON(list)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	o, err := h.Orders.Get(oid)
	if err != nil {
		return apiError(c, "order.get", err)
	}
	return c.JSON(o)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	o, err := h.Orders.Cancel(oid)
	if err != nil {
		return apiError(c, "order.cancel", err)
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": oid})
	return c.JSON(o)
}

// Print renders the order next to its quotation.
func (h *OrderHandler) Print(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "Order not found")
	}
	o, err := h.Orders.Get(oid)
	if err != nil {
		if statusFor(err) == fiber.StatusNotFound {
			return notFoundPage(c, "Order not found")
		}
		return err
	}
	q, err := h.Quotations.Get(o.QuotationID)
	if err != nil {
		return err
	}
	return render(c, "order", fiber.Map{"Order": o, "Q": q})
}
