package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cotizador/internal/log"
	"cotizador/internal/quotation"
	"cotizador/internal/services"
	"cotizador/internal/validate"
)

type QuotationHandler struct {
	Quotations *services.QuotationService
}

type quotationRequest struct {
	Jurisdiction string           `json:"jurisdiction"`
	Date         string           `json:"date"`
	Lines        []quotation.Line `json:"lines"`
}

func (h *QuotationHandler) Create(c *fiber.Ctx) error {
	var req quotationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "malformed quotation")
	}
	jurisdiction, ok := validate.Jurisdiction(req.Jurisdiction)
	if !ok {
		return badRequest(c, "jurisdiction", "jurisdiction must be a 2-3 letter code")
	}
	date, ok := validate.Date(req.Date)
	if !ok {
		return badRequest(c, "date", "date must be YYYY-MM-DD")
	}
	for _, l := range req.Lines {
		if _, ok := validate.ID(l.ComponentID); !ok {
			return badRequest(c, "component_id", "invalid component id")
		}
		// non-positive quantities are left to quotation.Build
		if l.Quantity > validate.MaxQuantity {
			return badRequest(c, "quantity", "quantity must be at most 100000")
		}
	}

	q, err := h.Quotations.Create(c.UserContext(), jurisdiction, date, req.Lines)
	if err != nil {
		return apiError(c, "quotation.create", err)
	}
	applog.Audit(c, "quotation.create", map[string]any{"quotation": q.ID, "total": q.Total.StringFixed(2)})
	return c.Status(fiber.StatusCreated).JSON(q)
}

func (h *QuotationHandler) List(c *fiber.Ctx) error {
	list, err := h.Quotations.List(c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *QuotationHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "quotation not found"})
	}
	q, err := h.Quotations.Get(id)
	if err != nil {
		return apiError(c, "quotation.get", err)
	}
	return c.JSON(q)
}

func (h *QuotationHandler) Print(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "Quotation not found")
	}
	q, err := h.Quotations.Get(id)
	if err != nil {
		if statusFor(err) == fiber.StatusNotFound {
			return notFoundPage(c, "Quotation not found")
		}
		return err
	}
	return render(c, "quotation", fiber.Map{"Q": q})
}
