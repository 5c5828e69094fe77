package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "cotizador/internal/log"
	"cotizador/internal/promotion"
	"cotizador/internal/services"
	"cotizador/internal/validate"
)

type PromotionHandler struct {
	Promotions *services.PromotionService
}

type promotionRequest struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	ValidFrom    string           `json:"valid_from"`
	ValidTo      string           `json:"valid_to"`
	BuyN         int              `json:"buy_n"`
	PayM         int              `json:"pay_m"`
	FlatPercent  *decimal.Decimal `json:"flat_percent"`
	Tiers        []promotion.Tier `json:"tiers"`
	ComponentIDs []string         `json:"component_ids"`
}

func (h *PromotionHandler) Create(c *fiber.Ctx) error {
	var req promotionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "malformed promotion")
	}
	id, ok := validate.ID(req.ID)
	if !ok {
		return badRequest(c, "id", "invalid promotion id")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return badRequest(c, "name", "name must be 1-80 characters")
	}
	from, ok := validate.Date(req.ValidFrom)
	if !ok {
		return badRequest(c, "valid_from", "valid_from must be YYYY-MM-DD")
	}
	to, ok := validate.Date(req.ValidTo)
	if !ok {
		return badRequest(c, "valid_to", "valid_to must be YYYY-MM-DD")
	}
	for _, cid := range req.ComponentIDs {
		if _, ok := validate.ID(cid); !ok {
			return badRequest(c, "component_ids", "invalid component id")
		}
	}

	view, err := h.Promotions.Create(c.UserContext(), services.PromotionInput{
		ID:           id,
		Name:         name,
		Description:  req.Description,
		ValidFrom:    from,
		ValidTo:      to,
		BuyN:         req.BuyN,
		PayM:         req.PayM,
		FlatPercent:  req.FlatPercent,
		Tiers:        req.Tiers,
		ComponentIDs: req.ComponentIDs,
	})
	if err != nil {
		return apiError(c, "promotion.create", err)
	}
	applog.Audit(c, "promotion.create", map[string]any{"promotion": view.ID})
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *PromotionHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "promotion not found"})
	}
	view, err := h.Promotions.Get(id)
	if err != nil {
		return apiError(c, "promotion.get", err)
	}
	return c.JSON(view)
}
