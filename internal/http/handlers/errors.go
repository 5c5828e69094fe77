package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "cotizador/internal/log"
	"cotizador/internal/ordering"
	"cotizador/internal/promotion"
	"cotizador/internal/quotation"
	"cotizador/internal/services"
	"cotizador/internal/tax"
)

// statusFor maps domain errors to HTTP statuses; 0 means unexpected.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrOrderExists), errors.Is(err, services.ErrOrderCancelled):
		return fiber.StatusConflict
	case errors.Is(err, quotation.ErrEmptyQuotation),
		errors.Is(err, quotation.ErrUnknownComponent),
		errors.Is(err, quotation.ErrInvalidQuantity),
		errors.Is(err, ordering.ErrEmptyQuotation),
		errors.Is(err, ordering.ErrInvalidFulfillmentLevel),
		errors.Is(err, ordering.ErrInvalidDeliveryDate),
		errors.Is(err, promotion.ErrInvalidPromotion),
		errors.Is(err, promotion.ErrInvalidPromotionTier),
		errors.Is(err, tax.ErrUnknownJurisdiction):
		return fiber.StatusUnprocessableEntity
	}
	return 0
}

// apiError answers known domain errors as JSON and hands anything else to the
// app ErrorHandler.
func apiError(c *fiber.Ctx, action string, err error) error {
	status := statusFor(err)
	if status == 0 {
		return err
	}
	applog.Info(c, action+".rejected", map[string]any{"error": err.Error()})
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// badRequest logs a validation failure on a single field.
func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler logs unexpected errors and answers without internals: JSON
// under /api, a rendered page elsewhere.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		msg = fe.Message
	} else {
		applog.Error(c, "server.error", err, nil)
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("error", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
