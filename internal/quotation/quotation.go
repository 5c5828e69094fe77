// Package quotation prices a cart of components into a Quotation.
package quotation

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cotizador/internal/domain"
	"cotizador/internal/pricing"
	"cotizador/internal/promotion"
)

var (
	ErrEmptyQuotation   = errors.New("quotation has no lines")
	ErrUnknownComponent = errors.New("unknown component")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
)

// Catalog is a snapshot of the components a request may reference.
type Catalog interface {
	Lookup(id string) (domain.Component, bool)
}

// Snapshot is a Catalog backed by a map keyed by component ID.
type Snapshot map[string]domain.Component

func (s Snapshot) Lookup(id string) (domain.Component, bool) {
	c, ok := s[id]
	return c, ok
}

type TaxCalculator interface {
	Tax(subtotal decimal.Decimal, jurisdiction string) (decimal.Decimal, error)
}

// TaxFunc adapts a plain function to TaxCalculator.
type TaxFunc func(subtotal decimal.Decimal, jurisdiction string) (decimal.Decimal, error)

func (f TaxFunc) Tax(subtotal decimal.Decimal, jurisdiction string) (decimal.Decimal, error) {
	return f(subtotal, jurisdiction)
}

type Line struct {
	ComponentID string `json:"component_id"`
	Quantity    int    `json:"quantity"`
}

type Request struct {
	Date         time.Time
	Jurisdiction string
	Lines        []Line
}

// Build prices every line and totals the quotation. It returns either a
// complete quotation or an error, never a partial result.
func Build(req Request, catalog Catalog, taxes TaxCalculator) (domain.Quotation, error) {
	if len(req.Lines) == 0 {
		return domain.Quotation{}, ErrEmptyQuotation
	}

	q := domain.Quotation{
		Date:         req.Date,
		Jurisdiction: req.Jurisdiction,
		Lines:        make([]domain.QuotationLine, 0, len(req.Lines)),
		Subtotal:     decimal.Zero,
	}
	for _, l := range req.Lines {
		c, ok := catalog.Lookup(l.ComponentID)
		if !ok {
			return domain.Quotation{}, fmt.Errorf("%w: %s", ErrUnknownComponent, l.ComponentID)
		}
		if l.Quantity <= 0 {
			return domain.Quotation{}, fmt.Errorf("%w: %s has %d", ErrInvalidQuantity, l.ComponentID, l.Quantity)
		}

		promo := EffectivePromotion(c, req.Date)
		res := pricing.Price(c.BasePrice, promo, l.Quantity)
		sub := res.UnitNetPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))

		q.Lines = append(q.Lines, domain.QuotationLine{
			ComponentID:   c.ID,
			Description:   c.Description,
			Quantity:      l.Quantity,
			UnitBasePrice: c.BasePrice,
			UnitNetPrice:  res.UnitNetPrice,
			UnitDiscount:  res.UnitDiscount,
			Discounts:     res.Applied,
			Subtotal:      sub,
		})
		q.Subtotal = q.Subtotal.Add(sub)
	}

	tax, err := taxes.Tax(q.Subtotal, req.Jurisdiction)
	if err != nil {
		return domain.Quotation{}, fmt.Errorf("tax for %s: %w", req.Jurisdiction, err)
	}
	q.Tax = tax
	q.Total = q.Subtotal.Add(tax)
	return q, nil
}

// EffectivePromotion resolves the component's stored promotion. A promotion
// outside its validity window on the given date prices as no promotion.
func EffectivePromotion(c domain.Component, on time.Time) promotion.Promotion {
	if c.Promotion == nil {
		return promotion.None()
	}
	p := promotion.Resolve(*c.Promotion)
	if !on.IsZero() && !p.ActiveAt(on) {
		return promotion.None()
	}
	return p
}
