// Package ordering turns an approved quotation into a supplier purchase
// order at a requested fulfillment level ("nivel de surtido").
package ordering

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cotizador/internal/domain"
)

var (
	ErrInvalidFulfillmentLevel = errors.New("fulfillment level must be between 0 and 100")
	ErrEmptyQuotation          = errors.New("quotation has no lines")
	ErrInvalidDeliveryDate     = errors.New("delivery date is before emission date")
)

// Allocate scales qty by pct percent, rounding down. A positive request that
// rounds to zero still gets one unit; pct == 0 reserves nothing.
func Allocate(qty, pct int) int {
	if qty <= 0 || pct <= 0 {
		return 0
	}
	if pct >= 100 {
		return qty
	}
	// floor(qty*pct/100) without forming qty*pct
	n := qty/100*pct + qty%100*pct/100
	if n == 0 {
		return 1
	}
	return n
}

// Generate builds the order. Unit prices are the quotation's frozen net
// prices; nothing is re-priced and no availability is checked.
func Generate(q domain.Quotation, s domain.Supplier, pct int, emission, delivery time.Time) (domain.Order, error) {
	if pct < 0 || pct > 100 {
		return domain.Order{}, fmt.Errorf("%w: got %d", ErrInvalidFulfillmentLevel, pct)
	}
	if len(q.Lines) == 0 {
		return domain.Order{}, ErrEmptyQuotation
	}
	if !delivery.IsZero() && delivery.Before(emission) {
		return domain.Order{}, ErrInvalidDeliveryDate
	}

	o := domain.Order{
		QuotationID:        q.ID,
		SupplierKey:        s.Key,
		SupplierName:       s.Name,
		EmissionDate:       emission,
		DeliveryDate:       delivery,
		FulfillmentPercent: pct,
		Lines:              make([]domain.OrderLine, 0, len(q.Lines)),
		Total:              decimal.Zero,
		Status:             domain.OrderActive,
	}
	for _, l := range q.Lines {
		qty := Allocate(l.Quantity, pct)
		sub := l.UnitNetPrice.Mul(decimal.NewFromInt(int64(qty)))
		o.Lines = append(o.Lines, domain.OrderLine{
			ComponentID:       l.ComponentID,
			Description:       l.Description,
			RequestedQuantity: l.Quantity,
			Quantity:          qty,
			UnitPrice:         l.UnitNetPrice,
			Subtotal:          sub,
		})
		o.Total = o.Total.Add(sub)
	}
	return o, nil
}
