package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cotizador/internal/domain"
	applog "cotizador/internal/log"
	"cotizador/internal/ordering"
	"cotizador/internal/repos"
)

type OrderService struct {
	Quotations *repos.QuotationRepo
	Suppliers  *repos.SupplierRepo
	Orders     *repos.OrderRepo
	now        func() time.Time
}

func NewOrderService(quotes *repos.QuotationRepo, suppliers *repos.SupplierRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Quotations: quotes, Suppliers: suppliers, Orders: orders, now: time.Now}
}

// Generate creates the single active order for (quotation, supplier, pct).
// A zero emission date means today.
func (s *OrderService) Generate(quotationID, supplierKey string, pct int, emission, delivery time.Time) (domain.Order, error) {
	q, err := s.Quotations.Get(quotationID)
	if err != nil {
		return domain.Order{}, notFound(err, "quotation", quotationID)
	}
	sup, err := s.Suppliers.Get(supplierKey)
	if err != nil {
		return domain.Order{}, notFound(err, "supplier", supplierKey)
	}

	now := s.now().UTC()
	if emission.IsZero() {
		emission = now
	}
	o, err := ordering.Generate(q, sup, pct, emission, delivery)
	if err != nil {
		return domain.Order{}, err
	}

	existing, err := s.Orders.FindActive(quotationID, supplierKey, pct)
	switch {
	case err == nil:
		return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderExists, existing)
	case !errors.Is(err, sql.ErrNoRows):
		return domain.Order{}, err
	}

	o.ID = uuid.NewString()
	o.CreatedAt = now
	if err := s.Orders.Create(o); err != nil {
		if errors.Is(err, repos.ErrActiveOrderExists) {
			return domain.Order{}, fmt.Errorf("%w: %s/%s/%d", ErrOrderExists, quotationID, supplierKey, pct)
		}
		return domain.Order{}, err
	}
	applog.Audit(nil, "order.generated", map[string]any{
		"order": o.ID, "quotation": quotationID, "supplier": supplierKey, "pct": pct, "total": o.Total.StringFixed(2),
	})
	return o, nil
}

func (s *OrderService) Get(id string) (domain.Order, error) {
	o, err := s.Orders.Get(id)
	if err != nil {
		return domain.Order{}, notFound(err, "order", id)
	}
	return o, nil
}

func (s *OrderService) ListByQuotation(quotationID string) ([]repos.OrderSummary, error) {
	if _, err := s.Quotations.Get(quotationID); err != nil {
		return nil, notFound(err, "quotation", quotationID)
	}
	return s.Orders.ListByQuotation(quotationID)
}

// Cancel flips an active order to CANCELLED; the order itself is kept.
func (s *OrderService) Cancel(id string) (domain.Order, error) {
	o, err := s.Get(id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status == domain.OrderCancelled {
		return domain.Order{}, ErrOrderCancelled
	}
	if err := s.Orders.MarkCancelled(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, ErrOrderCancelled
		}
		return domain.Order{}, err
	}
	applog.Audit(nil, "order.cancelled", map[string]any{"order": id})
	o.Status = domain.OrderCancelled
	return o, nil
}
