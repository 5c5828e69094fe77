package services

import (
	"database/sql"
	"errors"

	"cotizador/internal/domain"
	applog "cotizador/internal/log"
	"cotizador/internal/repos"
)

// lowStockBelow is the quantity under which a supplier is flagged LOW_STOCK.
const lowStockBelow = 5

type InventoryService struct {
	Suppliers  *repos.SupplierRepo
	Components *repos.ComponentRepo
}

func NewInventoryService(suppliers *repos.SupplierRepo, components *repos.ComponentRepo) *InventoryService {
	return &InventoryService{Suppliers: suppliers, Components: components}
}

func (s *InventoryService) ListSuppliers() ([]domain.Supplier, error) {
	return s.Suppliers.List()
}

// CheckAvailability converts qty to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(supplierKey, componentID string) (domain.Availability, error) {
	if _, err := s.Suppliers.Get(supplierKey); err != nil {
		return domain.Availability{}, notFound(err, "supplier", supplierKey)
	}
	a := domain.Availability{SupplierKey: supplierKey, ComponentID: componentID, Status: "OUT_OF_STOCK"}
	qty, err := s.Suppliers.Qty(supplierKey, componentID)
	if err != nil {
		// No stock row is the same as none in stock.
		if errors.Is(err, sql.ErrNoRows) {
			return a, nil
		}
		return domain.Availability{}, err
	}
	a.Qty = qty
	a.Status = stockStatus(qty)
	return a, nil
}

// Stock lists availability for everything the supplier carries.
func (s *InventoryService) Stock(supplierKey string) ([]domain.Availability, error) {
	if _, err := s.Suppliers.Get(supplierKey); err != nil {
		return nil, notFound(err, "supplier", supplierKey)
	}
	rows, err := s.Suppliers.Stock(supplierKey)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Availability, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Availability{
			SupplierKey: r.SupplierKey,
			ComponentID: r.ComponentID,
			Status:      stockStatus(r.Qty),
			Qty:         r.Qty,
		})
	}
	return out, nil
}

// SetStock records the supplier's on-hand quantity for a component and
// returns the resulting availability.
func (s *InventoryService) SetStock(supplierKey, componentID string, qty int) (domain.Availability, error) {
	if _, err := s.Suppliers.Get(supplierKey); err != nil {
		return domain.Availability{}, notFound(err, "supplier", supplierKey)
	}
	if _, err := s.Components.Get(componentID); err != nil {
		return domain.Availability{}, notFound(err, "component", componentID)
	}
	if err := s.Suppliers.UpsertQty(supplierKey, componentID, qty); err != nil {
		return domain.Availability{}, err
	}
	applog.Audit(nil, "stock.saved", map[string]any{"supplier": supplierKey, "component": componentID, "qty": qty})
	return domain.Availability{SupplierKey: supplierKey, ComponentID: componentID, Status: stockStatus(qty), Qty: qty}, nil
}

func stockStatus(qty int) string {
	switch {
	case qty >= lowStockBelow:
		return "IN_STOCK"
	case qty > 0:
		return "LOW_STOCK"
	default:
		return "OUT_OF_STOCK"
	}
}
