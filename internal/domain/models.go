package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"cotizador/internal/pricing"
	"cotizador/internal/promotion"
)

type Component struct {
	ID          string          `json:"id" db:"id"`
	Description string          `json:"description" db:"description"`
	Brand       string          `json:"brand" db:"brand"`
	Model       string          `json:"model" db:"model"`
	Category    string          `json:"category" db:"category"`   // cpu | gpu | storage | ram | ...
	Attribute   string          `json:"attribute" db:"attribute"` // e.g. "1TB", "8GB GDDR6"
	Cost        decimal.Decimal `json:"cost" db:"cost"`
	BasePrice   decimal.Decimal `json:"base_price" db:"base_price"`
	// Promotion is the stored record linked to the component, if any.
	Promotion *promotion.Record `json:"promotion,omitempty" db:"-"`
}

type Supplier struct {
	Key       string `json:"key" db:"supplier_key"`
	Name      string `json:"name" db:"name"`
	LegalName string `json:"legal_name" db:"legal_name"`
}

type QuotationLine struct {
	ComponentID   string            `json:"component_id"`
	Description   string            `json:"description"`
	Quantity      int               `json:"quantity"`
	UnitBasePrice decimal.Decimal   `json:"unit_base_price"`
	UnitNetPrice  decimal.Decimal   `json:"unit_net_price"`
	UnitDiscount  decimal.Decimal   `json:"unit_discount"`
	Discounts     []pricing.Applied `json:"discounts,omitempty"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
}

type Quotation struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Jurisdiction string          `json:"jurisdiction"`
	Lines        []QuotationLine `json:"lines"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}

type OrderStatus string

const (
	OrderActive    OrderStatus = "ACTIVE"
	OrderCancelled OrderStatus = "CANCELLED"
)

type OrderLine struct {
	ComponentID       string          `json:"component_id"`
	Description       string          `json:"description"`
	RequestedQuantity int             `json:"requested_quantity"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID                 string          `json:"id"`
	QuotationID        string          `json:"quotation_id"`
	SupplierKey        string          `json:"supplier_key"`
	SupplierName       string          `json:"supplier_name"`
	EmissionDate       time.Time       `json:"emission_date"`
	DeliveryDate       time.Time       `json:"delivery_date"`
	FulfillmentPercent int             `json:"fulfillment_percent"`
	Lines              []OrderLine     `json:"lines"`
	Total              decimal.Decimal `json:"total"`
	Status             OrderStatus     `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Availability is what a supplier reports for one component. It is
// informational; orders are generated regardless of stock.
type Availability struct {
	SupplierKey string `json:"supplier_key"`
	ComponentID string `json:"component_id"`
	Status      string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty         int    `json:"qty"`
}
