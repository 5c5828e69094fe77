package repos

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"cotizador/internal/domain"
)

// ErrActiveOrderExists is returned by Create when the partial unique index on
// (quotation, supplier, pct) already holds an ACTIVE order.
var ErrActiveOrderExists = errors.New("active order already exists")

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- List summary ----------
type OrderSummary struct {
	ID                 string          `db:"id" json:"id"`
	QuotationID        string          `db:"quotation_id" json:"quotation_id"`
	SupplierKey        string          `db:"supplier_key" json:"supplier_key"`
	SupplierName       string          `db:"supplier_name" json:"supplier_name"`
	FulfillmentPercent int             `db:"fulfillment_percent" json:"fulfillment_percent"`
	Total              decimal.Decimal `db:"total" json:"total"`
	Status             string          `db:"status" json:"status"`
	CreatedAt          string          `db:"created_at" json:"created_at"`
}

type orderRow struct {
	ID                 string          `db:"id"`
	QuotationID        string          `db:"quotation_id"`
	SupplierKey        string          `db:"supplier_key"`
	SupplierName       string          `db:"supplier_name"`
	EmissionDate       string          `db:"emission_date"`
	DeliveryDate       string          `db:"delivery_date"`
	FulfillmentPercent int             `db:"fulfillment_percent"`
	Total              decimal.Decimal `db:"total"`
	Status             string          `db:"status"`
	CreatedAt          string          `db:"created_at"`
}

type orderLineRow struct {
	ComponentID       string          `db:"component_id"`
	Description       string          `db:"description"`
	RequestedQuantity int             `db:"requested_quantity"`
	Quantity          int             `db:"quantity"`
	UnitPrice         decimal.Decimal `db:"unit_price"`
	Subtotal          decimal.Decimal `db:"subtotal"`
}

// Create inserts the order header and its lines. A concurrent insert that
// lost the race on the active triple gets ErrActiveOrderExists.
func (r *OrderRepo) Create(o domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	delivery := ""
	if !o.DeliveryDate.IsZero() {
		delivery = o.DeliveryDate.Format(dateLayout)
	}
	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, quotation_id, supplier_key, supplier_name, emission_date, delivery_date, fulfillment_percent, total, status, created_at)
	  VALUES
	    (?,  ?,            ?,            ?,             ?,             ?,             ?,                   ?,     ?,      ?)
	`, o.ID, o.QuotationID, o.SupplierKey, o.SupplierName, o.EmissionDate.Format(dateLayout), delivery,
		o.FulfillmentPercent, o.Total.String(), string(o.Status), o.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
		if isUniqueViolation(err) {
			return ErrActiveOrderExists
		}
		return err
	}
	for i, l := range o.Lines {
		if _, err := tx.Exec(`
		  INSERT INTO order_lines(order_id, position, component_id, description, requested_quantity, quantity, unit_price, subtotal)
		  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		`, o.ID, i, l.ComponentID, l.Description, l.RequestedQuantity, l.Quantity, l.UnitPrice.String(), l.Subtotal.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(orderID string) (domain.Order, error) {
	var row orderRow
	if err := r.db.Get(&row, `
		SELECT id, quotation_id, supplier_key, supplier_name, emission_date, delivery_date,
		       fulfillment_percent, total, status, COALESCE(created_at,'') AS created_at
		FROM orders
		WHERE id = ?
	`, orderID); err != nil {
		return domain.Order{}, err
	}

	var lines []orderLineRow
	if err := r.db.Select(&lines, `
		SELECT component_id, description, requested_quantity, quantity, unit_price, subtotal
		FROM order_lines
		WHERE order_id = ?
		ORDER BY position
	`, orderID); err != nil {
		return domain.Order{}, err
	}

	o := domain.Order{
		ID:                 row.ID,
		QuotationID:        row.QuotationID,
		SupplierKey:        row.SupplierKey,
		SupplierName:       row.SupplierName,
		EmissionDate:       parseDate(row.EmissionDate),
		DeliveryDate:       parseDate(row.DeliveryDate),
		FulfillmentPercent: row.FulfillmentPercent,
		Total:              row.Total,
		Status:             domain.OrderStatus(row.Status),
		CreatedAt:          parseDate(row.CreatedAt),
		Lines:              make([]domain.OrderLine, 0, len(lines)),
	}
	for _, l := range lines {
		o.Lines = append(o.Lines, domain.OrderLine{
			ComponentID:       l.ComponentID,
			Description:       l.Description,
			RequestedQuantity: l.RequestedQuantity,
			Quantity:          l.Quantity,
			UnitPrice:         l.UnitPrice,
			Subtotal:          l.Subtotal,
		})
	}
	return o, nil
}

// FindActive returns the id of the active order for the triple, or
// sql.ErrNoRows.
func (r *OrderRepo) FindActive(quotationID, supplierKey string, pct int) (string, error) {
	var id string
	err := r.db.Get(&id, `
		SELECT id FROM orders
		WHERE quotation_id = ? AND supplier_key = ? AND fulfillment_percent = ? AND status = 'ACTIVE'
	`, quotationID, supplierKey, pct)
	return id, err
}

func (r *OrderRepo) ListByQuotation(quotationID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, quotation_id, supplier_key, supplier_name, fulfillment_percent, total, status,
		       COALESCE(created_at,'') AS created_at
		FROM orders
		WHERE quotation_id = ?
		ORDER BY created_at DESC, id
	`, quotationID)
	return out, err
}

// MarkCancelled flips an ACTIVE order to CANCELLED. It returns
// sql.ErrNoRows when no active order matched.
func (r *OrderRepo) MarkCancelled(id string) error {
	res, err := r.db.Exec(`UPDATE orders SET status = 'CANCELLED' WHERE id = ? AND status = 'ACTIVE'`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// extended codes disabled on this connection
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}
