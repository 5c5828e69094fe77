package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"cotizador/internal/domain"
)

type SupplierRepo struct{ db *sqlx.DB }

func NewSupplierRepo(db *sqlx.DB) *SupplierRepo { return &SupplierRepo{db: db} }

func (r *SupplierRepo) Get(key string) (domain.Supplier, error) {
	var s domain.Supplier
	err := r.db.Get(&s, `SELECT supplier_key, name, legal_name FROM suppliers WHERE supplier_key = ?`, key)
	return s, err
}

func (r *SupplierRepo) List() ([]domain.Supplier, error) {
	var out []domain.Supplier
	err := r.db.Select(&out, `SELECT supplier_key, name, legal_name FROM suppliers ORDER BY name`)
	return out, err
}

// StockRow is one supplier_stock entry with the component description.
type StockRow struct {
	SupplierKey string `db:"supplier_key"`
	ComponentID string `db:"component_id"`
	Description string `db:"description"`
	Qty         int    `db:"qty"`
}

// Qty returns what a supplier reports in stock for a component.
// If no row exists, it returns sql.ErrNoRows from sqlx.Get.
func (r *SupplierRepo) Qty(supplierKey, componentID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `
		SELECT qty FROM supplier_stock
		WHERE supplier_key = ? AND component_id = ?
	`, supplierKey, componentID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

func (r *SupplierRepo) Stock(supplierKey string) ([]StockRow, error) {
	var rows []StockRow
	err := r.db.Select(&rows, `
		SELECT s.supplier_key, s.component_id, c.description, s.qty
		FROM supplier_stock s
		JOIN components c ON c.id = s.component_id
		WHERE s.supplier_key = ?
		ORDER BY c.description
	`, supplierKey)
	return rows, err
}

// UpsertQty sets qty for (supplierKey, componentID) creating the row if needed.
func (r *SupplierRepo) UpsertQty(supplierKey, componentID string, qty int) error {
	if qty < 0 {
		return fmt.Errorf("negative stock %d for %s/%s", qty, supplierKey, componentID)
	}
	_, err := r.db.Exec(`
		INSERT INTO supplier_stock(supplier_key, component_id, qty, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(supplier_key, component_id) DO UPDATE SET qty = excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, supplierKey, componentID, qty)
	return err
}
