package repos

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cotizador/internal/domain"
	"cotizador/internal/pricing"
)

type QuotationRepo struct{ db *sqlx.DB }

func NewQuotationRepo(db *sqlx.DB) *QuotationRepo { return &QuotationRepo{db: db} }

type quotationRow struct {
	ID           string          `db:"id"`
	Date         string          `db:"date"`
	Jurisdiction string          `db:"jurisdiction"`
	Subtotal     decimal.Decimal `db:"subtotal"`
	Tax          decimal.Decimal `db:"tax"`
	Total        decimal.Decimal `db:"total"`
	CreatedAt    string          `db:"created_at"`
}

type quotationLineRow struct {
	ComponentID   string          `db:"component_id"`
	Description   string          `db:"description"`
	Quantity      int             `db:"quantity"`
	UnitBasePrice decimal.Decimal `db:"unit_base_price"`
	UnitNetPrice  decimal.Decimal `db:"unit_net_price"`
	UnitDiscount  decimal.Decimal `db:"unit_discount"`
	DiscountsJSON string          `db:"discounts_json"`
	Subtotal      decimal.Decimal `db:"subtotal"`
}

// QuotationSummary is the list view used by the API.
type QuotationSummary struct {
	ID           string          `db:"id" json:"id"`
	Date         string          `db:"date" json:"date"`
	Jurisdiction string          `db:"jurisdiction" json:"jurisdiction"`
	Total        decimal.Decimal `db:"total" json:"total"`
	Lines        int             `db:"lines" json:"lines"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
}

// Create writes the header and lines in one transaction.
func (r *QuotationRepo) Create(q domain.Quotation) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO quotations(id, date, jurisdiction, subtotal, tax, total, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.Date.Format(dateLayout), q.Jurisdiction, q.Subtotal.String(), q.Tax.String(), q.Total.String(),
		q.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	for i, l := range q.Lines {
		discounts, err := json.Marshal(l.Discounts)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
		  INSERT INTO quotation_lines(quotation_id, position, component_id, description, quantity,
		    unit_base_price, unit_net_price, unit_discount, discounts_json, subtotal)
		  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, q.ID, i, l.ComponentID, l.Description, l.Quantity, l.UnitBasePrice.String(), l.UnitNetPrice.String(),
			l.UnitDiscount.String(), string(discounts), l.Subtotal.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Get loads a quotation with its lines in stored order. Missing rows surface
// as sql.ErrNoRows.
func (r *QuotationRepo) Get(id string) (domain.Quotation, error) {
	var row quotationRow
	if err := r.db.Get(&row, `
		SELECT id, date, jurisdiction, subtotal, tax, total, COALESCE(created_at,'') AS created_at
		FROM quotations WHERE id = ?
	`, id); err != nil {
		return domain.Quotation{}, err
	}
	var lines []quotationLineRow
	if err := r.db.Select(&lines, `
		SELECT component_id, description, quantity, unit_base_price, unit_net_price, unit_discount, discounts_json, subtotal
		FROM quotation_lines
		WHERE quotation_id = ?
		ORDER BY position
	`, id); err != nil {
		return domain.Quotation{}, err
	}

	q := domain.Quotation{
		ID:           row.ID,
		Date:         parseDate(row.Date),
		Jurisdiction: row.Jurisdiction,
		Subtotal:     row.Subtotal,
		Tax:          row.Tax,
		Total:        row.Total,
		CreatedAt:    parseDate(row.CreatedAt),
		Lines:        make([]domain.QuotationLine, 0, len(lines)),
	}
	for _, l := range lines {
		var discounts []pricing.Applied
		if l.DiscountsJSON != "" {
			if err := json.Unmarshal([]byte(l.DiscountsJSON), &discounts); err != nil {
				return domain.Quotation{}, err
			}
		}
		q.Lines = append(q.Lines, domain.QuotationLine{
			ComponentID:   l.ComponentID,
			Description:   l.Description,
			Quantity:      l.Quantity,
			UnitBasePrice: l.UnitBasePrice,
			UnitNetPrice:  l.UnitNetPrice,
			UnitDiscount:  l.UnitDiscount,
			Discounts:     discounts,
			Subtotal:      l.Subtotal,
		})
	}
	return q, nil
}

func (r *QuotationRepo) ListLatest(limit int) ([]QuotationSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []QuotationSummary
	err := r.db.Select(&out, `
		SELECT q.id, q.date, q.jurisdiction, q.total, COALESCE(q.created_at,'') AS created_at,
		       (SELECT COUNT(*) FROM quotation_lines l WHERE l.quotation_id = q.id) AS lines
		FROM quotations q
		ORDER BY q.created_at DESC, q.id
		LIMIT ?
	`, limit)
	return out, err
}
