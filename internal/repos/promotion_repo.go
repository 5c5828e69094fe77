package repos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cotizador/internal/promotion"
)

type PromotionRepo struct{ db *sqlx.DB }

func NewPromotionRepo(db *sqlx.DB) *PromotionRepo { return &PromotionRepo{db: db} }

// promotionRow mirrors the promotions table; every rule column is nullable
// because historical rows were entered inconsistently.
type promotionRow struct {
	ID              string              `db:"id"`
	Name            string              `db:"name"`
	Description     string              `db:"description"`
	ValidFrom       sql.NullString      `db:"valid_from"`
	ValidTo         sql.NullString      `db:"valid_to"`
	BaseType        sql.NullString      `db:"base_type"`
	N               sql.NullInt64       `db:"n"`
	M               sql.NullInt64       `db:"m"`
	FlatPercent     decimal.NullDecimal `db:"flat_percent"`
	AccumulableType sql.NullString      `db:"accumulable_type"`
}

type tierRow struct {
	MinQuantity     int             `db:"min_quantity"`
	DiscountPercent decimal.Decimal `db:"discount_percent"`
}

// Get returns the stored record as-is, tiers in storage order. Missing rows
// surface as sql.ErrNoRows.
func (r *PromotionRepo) Get(id string) (promotion.Record, error) {
	return getPromotion(r.db, id)
}

func getPromotion(q sqlx.Queryer, id string) (promotion.Record, error) {
	var row promotionRow
	if err := sqlx.Get(q, &row, `
		SELECT id, name, description, valid_from, valid_to, base_type, n, m, flat_percent, accumulable_type
		FROM promotions
		WHERE id = ?
	`, id); err != nil {
		return promotion.Record{}, err
	}
	var tiers []tierRow
	if err := sqlx.Select(q, &tiers, `
		SELECT min_quantity, discount_percent
		FROM promotion_tiers
		WHERE promotion_id = ?
		ORDER BY position
	`, id); err != nil {
		return promotion.Record{}, err
	}

	rec := promotion.Record{
		ID:              row.ID,
		Name:            row.Name,
		Description:     row.Description,
		ValidFrom:       parseDate(row.ValidFrom.String),
		ValidTo:         parseDate(row.ValidTo.String),
		BaseType:        row.BaseType.String,
		N:               int(row.N.Int64),
		M:               int(row.M.Int64),
		FlatPercent:     row.FlatPercent,
		AccumulableType: row.AccumulableType.String,
	}
	for _, t := range tiers {
		rec.Tiers = append(rec.Tiers, promotion.Tier{MinQuantity: t.MinQuantity, DiscountPercent: t.DiscountPercent})
	}
	return rec, nil
}

// Save inserts or replaces a promotion, its tier rows and its component links
// in one transaction. componentIDs is the complete set: components linked
// before but not listed now lose the promotion.
func (r *PromotionRepo) Save(rec promotion.Record, componentIDs []string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var flat any
	if rec.FlatPercent.Valid {
		flat = rec.FlatPercent.Decimal.String()
	}
	if _, err := tx.Exec(`
		INSERT INTO promotions(id, name, description, valid_from, valid_to, base_type, n, m, flat_percent, accumulable_type)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  description = excluded.description,
		  valid_from = excluded.valid_from,
		  valid_to = excluded.valid_to,
		  base_type = excluded.base_type,
		  n = excluded.n,
		  m = excluded.m,
		  flat_percent = excluded.flat_percent,
		  accumulable_type = excluded.accumulable_type,
		  updated_at = CURRENT_TIMESTAMP
	`, rec.ID, rec.Name, rec.Description, formatDate(rec.ValidFrom), formatDate(rec.ValidTo),
		nullString(rec.BaseType), rec.N, rec.M, flat, nullString(rec.AccumulableType)); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM promotion_tiers WHERE promotion_id = ?`, rec.ID); err != nil {
		return err
	}
	for i, t := range rec.Tiers {
		if _, err := tx.Exec(`
			INSERT INTO promotion_tiers(promotion_id, position, min_quantity, discount_percent)
			VALUES(?, ?, ?, ?)
		`, rec.ID, i, t.MinQuantity, t.DiscountPercent.String()); err != nil {
			return err
		}
	}
	if err := relink(tx, rec.ID, componentIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func relink(tx *sqlx.Tx, promotionID string, componentIDs []string) error {
	if len(componentIDs) == 0 {
		_, err := tx.Exec(`UPDATE components SET promotion_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE promotion_id = ?`, promotionID)
		return err
	}
	query, args, err := sqlx.In(`
		UPDATE components SET promotion_id = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE promotion_id = ? AND id NOT IN (?)
	`, promotionID, componentIDs)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}
	query, args, err = sqlx.In(`UPDATE components SET promotion_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id IN (?)`, promotionID, componentIDs)
	if err != nil {
		return err
	}
	_, err = tx.Exec(query, args...)
	return err
}

// ComponentIDs lists components currently linked to the promotion.
func (r *PromotionRepo) ComponentIDs(promotionID string) ([]string, error) {
	var ids []string
	err := r.db.Select(&ids, `SELECT id FROM components WHERE promotion_id = ? ORDER BY id`, promotionID)
	return ids, err
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
