package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"cotizador/internal/domain"
)

type ComponentRepo struct{ db *sqlx.DB }

func NewComponentRepo(db *sqlx.DB) *ComponentRepo { return &ComponentRepo{db: db} }

type componentRow struct {
	domain.Component
	PromotionID sql.NullString `db:"promotion_id"`
}

const componentColumns = `id, description, brand, model, category, attribute, cost, base_price, promotion_id`

// Get returns the component with its linked promotion record attached.
// Missing rows surface as sql.ErrNoRows.
func (r *ComponentRepo) Get(id string) (domain.Component, error) {
	var row componentRow
	if err := r.db.Get(&row, `SELECT `+componentColumns+` FROM components WHERE id = ? AND active = 1`, id); err != nil {
		return domain.Component{}, err
	}
	return r.attach(row)
}

func (r *ComponentRepo) List(category string, limit, offset int) ([]domain.Component, error) {
	where := `active = 1`
	args := []any{}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}
	args = append(args, limit, offset)

	var rows []componentRow
	if err := r.db.Select(&rows, `
		SELECT `+componentColumns+`
		FROM components
		WHERE `+where+`
		ORDER BY category, id
		LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Component, 0, len(rows))
	for _, row := range rows {
		c, err := r.attach(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Categories lists the distinct categories of active components.
func (r *ComponentRepo) Categories() ([]string, error) {
	var out []string
	err := r.db.Select(&out, `SELECT DISTINCT category FROM components WHERE active = 1 ORDER BY category`)
	return out, err
}

func (r *ComponentRepo) attach(row componentRow) (domain.Component, error) {
	c := row.Component
	if row.PromotionID.Valid && row.PromotionID.String != "" {
		rec, err := getPromotion(r.db, row.PromotionID.String)
		if err != nil && err != sql.ErrNoRows {
			return domain.Component{}, err
		}
		if err == nil {
			c.Promotion = &rec
		}
	}
	return c, nil
}
