// Package pricing turns a base price and a resolved promotion into the net
// unit price charged for a purchase quantity.
package pricing

import (
	"github.com/shopspring/decimal"

	"cotizador/internal/promotion"
)

// Places is the currency minor-unit precision.
const Places = 2

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Applied describes one rule that changed the price.
type Applied struct {
	Rule string          `json:"rule"`
	Kind string          `json:"kind"`
	Rate decimal.Decimal `json:"rate"` // fraction of the incoming price removed
}

type Result struct {
	UnitNetPrice         decimal.Decimal
	UnitDiscount         decimal.Decimal
	TotalDiscountApplied decimal.Decimal
	Applied              []Applied
	Tier                 *promotion.Tier
}

// Price applies the base rule, then the accumulable rule on the base-adjusted
// price, and rounds half-up to Places once at the end.
func Price(basePrice decimal.Decimal, p promotion.Promotion, qty int) Result {
	if basePrice.IsNegative() {
		basePrice = decimal.Zero
	}
	price := basePrice
	var res Result

	switch b := p.Base.(type) {
	case promotion.BuyNPayM:
		if b.N > b.M && b.M > 0 {
			price = price.Mul(decimal.NewFromInt(int64(b.M))).Div(decimal.NewFromInt(int64(b.N)))
			res.Applied = append(res.Applied, Applied{
				Rule: b.String(),
				Kind: promotion.BaseBuyNPayM,
				Rate: one.Sub(decimal.NewFromInt(int64(b.M)).Div(decimal.NewFromInt(int64(b.N)))),
			})
		}
	}

	switch a := p.Accumulable.(type) {
	case promotion.FlatPercent:
		if a.Percent.IsPositive() {
			price = price.Mul(one.Sub(a.Percent.Div(hundred)))
			res.Applied = append(res.Applied, Applied{Rule: a.String(), Kind: promotion.AccumulableFlatPercent, Rate: a.Percent.Div(hundred)})
		}
	case promotion.TieredByQuantity:
		if t, ok := a.Select(qty); ok {
			tier := t
			res.Tier = &tier
			if t.DiscountPercent.IsPositive() {
				price = price.Mul(one.Sub(t.DiscountPercent.Div(hundred)))
				res.Applied = append(res.Applied, Applied{
					Rule: t.DiscountPercent.String() + "% off from " + decimal.NewFromInt(int64(t.MinQuantity)).String() + " units",
					Kind: promotion.AccumulableTiered,
					Rate: t.DiscountPercent.Div(hundred),
				})
			}
		}
	}

	price = Round(price)
	if price.IsNegative() {
		price = decimal.Zero
	}
	if price.GreaterThan(basePrice) {
		price = Round(basePrice)
	}

	res.UnitNetPrice = price
	res.UnitDiscount = Round(basePrice).Sub(price)
	if qty > 0 {
		res.TotalDiscountApplied = res.UnitDiscount.Mul(decimal.NewFromInt(int64(qty)))
	} else {
		res.TotalDiscountApplied = decimal.Zero
	}
	return res
}

// Round rounds half-up to the currency precision. Amounts here are never
// negative, where decimal's half-away-from-zero equals half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}
