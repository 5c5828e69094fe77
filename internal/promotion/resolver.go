package promotion

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stored type codes.
const (
	BaseNone     = "none"
	BaseBuyNPayM = "buy_n_pay_m"

	AccumulableFlatPercent = "flat_percent"
	AccumulableTiered      = "tiered_quantity"
)

// Record is a promotion as it sits in storage. Historical rows may be
// internally inconsistent; Resolve turns any Record into a usable Promotion.
type Record struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	ValidFrom       time.Time           `json:"valid_from"`
	ValidTo         time.Time           `json:"valid_to"`
	BaseType        string              `json:"base_type"`
	N               int                 `json:"n"`
	M               int                 `json:"m"`
	FlatPercent     decimal.NullDecimal `json:"flat_percent"`
	AccumulableType string              `json:"accumulable_type"`
	Tiers           []Tier              `json:"tiers"`
}

// Resolve never fails: unrecoverable inconsistencies degrade to NoDiscount
// and are reported in Notes and appended to the description.
//
// Base side, first match wins:
//  1. no stored base type             -> NoDiscount
//  2. n > m > 0                       -> BuyNPayM{n, m}
//  3. n == m == 1, flat percent 0/nil -> NoDiscount
//  4. n == m == 1, flat percent > 0   -> NoDiscount + FlatPercent (legacy rows
//     that stored the accumulable value under the base type)
//  5. anything else                   -> NoDiscount, noted
//
// The accumulable side decodes recognized codes and drops the rest.
func Resolve(rec Record) Promotion {
	p := Promotion{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		ValidFrom:   rec.ValidFrom,
		ValidTo:     rec.ValidTo,
		Base:        NoDiscount{},
	}
	if !rec.ValidFrom.IsZero() && !rec.ValidTo.IsZero() && rec.ValidTo.Before(rec.ValidFrom) {
		p.note("validity window ends before it starts")
	}

	acc := resolveAccumulable(rec, &p)

	switch {
	case strings.TrimSpace(rec.BaseType) == "":
	case rec.N > rec.M && rec.M > 0:
		p.Base = BuyNPayM{N: rec.N, M: rec.M}
	case rec.N == 1 && rec.M == 1 && !hasFlatPercent(rec):
	case rec.N == 1 && rec.M == 1:
		switch {
		case strings.EqualFold(strings.TrimSpace(rec.AccumulableType), AccumulableFlatPercent):
			// the percent belongs to the stored flat rule, decoded above
		case acc != nil:
			p.note(fmt.Sprintf("legacy flat percent %s ignored, accumulable rule %q already stored", rec.FlatPercent.Decimal, rec.AccumulableType))
		case !validPercent(rec.FlatPercent.Decimal):
			p.note(fmt.Sprintf("legacy flat percent %s outside 0-100", rec.FlatPercent.Decimal))
		default:
			acc = FlatPercent{Percent: rec.FlatPercent.Decimal}
		}
	default:
		p.note(fmt.Sprintf("unrecognized base combination n=%d m=%d", rec.N, rec.M))
	}

	p.Accumulable = acc
	if len(p.Notes) > 0 {
		p.Description = strings.TrimSpace(p.Description + " [anomaly: " + strings.Join(p.Notes, "; ") + "]")
	}
	return p
}

func resolveAccumulable(rec Record, p *Promotion) AccumulableRule {
	code := strings.ToLower(strings.TrimSpace(rec.AccumulableType))
	switch code {
	case "":
		return nil
	case AccumulableFlatPercent:
		if !hasFlatPercent(rec) {
			return nil
		}
		r, err := NewFlatPercent(rec.FlatPercent.Decimal)
		if err != nil {
			p.note(fmt.Sprintf("flat percent %s outside 0-100", rec.FlatPercent.Decimal))
			return nil
		}
		return r
	case AccumulableTiered:
		tiers := repairTiers(rec.Tiers, p)
		if len(tiers) == 0 {
			p.note("tiered rule without usable tiers")
			return nil
		}
		r, err := NewTieredByQuantity(tiers)
		if err != nil {
			p.note(err.Error())
			return nil
		}
		return r
	default:
		p.note(fmt.Sprintf("unrecognized accumulable type %q", rec.AccumulableType))
		return nil
	}
}

// repairTiers sorts stored rows, keeps the first row for each minimum in
// storage order and drops rows with impossible values.
func repairTiers(rows []Tier, p *Promotion) []Tier {
	kept := make([]Tier, 0, len(rows))
	seen := make(map[int]bool, len(rows))
	for _, t := range rows {
		if t.MinQuantity < 0 || !validPercent(t.DiscountPercent) {
			p.note(fmt.Sprintf("tier (%d, %s) dropped", t.MinQuantity, t.DiscountPercent))
			continue
		}
		if seen[t.MinQuantity] {
			p.note(fmt.Sprintf("duplicate tier minimum %d dropped", t.MinQuantity))
			continue
		}
		seen[t.MinQuantity] = true
		kept = append(kept, t)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].MinQuantity < kept[j].MinQuantity })
	return kept
}

func hasFlatPercent(rec Record) bool {
	return rec.FlatPercent.Valid && !rec.FlatPercent.Decimal.IsZero()
}

func (p *Promotion) note(s string) {
	p.Notes = append(p.Notes, s)
}

// ToRecord flattens a well-formed promotion into its stored shape.
func ToRecord(p Promotion) Record {
	rec := Record{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ValidFrom:   p.ValidFrom,
		ValidTo:     p.ValidTo,
		BaseType:    BaseNone,
		N:           1,
		M:           1,
	}
	if b, ok := p.Base.(BuyNPayM); ok {
		rec.BaseType, rec.N, rec.M = BaseBuyNPayM, b.N, b.M
	}
	switch a := p.Accumulable.(type) {
	case FlatPercent:
		rec.AccumulableType = AccumulableFlatPercent
		rec.FlatPercent = decimal.NewNullDecimal(a.Percent)
	case TieredByQuantity:
		rec.AccumulableType = AccumulableTiered
		rec.Tiers = a.Tiers()
	}
	return rec
}
