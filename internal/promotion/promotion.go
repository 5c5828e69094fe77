package promotion

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPromotion     = errors.New("invalid promotion")
	ErrInvalidPromotionTier = errors.New("invalid promotion tier")
)

var hundred = decimal.NewFromInt(100)

// BaseRule is the primary, non-stackable rule a promotion carries.
// Implementations: NoDiscount, BuyNPayM.
type BaseRule interface {
	isBaseRule()
	String() string
}

// AccumulableRule is layered on top of the base rule.
// Implementations: FlatPercent, TieredByQuantity.
type AccumulableRule interface {
	isAccumulableRule()
	String() string
}

type NoDiscount struct{}

func (NoDiscount) isBaseRule()    {}
func (NoDiscount) String() string { return "no discount" }

// BuyNPayM charges M units for every N bought. N > M >= 1.
type BuyNPayM struct {
	N int
	M int
}

func (BuyNPayM) isBaseRule() {}
func (r BuyNPayM) String() string {
	return fmt.Sprintf("buy %d pay %d", r.N, r.M)
}

func NewBuyNPayM(n, m int) (BuyNPayM, error) {
	if m < 1 || n <= m {
		return BuyNPayM{}, fmt.Errorf("%w: buy %d pay %d requires n > m >= 1", ErrInvalidPromotion, n, m)
	}
	return BuyNPayM{N: n, M: m}, nil
}

type FlatPercent struct {
	Percent decimal.Decimal
}

func (FlatPercent) isAccumulableRule() {}
func (r FlatPercent) String() string {
	return r.Percent.String() + "% off"
}

func NewFlatPercent(p decimal.Decimal) (FlatPercent, error) {
	if !validPercent(p) {
		return FlatPercent{}, fmt.Errorf("%w: percent %s outside 0-100", ErrInvalidPromotion, p)
	}
	return FlatPercent{Percent: p}, nil
}

// Tier grants DiscountPercent once the purchased quantity reaches MinQuantity.
type Tier struct {
	MinQuantity     int             `json:"min_quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// TieredByQuantity holds a non-empty tier list sorted strictly ascending by
// MinQuantity. Build it with NewTieredByQuantity.
type TieredByQuantity struct {
	tiers []Tier
}

func (TieredByQuantity) isAccumulableRule() {}
func (r TieredByQuantity) String() string {
	return fmt.Sprintf("tiered by quantity (%d tiers)", len(r.tiers))
}

// Tiers returns a copy of the tier table.
func (r TieredByQuantity) Tiers() []Tier {
	out := make([]Tier, len(r.tiers))
	copy(out, r.tiers)
	return out
}

// Select returns the tier with the largest MinQuantity not exceeding qty.
func (r TieredByQuantity) Select(qty int) (Tier, bool) {
	var (
		best  Tier
		found bool
	)
	for _, t := range r.tiers {
		if t.MinQuantity > qty {
			break
		}
		best, found = t, true
	}
	return best, found
}

func NewTieredByQuantity(tiers []Tier) (TieredByQuantity, error) {
	if len(tiers) == 0 {
		return TieredByQuantity{}, fmt.Errorf("%w: tier list is empty", ErrInvalidPromotionTier)
	}
	out := make([]Tier, len(tiers))
	for i, t := range tiers {
		if t.MinQuantity < 0 {
			return TieredByQuantity{}, fmt.Errorf("%w: negative minimum quantity %d", ErrInvalidPromotionTier, t.MinQuantity)
		}
		if !validPercent(t.DiscountPercent) {
			return TieredByQuantity{}, fmt.Errorf("%w: discount %s outside 0-100", ErrInvalidPromotionTier, t.DiscountPercent)
		}
		if i > 0 && t.MinQuantity <= tiers[i-1].MinQuantity {
			return TieredByQuantity{}, fmt.Errorf("%w: minimum quantity %d after %d", ErrInvalidPromotionTier, t.MinQuantity, tiers[i-1].MinQuantity)
		}
		out[i] = t
	}
	return TieredByQuantity{tiers: out}, nil
}

// Promotion is an immutable pair of one base rule and an optional
// accumulable rule. Accumulable is nil when the promotion does not stack.
type Promotion struct {
	ID          string
	Name        string
	Description string
	ValidFrom   time.Time
	ValidTo     time.Time
	Base        BaseRule
	Accumulable AccumulableRule
	// Notes lists the inconsistencies found while resolving a stored record.
	Notes []string
}

// None is the null promotion: no discount, nothing stacked.
func None() Promotion {
	return Promotion{Base: NoDiscount{}}
}

func New(id, name, description string, validFrom, validTo time.Time, base BaseRule, acc AccumulableRule) (Promotion, error) {
	if base == nil {
		return Promotion{}, fmt.Errorf("%w: base rule is required", ErrInvalidPromotion)
	}
	if !validFrom.IsZero() && !validTo.IsZero() && validTo.Before(validFrom) {
		return Promotion{}, fmt.Errorf("%w: validity ends before it starts", ErrInvalidPromotion)
	}
	return Promotion{
		ID:          id,
		Name:        name,
		Description: description,
		ValidFrom:   validFrom,
		ValidTo:     validTo,
		Base:        base,
		Accumulable: acc,
	}, nil
}

// IsNone reports whether the promotion leaves prices unchanged.
func (p Promotion) IsNone() bool {
	if p.Accumulable != nil {
		return false
	}
	_, ok := p.Base.(BuyNPayM)
	return !ok
}

// ActiveAt reports whether t falls inside the validity window. Zero bounds
// are open.
func (p Promotion) ActiveAt(t time.Time) bool {
	day := truncateDay(t)
	if !p.ValidFrom.IsZero() && day.Before(truncateDay(p.ValidFrom)) {
		return false
	}
	if !p.ValidTo.IsZero() && day.After(truncateDay(p.ValidTo)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
