package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	applog "cotizador/internal/log"
	"cotizador/internal/promotion"
	"cotizador/internal/repos"
)

type PromotionService struct {
	Promotions *repos.PromotionRepo
	Components *repos.ComponentRepo
	Catalog    *CatalogService
}

func NewPromotionService(promos *repos.PromotionRepo, comps *repos.ComponentRepo, catalog *CatalogService) *PromotionService {
	return &PromotionService{Promotions: promos, Components: comps, Catalog: catalog}
}

// PromotionInput is a promotion as entered by catalog management. BuyN and
// PayM both zero means no base rule; at most one of FlatPercent and Tiers
// may be set.
type PromotionInput struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	ValidFrom    time.Time        `json:"valid_from"`
	ValidTo      time.Time        `json:"valid_to"`
	BuyN         int              `json:"buy_n"`
	PayM         int              `json:"pay_m"`
	FlatPercent  *decimal.Decimal `json:"flat_percent,omitempty"`
	Tiers        []promotion.Tier `json:"tiers,omitempty"`
	ComponentIDs []string         `json:"component_ids,omitempty"`
}

// PromotionView is the stored record with its resolved reading.
type PromotionView struct {
	promotion.Record
	Rules      []string `json:"rules"`
	Anomalies  []string `json:"anomalies,omitempty"`
	Components []string `json:"components"`
}

// Build validates the input through the promotion constructors.
func (in PromotionInput) Build() (promotion.Promotion, error) {
	var base promotion.BaseRule = promotion.NoDiscount{}
	if in.BuyN != 0 || in.PayM != 0 {
		b, err := promotion.NewBuyNPayM(in.BuyN, in.PayM)
		if err != nil {
			return promotion.Promotion{}, err
		}
		base = b
	}

	var acc promotion.AccumulableRule
	switch {
	case in.FlatPercent != nil && len(in.Tiers) > 0:
		return promotion.Promotion{}, fmt.Errorf("%w: flat percent and tiers are mutually exclusive", promotion.ErrInvalidPromotion)
	case in.FlatPercent != nil:
		f, err := promotion.NewFlatPercent(*in.FlatPercent)
		if err != nil {
			return promotion.Promotion{}, err
		}
		acc = f
	case len(in.Tiers) > 0:
		t, err := promotion.NewTieredByQuantity(in.Tiers)
		if err != nil {
			return promotion.Promotion{}, err
		}
		acc = t
	}
	return promotion.New(in.ID, in.Name, in.Description, in.ValidFrom, in.ValidTo, base, acc)
}

// Create stores a validated promotion with exactly the listed components
// linked, and drops cached entries for both the old and the new links.
func (s *PromotionService) Create(ctx context.Context, in PromotionInput) (PromotionView, error) {
	if in.ID == "" || in.Name == "" {
		return PromotionView{}, fmt.Errorf("%w: id and name are required", promotion.ErrInvalidPromotion)
	}
	p, err := in.Build()
	if err != nil {
		return PromotionView{}, err
	}
	for _, id := range in.ComponentIDs {
		if _, err := s.Components.Get(id); err != nil {
			return PromotionView{}, notFound(err, "component", id)
		}
	}

	previous, err := s.Promotions.ComponentIDs(p.ID)
	if err != nil {
		return PromotionView{}, err
	}
	if err := s.Promotions.Save(promotion.ToRecord(p), in.ComponentIDs); err != nil {
		return PromotionView{}, err
	}
	if err := s.Catalog.InvalidateComponent(ctx, append(previous, in.ComponentIDs...)...); err != nil {
		applog.Error(nil, "cache.invalidate", err, map[string]any{"promotion": p.ID})
	}
	applog.Audit(nil, "promotion.saved", map[string]any{"promotion": p.ID, "components": in.ComponentIDs})
	return s.Get(p.ID)
}

func (s *PromotionService) Get(id string) (PromotionView, error) {
	rec, err := s.Promotions.Get(id)
	if err != nil {
		return PromotionView{}, notFound(err, "promotion", id)
	}
	comps, err := s.Promotions.ComponentIDs(id)
	if err != nil {
		return PromotionView{}, err
	}
	p := promotion.Resolve(rec)
	rules := []string{p.Base.String()}
	if p.Accumulable != nil {
		rules = append(rules, p.Accumulable.String())
	}
	if comps == nil {
		comps = []string{}
	}
	return PromotionView{Record: rec, Rules: rules, Anomalies: p.Notes, Components: comps}, nil
}
