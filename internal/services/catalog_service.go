package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"cotizador/internal/cache"
	"cotizador/internal/domain"
	applog "cotizador/internal/log"
	"cotizador/internal/pricing"
	"cotizador/internal/quotation"
	"cotizador/internal/repos"
)

const componentEntity = "component"

type CatalogService struct {
	Components *repos.ComponentRepo
	Cache      cache.Cache
	TTL        time.Duration
}

func NewCatalogService(components *repos.ComponentRepo, c cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{Components: components, Cache: c, TTL: ttl}
}

// Component reads through the cache. Cache failures are logged and the
// repository is used instead.
func (s *CatalogService) Component(ctx context.Context, id string) (domain.Component, error) {
	key := s.Cache.GenerateKey(componentEntity, id)
	if raw, ok, err := s.Cache.Get(ctx, key); err != nil {
		applog.Error(nil, "cache.get", err, map[string]any{"key": key})
	} else if ok {
		var c domain.Component
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			return c, nil
		}
		_ = s.Cache.Delete(ctx, key)
	}

	c, err := s.Components.Get(id)
	if err != nil {
		return domain.Component{}, notFound(err, "component", id)
	}
	s.reportAnomalies(c)

	if b, err := json.Marshal(c); err == nil {
		if err := s.Cache.Set(ctx, key, string(b), s.TTL); err != nil {
			applog.Error(nil, "cache.set", err, map[string]any{"key": key})
		}
	}
	return c, nil
}

// Snapshot collects the components a quotation request references. Unknown
// ids are left out so quotation.Build can report them.
func (s *CatalogService) Snapshot(ctx context.Context, ids []string) (quotation.Snapshot, error) {
	snap := quotation.Snapshot{}
	for _, id := range ids {
		if _, ok := snap[id]; ok {
			continue
		}
		c, err := s.Component(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		snap[id] = c
	}
	return snap, nil
}

func (s *CatalogService) List(category string, page, pageSize int) ([]domain.Component, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize
	return s.Components.List(category, pageSize, offset)
}

func (s *CatalogService) Categories() ([]string, error) {
	return s.Components.Categories()
}

// Preview is the price of one component at a quantity on a date.
type Preview struct {
	ComponentID          string            `json:"component_id"`
	Description          string            `json:"description"`
	Quantity             int               `json:"quantity"`
	UnitBasePrice        decimal.Decimal   `json:"unit_base_price"`
	UnitNetPrice         decimal.Decimal   `json:"unit_net_price"`
	UnitDiscount         decimal.Decimal   `json:"unit_discount"`
	TotalDiscountApplied decimal.Decimal   `json:"total_discount_applied"`
	Subtotal             decimal.Decimal   `json:"subtotal"`
	PromotionID          string            `json:"promotion_id,omitempty"`
	PromotionName        string            `json:"promotion_name,omitempty"`
	Discounts            []pricing.Applied `json:"discounts,omitempty"`
	Anomalies            []string          `json:"anomalies,omitempty"`
}

func (s *CatalogService) Preview(ctx context.Context, id string, qty int, on time.Time) (Preview, error) {
	if qty <= 0 {
		return Preview{}, quotation.ErrInvalidQuantity
	}
	c, err := s.Component(ctx, id)
	if err != nil {
		return Preview{}, err
	}
	p := quotation.EffectivePromotion(c, on)
	res := pricing.Price(c.BasePrice, p, qty)
	return Preview{
		ComponentID:          c.ID,
		Description:          c.Description,
		Quantity:             qty,
		UnitBasePrice:        c.BasePrice,
		UnitNetPrice:         res.UnitNetPrice,
		UnitDiscount:         res.UnitDiscount,
		TotalDiscountApplied: res.TotalDiscountApplied,
		Subtotal:             res.UnitNetPrice.Mul(decimal.NewFromInt(int64(qty))),
		PromotionID:          p.ID,
		PromotionName:        p.Name,
		Discounts:            res.Applied,
		Anomalies:            p.Notes,
	}, nil
}

// InvalidateComponent drops cached entries after a promotion change.
func (s *CatalogService) InvalidateComponent(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.Cache.GenerateKey(componentEntity, id))
	}
	return s.Cache.Delete(ctx, keys...)
}

func (s *CatalogService) reportAnomalies(c domain.Component) {
	if c.Promotion == nil {
		return
	}
	p := quotation.EffectivePromotion(c, time.Time{})
	if len(p.Notes) == 0 {
		return
	}
	applog.Warn(nil, "promotion.anomaly", map[string]any{
		"component": c.ID,
		"promotion": p.ID,
		"notes":     p.Notes,
	})
}
