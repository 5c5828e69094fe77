package handlers

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"cotizador/internal/cache"
	"cotizador/internal/config"
	"cotizador/internal/repos"
	"cotizador/internal/services"
	"cotizador/internal/tax"
)

type Deps struct {
	CatalogHandler   *CatalogHandler
	PromotionHandler *PromotionHandler
	QuotationHandler *QuotationHandler
	OrderHandler     *OrderHandler
	InventoryHandler *InventoryHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, c cache.Cache) (*Deps, error) {
	rates, err := tax.Parse(cfg.TaxRates)
	if err != nil {
		return nil, fmt.Errorf("TAX_RATES: %w", err)
	}

	compRepo := repos.NewComponentRepo(db)
	promoRepo := repos.NewPromotionRepo(db)
	quoteRepo := repos.NewQuotationRepo(db)
	supRepo := repos.NewSupplierRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(compRepo, c, cfg.CacheTTL)
	promoSvc := services.NewPromotionService(promoRepo, compRepo, catalogSvc)
	quoteSvc := services.NewQuotationService(catalogSvc, rates, quoteRepo)
	orderSvc := services.NewOrderService(quoteRepo, supRepo, orderRepo)
	invSvc := services.NewInventoryService(supRepo, compRepo)

	return &Deps{
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc},
		PromotionHandler: &PromotionHandler{Promotions: promoSvc},
		QuotationHandler: &QuotationHandler{Quotations: quoteSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc, Quotations: quoteSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
	}, nil
}
