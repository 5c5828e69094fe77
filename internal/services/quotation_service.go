package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cotizador/internal/domain"
	applog "cotizador/internal/log"
	"cotizador/internal/quotation"
	"cotizador/internal/repos"
)

type QuotationService struct {
	Catalog    *CatalogService
	Taxes      quotation.TaxCalculator
	Quotations *repos.QuotationRepo
	now        func() time.Time
}

func NewQuotationService(catalog *CatalogService, taxes quotation.TaxCalculator, quotes *repos.QuotationRepo) *QuotationService {
	return &QuotationService{Catalog: catalog, Taxes: taxes, Quotations: quotes, now: time.Now}
}

// Create prices the lines against a fresh catalog snapshot and persists the
// quotation. A zero date means today.
func (s *QuotationService) Create(ctx context.Context, jurisdiction string, date time.Time, lines []quotation.Line) (domain.Quotation, error) {
	now := s.now().UTC()
	if date.IsZero() {
		date = now
	}
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ComponentID)
	}
	snap, err := s.Catalog.Snapshot(ctx, ids)
	if err != nil {
		return domain.Quotation{}, err
	}

	q, err := quotation.Build(quotation.Request{Date: date, Jurisdiction: jurisdiction, Lines: lines}, snap, s.Taxes)
	if err != nil {
		return domain.Quotation{}, err
	}
	q.ID = uuid.NewString()
	q.CreatedAt = now
	if err := s.Quotations.Create(q); err != nil {
		return domain.Quotation{}, err
	}
	applog.Audit(nil, "quotation.created", map[string]any{
		"quotation": q.ID, "lines": len(q.Lines), "total": q.Total.StringFixed(2),
	})
	return q, nil
}

func (s *QuotationService) Get(id string) (domain.Quotation, error) {
	q, err := s.Quotations.Get(id)
	if err != nil {
		return domain.Quotation{}, notFound(err, "quotation", id)
	}
	return q, nil
}

func (s *QuotationService) List(limit int) ([]repos.QuotationSummary, error) {
	return s.Quotations.ListLatest(limit)
}
