package usecase

import (
	"context"
	"fmt"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/ports"
)

// GapService audits a year's invoice sequence for missing numbers. It
// reads committed numbers only and takes no locks.
type GapService struct {
	invoices ports.InvoiceRepository
}

func NewGapService(invoices ports.InvoiceRepository) *GapService {
	return &GapService{invoices: invoices}
}

func (s *GapService) FindGaps(ctx context.Context, year int) (domain.GapReport, error) {
	if year <= 0 {
		return domain.GapReport{Year: year, Gaps: []string{}}, nil
	}
	numbers, err := s.invoices.NumbersByYear(ctx, year)
	if err != nil {
		return domain.GapReport{}, fmt.Errorf("load issued numbers: %w", err)
	}
	return domain.FindGaps(year, numbers), nil
}
